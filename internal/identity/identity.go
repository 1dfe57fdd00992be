// Package identity carries the authenticated caller into every mutating
// operation, plus the id and content checks shared by the core.
package identity

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"threadline/internal/apperr"
)

// MaxContentLength bounds comment bodies, counted in runes.
const MaxContentLength = 10000

// Identity is the current authenticated user. A nil *Identity means the
// caller is anonymous.
type Identity struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Require fails with ErrUnauthenticated unless id is a usable identity.
func Require(id *Identity) error {
	if id == nil || id.UserID == 0 {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// ValidateContent trims surrounding whitespace and rejects empty or
// oversized bodies. The trimmed text is returned for storage.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", apperr.Validation("content must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", apperr.Validation("content exceeds %d characters", MaxContentLength)
	}
	return trimmed, nil
}

// ParseID parses a positive surrogate key as used in URLs and forms.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation("invalid id %q", s)
	}
	return uint(n), nil
}

// ParseOptionalID is ParseID for nullable references; an empty string is nil.
func ParseOptionalID(s string) (*uint, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
