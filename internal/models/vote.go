package models

import (
	"time"
)

// Vote is the single vote a user holds on a post. Value is -1, 0 or 1; a
// retracted vote keeps its row with Value 0.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_vote_user_post" json:"post_id"`
	Value     int8      `gorm:"not null;default:0" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
