package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"threadline/internal/identity"
	"threadline/internal/models"
	"threadline/internal/store"
)

const (
	CheckUserKey = "user"
	IdentityKey  = "identity"
	SessionKey   = "user_id"
)

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "login required")
			return
		}
		c.Next()
	}
}

// LoadUser retrieves user from session and sets to context
func LoadUser(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionKey).(uint)

		if ok && userID != 0 {
			user, err := users.GetUserByID(c.Request.Context(), userID)
			if err == nil {
				c.Set(CheckUserKey, user)
				c.Set(IdentityKey, &identity.Identity{UserID: user.ID, DisplayName: user.Username})
			} else {
				Log(c).Warn().Err(err).Uint("user_id", userID).Msg("session user not loaded")
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller's identity, nil when anonymous.
func CurrentIdentity(c *gin.Context) *identity.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(*identity.Identity); ok {
			return id
		}
	}
	return nil
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// StartSession logs user in on the current session.
func StartSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(SessionKey, user.ID)
	return session.Save()
}

func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
