package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"threadline/internal/apperr"
	"threadline/internal/middleware"
	"threadline/internal/models"
	"threadline/internal/store"
	"threadline/internal/utils"
)

type AuthHandler struct {
	users store.UserStore
}

func NewAuthHandler(users store.UserStore) *AuthHandler {
	return &AuthHandler{users: users}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username" binding:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// createUser 创建新用户的通用函数
func (h *AuthHandler) createUser(c *gin.Context, username, email, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Avatar:   utils.GetRandomEmoji(), // 随机 emoji 头像
	}
	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		return nil, apperr.Store("create user", err)
	}
	return user, nil
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if username == "" {
		// Extract username from email
		username = strings.SplitN(email, "@", 2)[0]
	}

	user, err := h.createUser(c, username, email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			middleware.Abort(c, http.StatusConflict, "CONFLICT", "email already registered")
			return
		}
		middleware.RespondError(c, err)
		return
	}

	if err := middleware.StartSession(c, user); err != nil {
		middleware.RespondError(c, err)
		return
	}
	middleware.Log(c).Info().Uint("user_id", user.ID).Msg("user registered")
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !isNotFound(err) {
		middleware.RespondError(c, apperr.Store("get user", err))
		return
	}
	if err != nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		middleware.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
		return
	}

	if err := middleware.StartSession(c, user); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.EndSession(c); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the logged in user.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		middleware.RespondError(c, apperr.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
