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
)

type CommunityHandler struct {
	store store.Store
}

func NewCommunityHandler(s store.Store) *CommunityHandler {
	return &CommunityHandler{store: s}
}

type createCommunityRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=500"`
}

// List 展示所有社区列表
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.store.ListCommunities(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, apperr.Store("list communities", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": communities})
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req createCommunityRequest
	if !bind(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.RespondError(c, apperr.Validation("name must not be empty"))
		return
	}

	community := &models.Community{Name: name, Description: strings.TrimSpace(req.Description)}
	if err := h.store.CreateCommunity(c.Request.Context(), community); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			middleware.Abort(c, http.StatusConflict, "CONFLICT", "community name already taken")
			return
		}
		middleware.RespondError(c, apperr.Store("create community", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"community": community})
}

// Detail returns a community with one page of its posts.
func (h *CommunityHandler) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	community, err := h.store.GetCommunity(ctx, id)
	if err != nil {
		middleware.RespondError(c, apperr.Store("get community", err))
		return
	}

	filter, page := pageFilter(c)
	filter.CommunityID = &community.ID
	posts, total, err := h.store.ListPosts(ctx, filter)
	if err != nil {
		middleware.RespondError(c, apperr.Store("list posts", err))
		return
	}
	community.PostCount = int(total)

	c.JSON(http.StatusOK, gin.H{
		"community": community,
		"posts":     posts,
		"total":     total,
		"page":      page,
	})
}
