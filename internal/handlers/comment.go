package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"threadline/internal/apperr"
	"threadline/internal/middleware"
	"threadline/internal/models"
	"threadline/internal/services"
	"threadline/internal/store"
)

type CommentHandler struct {
	posts    store.PostStore
	comments *services.CommentService
}

func NewCommentHandler(posts store.PostStore, comments *services.CommentService) *CommentHandler {
	return &CommentHandler{posts: posts, comments: comments}
}

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// loadPost loads the post named by :id; on failure the response is written.
func loadPost(c *gin.Context, posts store.PostStore) (*models.Post, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	post, err := posts.GetPost(c.Request.Context(), id)
	if err != nil {
		middleware.RespondError(c, apperr.Store("get post", err))
		return nil, false
	}
	return post, true
}

func (h *CommentHandler) List(c *gin.Context) {
	post, ok := loadPost(c, h.posts)
	if !ok {
		return
	}
	forest := services.Render(h.comments.Load(c.Request.Context(), post.ID))
	c.JSON(http.StatusOK, gin.H{"comments": forest})
}

// Create posts a comment, top-level when parent_id is absent, and answers
// with the reloaded thread.
func (h *CommentHandler) Create(c *gin.Context) {
	post, ok := loadPost(c, h.posts)
	if !ok {
		return
	}
	var req createCommentRequest
	if !bind(c, &req) {
		return
	}

	forest, err := h.comments.Reply(c.Request.Context(), middleware.CurrentIdentity(c), post.ID, req.ParentID, req.Content)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comments": services.Render(forest)})
}
