package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"threadline/internal/apperr"
	"threadline/internal/identity"
	"threadline/internal/middleware"
	"threadline/internal/models"
	"threadline/internal/services"
	"threadline/internal/store"
	"threadline/internal/utils"
)

type PostHandler struct {
	store    store.Store
	comments *services.CommentService
	votes    *services.VoteService
	ranking  services.ScoreScheduler
}

func NewPostHandler(s store.Store, comments *services.CommentService, votes *services.VoteService, ranking services.ScoreScheduler) *PostHandler {
	return &PostHandler{store: s, comments: comments, votes: votes, ranking: ranking}
}

type createPostRequest struct {
	Title       string `json:"title" binding:"required,max=300"`
	Content     string `json:"content" binding:"max=20000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
	CommunityID *uint  `json:"community_id"`
}

// List returns one page of posts, newest or hottest first.
func (h *PostHandler) List(c *gin.Context) {
	filter, page := pageFilter(c)
	if raw := c.Query("community_id"); raw != "" {
		id, err := identity.ParseID(raw)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		filter.CommunityID = &id
	}

	posts, total, err := h.store.ListPosts(c.Request.Context(), filter)
	if err != nil {
		middleware.RespondError(c, apperr.Store("list posts", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "total": total, "page": page})
}

func (h *PostHandler) Create(c *gin.Context) {
	ident := middleware.CurrentIdentity(c)
	var req createPostRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		middleware.RespondError(c, apperr.Validation("title must not be empty"))
		return
	}

	if req.CommunityID != nil {
		if _, err := h.store.GetCommunity(ctx, *req.CommunityID); err != nil {
			if isNotFound(err) {
				middleware.RespondError(c, apperr.Validation("community %d does not exist", *req.CommunityID))
				return
			}
			middleware.RespondError(c, apperr.Store("get community", err))
			return
		}
	}

	post := &models.Post{
		UserID:      ident.UserID,
		Author:      ident.DisplayName,
		CommunityID: req.CommunityID,
		Title:       title,
		Content:     req.Content, // raw markdown, rendered on read
		ImageURL:    req.ImageURL,
	}
	if err := h.store.CreatePost(ctx, post); err != nil {
		middleware.RespondError(c, apperr.Store("create post", err))
		return
	}

	h.ranking.ScheduleUpdate(post.ID)
	middleware.Log(c).Info().Uint("post_id", post.ID).Uint("user_id", ident.UserID).Msg("post created")
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// Detail returns the post, its vote state for the caller and the full
// comment thread.
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	post, err := h.store.GetPost(ctx, id)
	if err != nil {
		middleware.RespondError(c, apperr.Store("get post", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":         post,
		"content_html": string(utils.RenderMarkdown(post.Content)),
		"vote":         h.votes.Snapshot(ctx, middleware.CurrentIdentity(c), post.ID),
		"comments":     services.Render(h.comments.Load(ctx, post.ID)),
	})
}
