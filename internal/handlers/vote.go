package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"threadline/internal/middleware"
	"threadline/internal/services"
	"threadline/internal/store"
	"threadline/internal/vote"
)

type VoteHandler struct {
	posts store.PostStore
	votes *services.VoteService
}

func NewVoteHandler(posts store.PostStore, votes *services.VoteService) *VoteHandler {
	return &VoteHandler{posts: posts, votes: votes}
}

type voteRequest struct {
	Vote *int8 `json:"vote" binding:"required"`
}

// Get returns the tally and, for a logged in caller, their vote.
func (h *VoteHandler) Get(c *gin.Context) {
	post, ok := loadPost(c, h.posts)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.votes.Snapshot(c.Request.Context(), middleware.CurrentIdentity(c), post.ID))
}

// Vote toggles the caller's vote: pressing the active direction clears it.
func (h *VoteHandler) Vote(c *gin.Context) {
	post, ok := loadPost(c, h.posts)
	if !ok {
		return
	}
	var req voteRequest
	if !bind(c, &req) {
		return
	}

	state, err := h.votes.Cast(c.Request.Context(), middleware.CurrentIdentity(c), post.ID, vote.Value(*req.Vote))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
