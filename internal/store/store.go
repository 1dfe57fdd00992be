// Package store is the persistence boundary of the board.
//
// Every method is a single request/response against the backing service and
// takes a context. Failures are opaque: callers only distinguish
// apperr.ErrNotFound and apperr.ErrConflict, everything else is a generic
// store failure.
package store

import (
	"context"

	"threadline/internal/models"
)

// CommentStore reads and appends flat comment rows.
type CommentStore interface {
	// FetchComments returns every comment of postID ordered by created_at, then id.
	FetchComments(ctx context.Context, postID uint) ([]models.Comment, error)
	// InsertComment persists c and fills in its ID and CreatedAt.
	InsertComment(ctx context.Context, c *models.Comment) error
}

// VoteStore keeps one vote row per (user, post).
type VoteStore interface {
	FetchVotes(ctx context.Context, postID uint) ([]models.Vote, error)
	// ProbeVote returns the user's vote row on postID, or nil without error when absent.
	ProbeVote(ctx context.Context, userID, postID uint) (*models.Vote, error)
	InsertVote(ctx context.Context, v *models.Vote) error
	UpdateVote(ctx context.Context, id uint, value int8) error
}

const (
	SortNew = "new"
	SortHot = "hot"
)

// PostFilter selects a page of posts.
type PostFilter struct {
	CommunityID *uint
	Sort        string
	Limit       int
	Offset      int
}

// PostStore covers the thin post CRUD surface. Returned posts carry their
// like, dislike and comment counts.
type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, f PostFilter) ([]models.Post, int64, error)
	UpdatePostScore(ctx context.Context, id uint, score int) error
}

type CommunityStore interface {
	CreateCommunity(ctx context.Context, c *models.Community) error
	GetCommunity(ctx context.Context, id uint) (*models.Community, error)
	ListCommunities(ctx context.Context) ([]models.Community, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store is the full persistence boundary.
type Store interface {
	CommentStore
	VoteStore
	PostStore
	CommunityStore
	UserStore
}

func normalize(f PostFilter) PostFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 30
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Sort != SortHot {
		f.Sort = SortNew
	}
	return f
}
