package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"threadline/internal/models"
	"threadline/internal/store"
)

type Store struct {
	mock.Mock
}

var _ store.Store = (*Store)(nil)

func (m *Store) FetchComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *Store) InsertComment(ctx context.Context, c *models.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *Store) FetchVotes(ctx context.Context, postID uint) ([]models.Vote, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vote), args.Error(1)
}

func (m *Store) ProbeVote(ctx context.Context, userID, postID uint) (*models.Vote, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

func (m *Store) InsertVote(ctx context.Context, v *models.Vote) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *Store) UpdateVote(ctx context.Context, id uint, value int8) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

func (m *Store) CreatePost(ctx context.Context, p *models.Post) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *Store) ListPosts(ctx context.Context, f store.PostFilter) ([]models.Post, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *Store) UpdatePostScore(ctx context.Context, id uint, score int) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

func (m *Store) CreateCommunity(ctx context.Context, c *models.Community) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *Store) GetCommunity(ctx context.Context, id uint) (*models.Community, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Community), args.Error(1)
}

func (m *Store) ListCommunities(ctx context.Context) ([]models.Community, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Community), args.Error(1)
}

func (m *Store) CreateUser(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
