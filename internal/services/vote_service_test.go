package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"threadline/internal/apperr"
	"threadline/internal/models"
	"threadline/internal/store"
	"threadline/internal/store/mocks"
	"threadline/internal/vote"
)

func TestVoteService_CastRequiresIdentity(t *testing.T) {
	m := new(mocks.Store)
	svc := NewVoteService(m, nil, zerolog.Nop())

	_, err := svc.Cast(context.Background(), nil, 1, vote.Up)

	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	m.AssertExpectations(t)
}

func TestVoteService_LikeThenDislike(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.InsertVote(ctx, &models.Vote{UserID: 5, PostID: 1, Value: 1}))
	sched := &recordingScheduler{}
	svc := NewVoteService(s, sched, zerolog.Nop())

	state, err := svc.Cast(ctx, ada, 1, vote.Up)
	require.NoError(t, err)
	assert.Equal(t, vote.State{Vote: vote.Up, Tally: vote.Tally{Likes: 2}}, state)

	state, err = svc.Cast(ctx, ada, 1, vote.Down)
	require.NoError(t, err)
	assert.Equal(t, vote.State{Vote: vote.Down, Tally: vote.Tally{Likes: 1, Dislikes: 1}}, state)

	votes, _ := s.FetchVotes(ctx, 1)
	mine := 0
	for _, v := range votes {
		if v.UserID == ada.UserID {
			mine++
			assert.Equal(t, int8(-1), v.Value)
		}
	}
	assert.Equal(t, 1, mine)
	assert.Equal(t, []uint{1, 1}, sched.scheduled())
}

func TestVoteService_Snapshot(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.InsertVote(ctx, &models.Vote{UserID: 1, PostID: 1, Value: -1}))
	require.NoError(t, s.InsertVote(ctx, &models.Vote{UserID: 2, PostID: 1, Value: 1}))
	svc := NewVoteService(s, nil, zerolog.Nop())

	assert.Equal(t, vote.State{Vote: vote.Down, Tally: vote.Tally{Likes: 1, Dislikes: 1}}, svc.Snapshot(ctx, ada, 1))
	assert.Equal(t, vote.State{Tally: vote.Tally{Likes: 1, Dislikes: 1}}, svc.Snapshot(ctx, nil, 1))
}

func TestVoteService_SnapshotDegrades(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("FetchVotes", ctx, uint(1)).Return(nil, errors.New("boom"))
	m.On("ProbeVote", ctx, ada.UserID, uint(1)).Return(&models.Vote{ID: 3, UserID: 1, PostID: 1, Value: 1}, nil)
	svc := NewVoteService(m, nil, zerolog.Nop())

	state := svc.Snapshot(ctx, ada, 1)

	assert.Equal(t, vote.State{Vote: vote.Up}, state)
}

func TestVoteService_CastStoreFailure(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("FetchVotes", ctx, uint(1)).Return([]models.Vote{}, nil)
	m.On("ProbeVote", ctx, ada.UserID, uint(1)).Return(nil, nil).Once()
	m.On("ProbeVote", ctx, ada.UserID, uint(1)).Return(nil, errors.New("reset")).Once()
	sched := &recordingScheduler{}
	svc := NewVoteService(m, sched, zerolog.Nop())

	state, err := svc.Cast(ctx, ada, 1, vote.Up)

	assert.True(t, apperr.IsStore(err))
	assert.Equal(t, vote.State{Vote: vote.Up, Tally: vote.Tally{Likes: 1}}, state)
	assert.Empty(t, sched.scheduled())
}

func TestVoteService_CastRejectsInvalidValueBeforeStore(t *testing.T) {
	for _, requested := range []vote.Value{vote.None, 2, -3} {
		m := new(mocks.Store)
		svc := NewVoteService(m, nil, zerolog.Nop())

		_, err := svc.Cast(context.Background(), ada, 1, requested)

		assert.ErrorIs(t, err, apperr.ErrValidationFailed)
		m.AssertNotCalled(t, "FetchVotes", mock.Anything, mock.Anything)
		m.AssertNotCalled(t, "ProbeVote", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestVoteService_OpenFailsWhenPriorVoteUnreadable(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("ProbeVote", ctx, ada.UserID, uint(1)).Return(nil, errors.New("reset"))
	sched := &recordingScheduler{}
	svc := NewVoteService(m, sched, zerolog.Nop())

	r, err := svc.Open(ctx, ada, 1)
	assert.Nil(t, r)
	assert.True(t, apperr.IsStore(err))

	state, err := svc.Cast(ctx, ada, 1, vote.Up)
	assert.True(t, apperr.IsStore(err))
	assert.Equal(t, vote.State{}, state)
	m.AssertNotCalled(t, "InsertVote", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "UpdateVote", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, sched.scheduled())
}

func TestVoteService_SnapshotStillDegradesOnProbeFailure(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("FetchVotes", ctx, uint(1)).Return([]models.Vote{{UserID: 1, PostID: 1, Value: 1}}, nil)
	m.On("ProbeVote", ctx, ada.UserID, uint(1)).Return(nil, errors.New("reset"))
	svc := NewVoteService(m, nil, zerolog.Nop())

	assert.Equal(t, vote.State{Tally: vote.Tally{Likes: 1}}, svc.Snapshot(ctx, ada, 1))
}
