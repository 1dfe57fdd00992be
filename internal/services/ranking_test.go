package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadline/internal/models"
	"threadline/internal/store"
	"threadline/internal/store/mocks"
)

func seedPost(t *testing.T, s *store.MemoryStore, likes int) *models.Post {
	t.Helper()
	ctx := context.Background()
	p := &models.Post{UserID: 1, Title: "post"}
	require.NoError(t, s.CreatePost(ctx, p))
	for i := 0; i < likes; i++ {
		require.NoError(t, s.InsertVote(ctx, &models.Vote{UserID: uint(100 + i), PostID: p.ID, Value: 1}))
	}
	return p
}

func scoreOf(t *testing.T, s *store.MemoryStore, id uint) int {
	t.Helper()
	p, err := s.GetPost(context.Background(), id)
	require.NoError(t, err)
	return p.Score
}

func TestRankingService_UpdateNow(t *testing.T) {
	s := store.NewMemoryStore()
	p := seedPost(t, s, 5)
	svc := NewRankingService(s, time.Second, zerolog.Nop())

	require.NoError(t, svc.UpdateNow(context.Background(), p.ID))
	assert.Greater(t, scoreOf(t, s, p.ID), 0)

	assert.NoError(t, svc.UpdateNow(context.Background(), 9999), "missing posts are skipped")
}

func TestRankingService_UpdateNowStoreFailure(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("GetPost", ctx, uint(1)).Return(nil, errors.New("down"))
	svc := NewRankingService(m, time.Second, zerolog.Nop())

	assert.Error(t, svc.UpdateNow(ctx, 1))
	m.AssertNotCalled(t, "UpdatePostScore")
}

func TestRankingService_ScheduleDeduplicates(t *testing.T) {
	svc := NewRankingService(store.NewMemoryStore(), time.Second, zerolog.Nop())

	svc.ScheduleUpdate(1)
	svc.ScheduleUpdate(1)
	svc.ScheduleUpdate(2)

	assert.Len(t, svc.queue, 2)
}

func TestRankingService_WorkerProcessesQueue(t *testing.T) {
	s := store.NewMemoryStore()
	p := seedPost(t, s, 3)
	svc := NewRankingService(s, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	svc.ScheduleUpdate(p.ID)

	assert.Eventually(t, func() bool { return scoreOf(t, s, p.ID) > 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-svc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRankingService_RefreshRecent(t *testing.T) {
	s := store.NewMemoryStore()
	a := seedPost(t, s, 2)
	b := seedPost(t, s, 0)
	svc := NewRankingService(s, time.Second, zerolog.Nop())

	n := svc.RefreshRecent(context.Background())

	assert.Equal(t, 2, n)
	assert.Greater(t, scoreOf(t, s, a.ID), 0)
	assert.Equal(t, 0, scoreOf(t, s, b.ID))
}
