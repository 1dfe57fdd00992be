package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"threadline/internal/apperr"
	"threadline/internal/cache"
	"threadline/internal/identity"
	"threadline/internal/models"
	"threadline/internal/store"
	"threadline/internal/store/mocks"
	"threadline/internal/thread"
)

type recordingScheduler struct {
	mu  sync.Mutex
	ids []uint
}

func (r *recordingScheduler) ScheduleUpdate(postID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, postID)
}

func (r *recordingScheduler) scheduled() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint(nil), r.ids...)
}

var ada = &identity.Identity{UserID: 1, DisplayName: "ada"}

func newLRU(t *testing.T) *cache.LRU {
	t.Helper()
	c, err := cache.NewLRU(16)
	require.NoError(t, err)
	return c
}

func TestCommentService_ReplyBuildsThread(t *testing.T) {
	ctx := context.Background()
	sched := &recordingScheduler{}
	svc := NewCommentService(store.NewMemoryStore(), newLRU(t), time.Minute, sched, zerolog.Nop())

	forest, err := svc.Reply(ctx, ada, 1, nil, "  first!  ")
	require.NoError(t, err)
	require.Len(t, forest, 1)
	root := forest[0]
	assert.Equal(t, "first!", root.Content)
	assert.Equal(t, "ada", root.Author)
	assert.Equal(t, uint(1), root.UserID)

	bob := &identity.Identity{UserID: 2, DisplayName: "bob"}
	forest, err = svc.Reply(ctx, bob, 1, &root.ID, "agreed")
	require.NoError(t, err)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "bob", forest[0].Children[0].Author)

	assert.Equal(t, []uint{1, 1}, sched.scheduled())
}

func TestCommentService_ReplyRequiresIdentity(t *testing.T) {
	m := new(mocks.Store)
	svc := NewCommentService(m, nil, time.Minute, nil, zerolog.Nop())

	_, err := svc.Reply(context.Background(), nil, 1, nil, "hello")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Reply(context.Background(), &identity.Identity{}, 1, nil, "hello")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	m.AssertNotCalled(t, "InsertComment", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "FetchComments", mock.Anything, mock.Anything)
}

func TestCommentService_ReplyRejectsEmptyContent(t *testing.T) {
	m := new(mocks.Store)
	svc := NewCommentService(m, nil, time.Minute, nil, zerolog.Nop())

	parent := uint(3)
	_, err := svc.Reply(context.Background(), ada, 1, &parent, " \n\t ")

	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	m.AssertNotCalled(t, "InsertComment", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "FetchComments", mock.Anything, mock.Anything)
}

func TestCommentService_ReplyToUnknownParent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	other := &models.Comment{PostID: 2, UserID: 1, Author: "ada", Content: "elsewhere"}
	require.NoError(t, s.InsertComment(ctx, other))
	svc := NewCommentService(s, nil, time.Minute, nil, zerolog.Nop())

	_, err := svc.Reply(ctx, ada, 1, &other.ID, "hi")
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	missing := uint(999)
	_, err = svc.Reply(ctx, ada, 1, &missing, "hi")
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	rows, _ := s.FetchComments(ctx, 1)
	assert.Empty(t, rows)
}

func TestCommentService_InsertFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("InsertComment", ctx, mock.AnythingOfType("*models.Comment")).Return(errors.New("db down"))
	sched := &recordingScheduler{}
	svc := NewCommentService(m, nil, time.Minute, sched, zerolog.Nop())

	forest, err := svc.Reply(ctx, ada, 1, nil, "hello")

	assert.Nil(t, forest)
	assert.True(t, apperr.IsStore(err))
	assert.Empty(t, sched.scheduled())
	m.AssertNumberOfCalls(t, "InsertComment", 1)
}

func TestCommentService_LoadDegradesOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("FetchComments", ctx, uint(1)).Return(nil, errors.New("timeout"))
	svc := NewCommentService(m, nil, time.Minute, nil, zerolog.Nop())

	forest := svc.Load(ctx, 1)

	require.NotNil(t, forest)
	assert.Empty(t, forest)
}

func TestCommentService_LoadDropsOrphans(t *testing.T) {
	ctx := context.Background()
	parent := uint(99)
	m := new(mocks.Store)
	m.On("FetchComments", ctx, uint(1)).Return([]models.Comment{
		{ID: 1, PostID: 1, Content: "root"},
		{ID: 3, PostID: 1, ParentID: &parent, Content: "lost"},
	}, nil)
	svc := NewCommentService(m, nil, time.Minute, nil, zerolog.Nop())

	forest := svc.Load(ctx, 1)

	assert.Equal(t, 1, thread.Count(forest))
	assert.Nil(t, thread.Find(forest, 3))
}

func TestCommentService_CachesFlatSet(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("FetchComments", ctx, uint(1)).Return([]models.Comment{{ID: 1, PostID: 1, Content: "root"}}, nil)
	svc := NewCommentService(m, newLRU(t), time.Minute, nil, zerolog.Nop())

	first := svc.Load(ctx, 1)
	second := svc.Load(ctx, 1)

	assert.Equal(t, first, second)
	m.AssertNumberOfCalls(t, "FetchComments", 1)
}

func TestCommentService_ReloadSeesInsertDespiteCache(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	svc := NewCommentService(s, newLRU(t), time.Hour, nil, zerolog.Nop())

	assert.Empty(t, svc.Load(ctx, 1))

	forest, err := svc.Reply(ctx, ada, 1, nil, "now you see me")
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Len(t, svc.Load(ctx, 1), 1)
}

// gatedStore holds the next FetchComments after it has read its rows, so a
// reader can be parked with a set that predates a later insert.
type gatedStore struct {
	store.CommentStore
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedStore(inner store.CommentStore) *gatedStore {
	g := &gatedStore{CommentStore: inner, entered: make(chan struct{}), release: make(chan struct{})}
	g.armed.Store(true)
	return g
}

func (g *gatedStore) FetchComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	rows, err := g.CommentStore.FetchComments(ctx, postID)
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return rows, err
}

func TestCommentService_SlowReaderDoesNotHideReply(t *testing.T) {
	ctx := context.Background()
	gs := newGatedStore(store.NewMemoryStore())
	svc := NewCommentService(gs, newLRU(t), time.Hour, nil, zerolog.Nop())

	loaded := make(chan []*thread.Node)
	go func() { loaded <- svc.Load(ctx, 7) }()
	<-gs.entered

	forest, err := svc.Reply(ctx, ada, 7, nil, "hello")
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, "hello", forest[0].Content)

	// the parked reader now tries to cache its empty set
	close(gs.release)
	assert.Empty(t, <-loaded)

	again := svc.Load(ctx, 7)
	require.Len(t, again, 1)
	assert.Equal(t, forest[0].ID, again[0].ID)
}

func TestCommentService_ReplyReloadsFromStore(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("InsertComment", ctx, mock.AnythingOfType("*models.Comment")).Return(nil)
	m.On("FetchComments", ctx, uint(1)).Return([]models.Comment{{ID: 1, PostID: 1, Content: "hello"}}, nil)
	c := newLRU(t)
	c.Set(ctx, commentsKey(1), []byte("[]"), time.Hour)
	svc := NewCommentService(m, c, time.Hour, nil, zerolog.Nop())

	forest, err := svc.Reply(ctx, ada, 1, nil, "hello")
	require.NoError(t, err)
	require.Len(t, forest, 1)

	// the fresh set is cached for the next reader
	assert.Len(t, svc.Load(ctx, 1), 1)
	m.AssertNumberOfCalls(t, "FetchComments", 1)
}

func TestCommentService_ReplyReloadFailureDegrades(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Store)
	m.On("InsertComment", ctx, mock.AnythingOfType("*models.Comment")).Return(nil)
	m.On("FetchComments", ctx, uint(1)).Return(nil, errors.New("timeout"))
	sched := &recordingScheduler{}
	svc := NewCommentService(m, nil, time.Minute, sched, zerolog.Nop())

	forest, err := svc.Reply(ctx, ada, 1, nil, "hello")

	require.NoError(t, err)
	assert.NotNil(t, forest)
	assert.Empty(t, forest)
	assert.Equal(t, []uint{1}, sched.scheduled())
}

func TestRender(t *testing.T) {
	forest := thread.BuildForest([]models.Comment{
		{ID: 1, PostID: 1, Content: "**bold**"},
		{ID: 2, PostID: 1, ParentID: func() *uint { v := uint(1); return &v }(), Content: "_soft_"},
	})

	Render(forest)

	assert.Contains(t, forest[0].ContentHTML, "<strong>bold</strong>")
	assert.Contains(t, forest[0].Children[0].ContentHTML, "<em>soft</em>")
	assert.Equal(t, "**bold**", forest[0].Content)
}
