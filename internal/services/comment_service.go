package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"threadline/internal/apperr"
	"threadline/internal/cache"
	"threadline/internal/identity"
	"threadline/internal/models"
	"threadline/internal/store"
	"threadline/internal/thread"
	"threadline/internal/utils"
)

// ScoreScheduler queues a post for hot-score recalculation.
type ScoreScheduler interface {
	ScheduleUpdate(postID uint)
}

type nopScheduler struct{}

func (nopScheduler) ScheduleUpdate(uint) {}

// CommentService loads and extends the comment thread of a post. The flat
// row set is cached; the forest is always rebuilt from it.
//
// Every insert bumps the post's generation. Rows read under an older
// generation are never written to the cache, so a slow reader cannot put
// back a set that misses an acknowledged comment.
type CommentService struct {
	store   store.CommentStore
	cache   cache.Cache
	ttl     time.Duration
	ranking ScoreScheduler
	log     zerolog.Logger

	mu  sync.Mutex
	gen map[uint]uint64
}

func NewCommentService(s store.CommentStore, c cache.Cache, ttl time.Duration, ranking ScoreScheduler, log zerolog.Logger) *CommentService {
	if c == nil {
		c = cache.Nop{}
	}
	if ranking == nil {
		ranking = nopScheduler{}
	}
	return &CommentService{store: s, cache: c, ttl: ttl, ranking: ranking, log: log, gen: make(map[uint]uint64)}
}

func commentsKey(postID uint) string {
	return fmt.Sprintf("comments:%d", postID)
}

func (s *CommentService) generation(postID uint) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[postID]
}

// invalidate drops the cached rows of postID and starts a new generation.
func (s *CommentService) invalidate(ctx context.Context, postID uint) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[postID]++
	s.cache.Delete(ctx, commentsKey(postID))
	return s.gen[postID]
}

// remember caches rows unless an insert happened since they were read.
func (s *CommentService) remember(ctx context.Context, postID uint, seen uint64, rows []models.Comment) {
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[postID] != seen {
		s.log.Debug().Uint("post_id", postID).Msg("stale comment rows not cached")
		return
	}
	s.cache.Set(ctx, commentsKey(postID), data, s.ttl)
}

// fetch returns the flat rows of postID, from cache when possible.
func (s *CommentService) fetch(ctx context.Context, postID uint) ([]models.Comment, error) {
	key := commentsKey(postID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var rows []models.Comment
		if json.Unmarshal(cached, &rows) == nil {
			return rows, nil
		}
		s.cache.Delete(ctx, key)
	}

	seen := s.generation(postID)
	rows, err := s.store.FetchComments(ctx, postID)
	if err != nil {
		return nil, apperr.Store("fetch comments", err)
	}
	s.remember(ctx, postID, seen, rows)
	return rows, nil
}

// Load returns the comment forest of postID. A store failure is logged and
// yields an empty forest.
func (s *CommentService) Load(ctx context.Context, postID uint) []*thread.Node {
	rows, err := s.fetch(ctx, postID)
	if err != nil {
		s.log.Error().Err(err).Uint("post_id", postID).Msg("load comments failed")
		return []*thread.Node{}
	}
	return s.build(postID, rows)
}

func (s *CommentService) build(postID uint, rows []models.Comment) []*thread.Node {
	forest := thread.BuildForest(rows)
	if dropped := len(rows) - thread.Count(forest); dropped > 0 {
		s.log.Debug().Uint("post_id", postID).Int("dropped", dropped).Msg("orphan comments skipped")
	}
	return forest
}

// Render fills ContentHTML of every node.
func Render(forest []*thread.Node) []*thread.Node {
	thread.Walk(forest, func(n *thread.Node, _ int) bool {
		n.ContentHTML = string(utils.RenderMarkdown(n.Content))
		return true
	})
	return forest
}

// Reply appends a comment to postID, under parentID when it is set, and
// returns the forest reloaded from the store, never from cache.
//
// Identity and content are checked before the store is touched. A reply to
// a comment that is not part of the post is rejected. Write failures come
// back as *apperr.StoreError and are not retried.
func (s *CommentService) Reply(ctx context.Context, ident *identity.Identity, postID uint, parentID *uint, content string) ([]*thread.Node, error) {
	if err := identity.Require(ident); err != nil {
		return nil, err
	}
	content, err := identity.ValidateContent(content)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		rows, err := s.fetch(ctx, postID)
		if err != nil {
			return nil, err
		}
		if !containsComment(rows, *parentID) {
			return nil, apperr.Validation("parent comment %d is not on post %d", *parentID, postID)
		}
	}

	c := &models.Comment{
		PostID:   postID,
		ParentID: parentID,
		UserID:   ident.UserID,
		Author:   ident.DisplayName,
		Content:  content,
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return nil, apperr.Store("insert comment", err)
	}

	seen := s.invalidate(ctx, postID)
	s.ranking.ScheduleUpdate(postID)
	s.log.Info().Uint("post_id", postID).Uint("comment_id", c.ID).Uint("user_id", ident.UserID).Msg("comment added")

	rows, err := s.store.FetchComments(ctx, postID)
	if err != nil {
		s.log.Error().Err(err).Uint("post_id", postID).Msg("reload comments failed")
		return []*thread.Node{}, nil
	}
	s.remember(ctx, postID, seen, rows)
	return s.build(postID, rows), nil
}

func containsComment(rows []models.Comment, id uint) bool {
	for i := range rows {
		if rows[i].ID == id {
			return true
		}
	}
	return false
}
