package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"threadline/internal/apperr"
	"threadline/internal/store"
	"threadline/internal/utils"
)

const (
	rankingQueueSize = 1000
	rankingBatchSize = 50
)

// RankingService 提供异步计算和更新帖子 Score 的服务
type RankingService struct {
	store    store.PostStore
	log      zerolog.Logger
	interval time.Duration

	queue   chan uint // 待更新的帖子 ID 队列
	pending map[uint]bool
	mu      sync.Mutex

	done chan struct{}
}

func NewRankingService(s store.PostStore, interval time.Duration, log zerolog.Logger) *RankingService {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &RankingService{
		store:    s,
		log:      log,
		interval: interval,
		queue:    make(chan uint, rankingQueueSize), // 缓冲队列，防止阻塞
		pending:  make(map[uint]bool),
		done:     make(chan struct{}),
	}
}

// Start runs the batch worker until ctx is cancelled. Done is closed once it
// has flushed the last batch.
func (s *RankingService) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *RankingService) Done() <-chan struct{} {
	return s.done
}

// ScheduleUpdate 将帖子加入更新队列（异步）
// 使用去重机制避免短时间内重复计算同一帖子
func (s *RankingService) ScheduleUpdate(postID uint) {
	s.mu.Lock()
	if s.pending[postID] {
		s.mu.Unlock()
		return
	}
	s.pending[postID] = true
	s.mu.Unlock()

	select {
	case s.queue <- postID:
	default:
		// 队列满了，移除 pending 标记
		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
		s.log.Warn().Uint("post_id", postID).Msg("ranking queue full, update skipped")
	}
}

// worker 后台处理队列中的更新请求
func (s *RankingService) worker(ctx context.Context) {
	defer close(s.done)

	batch := make([]uint, 0, rankingBatchSize)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				// the request context is gone, give the flush its own
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				s.processBatch(flushCtx, batch)
				cancel()
			}
			return
		case postID := <-s.queue:
			batch = append(batch, postID)
			if len(batch) >= rankingBatchSize {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *RankingService) processBatch(ctx context.Context, postIDs []uint) {
	for _, postID := range postIDs {
		if err := s.UpdateNow(ctx, postID); err != nil {
			s.log.Error().Err(err).Uint("post_id", postID).Msg("update score failed")
		}

		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
	}
}

// UpdateNow 同步计算并更新单个帖子的 Score
func (s *RankingService) UpdateNow(ctx context.Context, postID uint) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return apperr.Store("get post", err)
	}

	score := utils.CalculateScore(post.CreatedAt, post.Likes, post.Dislikes, post.CommentCount)
	if err := s.store.UpdatePostScore(ctx, postID, int(score)); err != nil {
		return apperr.Store("update score", err)
	}
	return nil
}

// RefreshRecent 重新计算最新一页帖子和当前最热一页帖子的分数（去重）
func (s *RankingService) RefreshRecent(ctx context.Context) int {
	processed := make(map[uint]bool)
	for _, sort := range []string{store.SortNew, store.SortHot} {
		posts, _, err := s.store.ListPosts(ctx, store.PostFilter{Sort: sort, Limit: 100})
		if err != nil {
			s.log.Error().Err(err).Str("sort", sort).Msg("list posts for ranking failed")
			continue
		}
		for _, p := range posts {
			if processed[p.ID] {
				continue
			}
			processed[p.ID] = true
			if err := s.UpdateNow(ctx, p.ID); err != nil {
				s.log.Error().Err(err).Uint("post_id", p.ID).Msg("update score failed")
			}
		}
	}
	s.log.Info().Int("count", len(processed)).Msg("post scores refreshed")
	return len(processed)
}
