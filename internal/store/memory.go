package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"threadline/internal/apperr"
	"threadline/internal/models"
)

// MemoryStore keeps everything in process. It backs STORE_DRIVER=memory and
// the tests. Returned values are copies.
type MemoryStore struct {
	mu sync.RWMutex

	nextID      uint
	comments    []models.Comment
	votes       []models.Vote
	posts       []models.Post
	communities []models.Community
	users       []models.User

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func copyUint(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *MemoryStore) FetchComments(_ context.Context, postID uint) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			c.ParentID = copyUint(c.ParentID)
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) InsertComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.id()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	row := *c
	row.ParentID = copyUint(c.ParentID)
	s.comments = append(s.comments, row)
	return nil
}

func (s *MemoryStore) FetchVotes(_ context.Context, postID uint) ([]models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Vote, 0)
	for _, v := range s.votes {
		if v.PostID == postID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemoryStore) ProbeVote(_ context.Context, userID, postID uint) (*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.votes {
		if v.UserID == userID && v.PostID == postID {
			found := v
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) InsertVote(_ context.Context, v *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.votes {
		if existing.UserID == v.UserID && existing.PostID == v.PostID {
			return apperr.ErrConflict
		}
	}
	v.ID = s.id()
	now := s.now()
	v.CreatedAt, v.UpdatedAt = now, now
	s.votes = append(s.votes, *v)
	return nil
}

func (s *MemoryStore) UpdateVote(_ context.Context, id uint, value int8) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.votes {
		if s.votes[i].ID == id {
			s.votes[i].Value = value
			s.votes[i].UpdatedAt = s.now()
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (s *MemoryStore) CreatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.id()
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	row := *p
	row.CommunityID = copyUint(p.CommunityID)
	s.posts = append(s.posts, row)
	return nil
}

// withStats must be called with the lock held.
func (s *MemoryStore) withStats(p models.Post) models.Post {
	p.CommunityID = copyUint(p.CommunityID)
	p.Likes, p.Dislikes, p.CommentCount = 0, 0, 0
	for _, v := range s.votes {
		if v.PostID != p.ID {
			continue
		}
		switch v.Value {
		case 1:
			p.Likes++
		case -1:
			p.Dislikes++
		}
	}
	for _, c := range s.comments {
		if c.PostID == p.ID {
			p.CommentCount++
		}
	}
	return p
}

func (s *MemoryStore) GetPost(_ context.Context, id uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.ID == id {
			out := s.withStats(p)
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *MemoryStore) ListPosts(_ context.Context, f PostFilter) ([]models.Post, int64, error) {
	f = normalize(f)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Post, 0)
	for _, p := range s.posts {
		if f.CommunityID != nil && (p.CommunityID == nil || *p.CommunityID != *f.CommunityID) {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if f.Sort == SortHot && a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []models.Post{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]models.Post, 0, end-f.Offset)
	for _, p := range matched[f.Offset:end] {
		out = append(out, s.withStats(p))
	}
	return out, total, nil
}

func (s *MemoryStore) UpdatePostScore(_ context.Context, id uint, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Score = score
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) CreateCommunity(_ context.Context, c *models.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.communities {
		if strings.EqualFold(existing.Name, c.Name) {
			return apperr.ErrConflict
		}
	}
	c.ID = s.id()
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.communities = append(s.communities, *c)
	return nil
}

func (s *MemoryStore) GetCommunity(_ context.Context, id uint) (*models.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.communities {
		if c.ID == id {
			c.PostCount = s.postCount(c.ID)
			return &c, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *MemoryStore) postCount(communityID uint) int {
	n := 0
	for _, p := range s.posts {
		if p.CommunityID != nil && *p.CommunityID == communityID {
			n++
		}
	}
	return n
}

func (s *MemoryStore) ListCommunities(_ context.Context) ([]models.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Community, 0, len(s.communities))
	for _, c := range s.communities {
		c.PostCount = s.postCount(c.ID)
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperr.ErrConflict
		}
	}
	u.ID = s.id()
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users = append(s.users, *u)
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
