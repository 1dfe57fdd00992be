package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"threadline/internal/apperr"
	"threadline/internal/models"
)

// GormStore is the PostgreSQL backend. The *gorm.DB should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.ErrConflict
	}
	return err
}

func (s *GormStore) FetchComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *GormStore) InsertComment(ctx context.Context, c *models.Comment) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) FetchVotes(ctx context.Context, postID uint) ([]models.Vote, error) {
	votes := make([]models.Vote, 0)
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (s *GormStore) ProbeVote(ctx context.Context, userID, postID uint) (*models.Vote, error) {
	var v models.Vote
	err := s.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *GormStore) InsertVote(ctx context.Context, v *models.Vote) error {
	return translate(s.db.WithContext(ctx).Create(v).Error)
}

func (s *GormStore) UpdateVote(ctx context.Context, id uint, value int8) error {
	res := s.db.WithContext(ctx).Model(&models.Vote{}).Where("id = ?", id).Update("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *GormStore) CreatePost(ctx context.Context, p *models.Post) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	posts := []models.Post{post}
	if err := s.fillPostStats(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (s *GormStore) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, int64, error) {
	f = normalize(f)

	query := s.db.WithContext(ctx).Model(&models.Post{})
	if f.CommunityID != nil {
		query = query.Where("community_id = ?", *f.CommunityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if f.Sort == SortHot {
		order = "score DESC, created_at DESC"
	}

	posts := make([]models.Post, 0)
	if err := query.Order(order).Limit(f.Limit).Offset(f.Offset).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	if err := s.fillPostStats(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// fillPostStats 批量填充帖子的评论数和赞踩数
func (s *GormStore) fillPostStats(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type commentCount struct {
		PostID uint
		Count  int
	}
	var comments []commentCount
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&comments).Error
	if err != nil {
		return err
	}

	type voteCount struct {
		PostID   uint
		Likes    int
		Dislikes int
	}
	var votes []voteCount
	err = s.db.WithContext(ctx).Model(&models.Vote{}).
		Select("post_id, SUM(CASE WHEN value = 1 THEN 1 ELSE 0 END) as likes, SUM(CASE WHEN value = -1 THEN 1 ELSE 0 END) as dislikes").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&votes).Error
	if err != nil {
		return err
	}

	commentMap := make(map[uint]int, len(comments))
	for _, c := range comments {
		commentMap[c.PostID] = c.Count
	}
	voteMap := make(map[uint]voteCount, len(votes))
	for _, v := range votes {
		voteMap[v.PostID] = v
	}

	for i := range posts {
		posts[i].CommentCount = commentMap[posts[i].ID]
		posts[i].Likes = voteMap[posts[i].ID].Likes
		posts[i].Dislikes = voteMap[posts[i].ID].Dislikes
	}
	return nil
}

func (s *GormStore) UpdatePostScore(ctx context.Context, id uint, score int) error {
	return s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).UpdateColumn("score", score).Error
}

func (s *GormStore) CreateCommunity(ctx context.Context, c *models.Community) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) GetCommunity(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	if err := s.db.WithContext(ctx).First(&community, id).Error; err != nil {
		return nil, translate(err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("community_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	community.PostCount = int(count)
	return &community, nil
}

func (s *GormStore) ListCommunities(ctx context.Context) ([]models.Community, error) {
	communities := make([]models.Community, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&communities).Error; err != nil {
		return nil, err
	}

	type postCount struct {
		CommunityID uint
		Count       int
	}
	var counts []postCount
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Select("community_id, COUNT(*) as count").
		Where("community_id IS NOT NULL").
		Group("community_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	countMap := make(map[uint]int, len(counts))
	for _, c := range counts {
		countMap[c.CommunityID] = c.Count
	}
	for i := range communities {
		communities[i].PostCount = countMap[communities[i].ID]
	}
	return communities, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
