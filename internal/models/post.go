package models

import (
	"time"
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Author      string    `gorm:"size:100" json:"author"`
	CommunityID *uint     `gorm:"index" json:"community_id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	ImageURL    string    `json:"image_url"` // Optional, upload happens elsewhere
	Score       int       `gorm:"default:0;index" json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	Likes        int `gorm:"-" json:"likes"`
	Dislikes     int `gorm:"-" json:"dislikes"`
	CommentCount int `gorm:"-" json:"comment_count"`
}
