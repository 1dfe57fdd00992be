package models

import (
	"time"
)

// Comment is one flat comment row. Rows are never edited after insert; the
// reply tree is derived from ParentID on every load.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index:idx_comment_post_created,priority:1" json:"post_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Author    string    `gorm:"size:100;not null" json:"author"` // display name at write time
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comment_post_created,priority:2" json:"created_at"`
}

// IsRoot reports whether the comment is top-level.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}
