package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content string    `gorm:"type:text;not null" json:"content"`

	Likes      int `gorm:"not null;default:0" json:"likes"`
	ReplyCount int `gorm:"not null;default:0" json:"reply_count"`

	// ParentID links a threaded reply to its single direct parent.
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	// A pointer for the same reason as Post.Author: only preloaded
	// listings should carry the author object.
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	PostID uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
