package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title   string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"title"`
	Slug    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Content string    `gorm:"type:text;not null" json:"content"`

	// Stored filenames of uploaded media, in upload order.
	Media []string `gorm:"serializer:json" json:"media,omitempty"`

	// Author is set at creation and never reassigned. A pointer so that
	// responses built without the preload omit the field instead of
	// rendering a zero-valued user.
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`

	// Comments in insertion order. Membership lives on Comment.PostID, so the
	// list and the comment rows cannot drift apart.
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
