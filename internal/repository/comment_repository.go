package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/okaneren/inkpost/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPostMissing   = errors.New("post does not exist")
	ErrParentMissing = errors.New("parent comment does not exist")
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateComment inserts the comment in a single transaction with the post
// existence check and the parent reply counter bump, so the post's comment
// set and the counters can never be observed half-applied. Concurrent
// comments on the same post are independent inserts; neither can overwrite
// the other.
func (r *CommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPostMissing
		}

		if comment.ParentID != nil {
			if err := tx.Model(&models.Comment{}).
				Where("id = ? AND post_id = ?", *comment.ParentID, comment.PostID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrParentMissing
			}
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		if comment.ParentID != nil {
			// Atomic increment; a plain read-modify-write would lose
			// concurrent replies.
			if err := tx.Model(&models.Comment{}).
				Where("id = ?", *comment.ParentID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// GetCommentsByPost returns one page of a post's comments in insertion order.
func (r *CommentRepository) GetCommentsByPost(postID uuid.UUID, limit, skip int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset(skip).
		Limit(limit).
		Find(&comments).Error

	return comments, err
}

func (r *CommentRepository) CountCommentsByPost(postID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total).Error
	return total, err
}
