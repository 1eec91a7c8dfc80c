package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/okaneren/inkpost/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost inserts the post. Title and slug each carry a unique index, so
// a duplicate of either surfaces as gorm.ErrDuplicatedKey.
func (r *PostRepository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetAllPosts returns every post, newest first, with author and comments.
func (r *PostRepository) GetAllPosts() ([]models.Post, error) {
	var posts []models.Post
	err := r.db.
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		Order("created_at DESC").
		Find(&posts).Error

	return posts, err
}

func (r *PostRepository) GetPostsByAuthor(authorID uuid.UUID) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error

	return posts, err
}

func (r *PostRepository) GetPostBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		Where("slug = ?", slug).
		First(&post).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &post, nil
}
