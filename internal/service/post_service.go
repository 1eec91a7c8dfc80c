package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/okaneren/inkpost/internal/auditlog"
	"github.com/okaneren/inkpost/internal/models"
	"github.com/okaneren/inkpost/internal/repository"
	"github.com/okaneren/inkpost/internal/utils"
	"github.com/okaneren/inkpost/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrDuplicateTitle = errors.New("title already exists")
	ErrPostNotFound   = errors.New("post not found")
	ErrNoPosts        = errors.New("no posts found for this user")
)

type PostService struct {
	postRepo *repository.PostRepository
	audit    *auditlog.Log
}

func NewPostService(postRepo *repository.PostRepository, audit *auditlog.Log) *PostService {
	return &PostService{
		postRepo: postRepo,
		audit:    audit,
	}
}

// Create persists a new post authored by authorID. The slug is derived from
// the title; duplicate titles and duplicate slugs are both rejected by their
// unique indexes, so two concurrent creations of the same title resolve to
// one winner.
func (s *PostService) Create(authorID uuid.UUID, title, content string, media []string) (*models.Post, error) {
	start := time.Now()

	if title == "" {
		return nil, validationError("title is required")
	}
	if content == "" {
		return nil, validationError("content is required")
	}

	slug := utils.Slugify(title)
	if slug == "" {
		return nil, validationError("title must contain at least one word character")
	}

	post := &models.Post{
		ID:       uuid.New(),
		Title:    title,
		Slug:     slug,
		Content:  content,
		Media:    media,
		AuthorID: authorID,
		Comments: []models.Comment{},
	}

	if err := s.postRepo.CreatePost(post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Log.Warn("Post rejected: duplicate title or slug",
				zap.String("title", title),
				zap.String("slug", slug),
			)
			return nil, ErrDuplicateTitle
		}
		logger.Log.Error("Failed to create post",
			zap.String("title", title),
			zap.Error(err),
		)
		return nil, err
	}

	if s.audit != nil {
		if err := s.audit.Write(auditlog.Entry{
			Event:   auditlog.EventPostCreated,
			ActorID: authorID.String(),
			Subject: post.ID.String(),
			Detail:  slug,
		}); err != nil {
			logger.Log.Warn("Audit write failed",
				zap.String("event", auditlog.EventPostCreated),
				zap.Error(err),
			)
		}
	}

	logger.Log.Info("Post created",
		zap.String("post_id", post.ID.String()),
		zap.String("slug", slug),
		zap.String("author_id", authorID.String()),
		zap.Int("media_count", len(media)),
		zap.Duration("duration", time.Since(start)),
	)

	return post, nil
}

func (s *PostService) List() ([]models.Post, error) {
	posts, err := s.postRepo.GetAllPosts()
	if err != nil {
		logger.Log.Error("Failed to list posts", zap.Error(err))
		return nil, err
	}
	return posts, nil
}

func (s *PostService) ListByAuthor(authorID uuid.UUID) ([]models.Post, error) {
	posts, err := s.postRepo.GetPostsByAuthor(authorID)
	if err != nil {
		logger.Log.Error("Failed to list posts by author",
			zap.String("author_id", authorID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}
	return posts, nil
}

func (s *PostService) GetBySlug(slug string) (*models.Post, error) {
	post, err := s.postRepo.GetPostBySlug(slug)
	if err != nil {
		logger.Log.Error("Failed to get post by slug",
			zap.String("slug", slug),
			zap.Error(err),
		)
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}
