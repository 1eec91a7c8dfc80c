package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/okaneren/inkpost/internal/auditlog"
	"github.com/okaneren/inkpost/internal/models"
	"github.com/okaneren/inkpost/internal/repository"
	"github.com/okaneren/inkpost/pkg/logger"
	"go.uber.org/zap"
)

var ErrParentNotFound = errors.New("parent comment not found")

const (
	defaultCommentLimit = 5
	defaultCommentSkip  = 0
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	audit       *auditlog.Log
}

func NewCommentService(commentRepo *repository.CommentRepository, audit *auditlog.Log) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		audit:       audit,
	}
}

// Add creates a comment on an existing post, optionally as a threaded reply.
// The insert, the post existence check and the parent counter bump commit
// together; a partial write cannot be observed.
func (s *CommentService) Add(postID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*models.Comment, error) {
	if content == "" {
		return nil, validationError("content is required")
	}

	comment := &models.Comment{
		ID:       uuid.New(),
		Content:  content,
		UserID:   authorID,
		PostID:   postID,
		ParentID: parentID,
	}

	if err := s.commentRepo.CreateComment(comment); err != nil {
		switch {
		case errors.Is(err, repository.ErrPostMissing):
			return nil, ErrPostNotFound
		case errors.Is(err, repository.ErrParentMissing):
			return nil, ErrParentNotFound
		}
		logger.Log.Error("Failed to create comment",
			zap.String("post_id", postID.String()),
			zap.String("author_id", authorID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if s.audit != nil {
		if err := s.audit.Write(auditlog.Entry{
			Event:   auditlog.EventCommentCreate,
			ActorID: authorID.String(),
			Subject: comment.ID.String(),
			Detail:  postID.String(),
		}); err != nil {
			logger.Log.Warn("Audit write failed",
				zap.String("event", auditlog.EventCommentCreate),
				zap.Error(err),
			)
		}
	}

	logger.Log.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", postID.String()),
		zap.String("author_id", authorID.String()),
		zap.Bool("is_reply", parentID != nil),
	)

	return comment, nil
}

// ListByPost returns one page of a post's comments in insertion order.
// Defaults: limit 5, skip 0.
func (s *CommentService) ListByPost(postID uuid.UUID, limit, skip int) ([]models.Comment, error) {
	if limit < 1 {
		limit = defaultCommentLimit
	}
	if skip < 0 {
		skip = defaultCommentSkip
	}

	comments, err := s.commentRepo.GetCommentsByPost(postID, limit, skip)
	if err != nil {
		logger.Log.Error("Failed to list comments",
			zap.String("post_id", postID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return comments, nil
}
