package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/okaneren/inkpost/internal/service"
	"github.com/okaneren/inkpost/pkg/logger"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

type AddCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parent_id"`
}

// Add creates a comment on a post, optionally as a reply to another comment.
// POST /posts/:postId/comments
func (h *CommentHandler) Add(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid post ID"})
		return
	}

	authorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body"})
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != "" {
		parsed, err := uuid.Parse(req.ParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid parent comment ID"})
			return
		}
		parentID = &parsed
	}

	comment, err := h.commentService.Add(postID, authorID, req.Content, parentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"msg": "Post not found"})
		case errors.Is(err, service.ErrParentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"msg": "Parent comment not found"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		default:
			logger.Log.Error("Failed to add comment",
				zap.String("post_id", postID.String()),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to add comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// List returns a page of a post's comments.
// GET /posts/:postId/comments?limit=&skip=
func (h *CommentHandler) List(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid post ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))

	comments, err := h.commentService.ListByPost(postID, limit, skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}
