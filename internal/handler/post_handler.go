package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okaneren/inkpost/internal/service"
	"github.com/okaneren/inkpost/internal/storage"
	"github.com/okaneren/inkpost/pkg/logger"
	"go.uber.org/zap"
)

type PostHandler struct {
	postService *service.PostService
	media       *storage.MediaStore
}

func NewPostHandler(postService *service.PostService, media *storage.MediaStore) *PostHandler {
	return &PostHandler{
		postService: postService,
		media:       media,
	}
}

// Create makes a new post authored by the caller. Multipart form with
// "title", "content" and optional "images" files; uploaded files are stored
// first and the post keeps only the returned filenames.
// POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	authorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		return
	}

	title := c.PostForm("title")
	content := c.PostForm("content")
	if title == "" || content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "title and content are required"})
		return
	}

	var mediaNames []string
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		files := form.File["images"]
		if len(files) > 0 {
			mediaNames, err = h.media.SaveAll(files)
			if err != nil {
				logger.Log.Error("Failed to store uploaded media",
					zap.Int("file_count", len(files)),
					zap.Error(err),
				)
				c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to store uploads"})
				return
			}
		}
	}

	post, err := h.postService.Create(authorID, title, content, mediaNames)
	if err != nil {
		// The post row never landed; don't leave its files behind.
		h.media.Remove(mediaNames...)

		switch {
		case errors.Is(err, service.ErrDuplicateTitle):
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Title already exists"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		default:
			logger.Log.Error("Failed to create post",
				zap.String("title", title),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to create post"})
		}
		return
	}

	c.JSON(http.StatusCreated, post)
}

// List returns all posts with authors and comments.
// GET /posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.postService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// ListMine returns the caller's own posts.
// GET /posts/user
func (h *PostHandler) ListMine(c *gin.Context) {
	authorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		return
	}

	posts, err := h.postService.ListByAuthor(authorID)
	if err != nil {
		if errors.Is(err, service.ErrNoPosts) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "No posts found for this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetBySlug returns one post by its slug.
// GET /post/:slug
func (h *PostHandler) GetBySlug(c *gin.Context) {
	post, err := h.postService.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, post)
}
