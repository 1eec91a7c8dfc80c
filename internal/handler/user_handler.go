package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/okaneren/inkpost/internal/middleware"
	"github.com/okaneren/inkpost/internal/service"
	"github.com/okaneren/inkpost/pkg/logger"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type UpdateUserRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Role        *string `json:"role"`
	PhoneNumber *string `json:"phone_number"`
}

// currentUserID reads the identity the access gate attached to the context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// List returns one page of users. Admin-only; the route declares the
// required role via middleware.RequireRole.
// GET /users?page=&limit=
func (h *UserHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	users, total, totalPages, err := h.userService.List(page, limit)
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       users,
		"total":      total,
		"totalPages": totalPages,
	})
}

// GetByID returns a single user.
// GET /users/:userId
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid user ID"})
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

// GetSelf returns the caller's own profile.
// GET /user
func (h *UserHandler) GetSelf(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

// Delete removes a user by id. Admin-only via RequireRole.
// DELETE /users?id=
func (h *UserHandler) Delete(c *gin.Context) {
	rawID := c.Query("id")
	if rawID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "User ID is required to delete"})
		return
	}

	targetID, err := uuid.Parse(rawID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid user ID"})
		return
	}

	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		return
	}

	if err := h.userService.Delete(actorID, targetID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		logger.Log.Error("Failed to delete user",
			zap.String("target_id", targetID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User has been deleted"})
}

// UpdateSelf patches the caller's own profile.
// PATCH /user
func (h *UserHandler) UpdateSelf(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body"})
		return
	}

	user, err := h.userService.UpdateSelf(id, service.UpdateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		case errors.Is(err, service.ErrUserExists):
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Username already exists"})
		case errors.Is(err, service.ErrEmailExists):
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Email already exists"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
		default:
			logger.Log.Error("Failed to update user",
				zap.String("user_id", id.String()),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to update user"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
