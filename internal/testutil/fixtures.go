package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/okaneren/inkpost/internal/models"
	"github.com/okaneren/inkpost/internal/utils"
)

// CreateTestUser creates a test user with a real password hash.
func CreateTestUser(username, email, password string, role models.Role) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

// CreateTestPost creates a test post for the given author, slug derived from
// the title the same way the service does it.
func CreateTestPost(authorID uuid.UUID, title, content string) *models.Post {
	return &models.Post{
		ID:       uuid.New(),
		Title:    title,
		Slug:     utils.Slugify(title),
		Content:  content,
		AuthorID: authorID,
	}
}

// CreateTestComment creates a top-level test comment.
func CreateTestComment(postID, userID uuid.UUID, content string) *models.Comment {
	return &models.Comment{
		ID:      uuid.New(),
		Content: content,
		PostID:  postID,
		UserID:  userID,
	}
}

// DefaultTestUser returns a default test user (regular user)
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "test@example.com", "Test123456", models.RoleUser)
}

// DefaultAdminUser returns a default admin user
func DefaultAdminUser() (*models.User, error) {
	return CreateTestUser("admin", "admin@example.com", "Admin123456", models.RoleAdmin)
}
