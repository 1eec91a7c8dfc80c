package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/okaneren/inkpost/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts the user. Username/email uniqueness is enforced by the
// unique indexes; a duplicate surfaces as gorm.ErrDuplicatedKey.
func (r *UserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// ListUsers returns one page of users in registration order.
func (r *UserRepository) ListUsers(offset, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.Order("created_at ASC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) CountUsers() (int64, error) {
	var total int64
	err := r.db.Model(&models.User{}).Count(&total).Error
	return total, err
}

// UpdateUser applies the given fields and returns the updated row.
func (r *UserRepository) UpdateUser(id uuid.UUID, fields map[string]interface{}) (*models.User, error) {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetUserByID(id)
}

// DeleteUser removes the row outright, releasing the username and email for
// a future registration. Returns the number of affected rows so callers can
// tell a missing target apart from success.
func (r *UserRepository) DeleteUser(id uuid.UUID) (int64, error) {
	res := r.db.Delete(&models.User{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
