package service

import (
	"errors"
	"fmt"
	"math"
	"regexp"
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
	ErrUserExists         = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrValidation         = errors.New("validation failed")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// UpdateUserInput is the self-service patch; nil fields stay untouched.
type UpdateUserInput struct {
	Username    *string
	Email       *string
	Password    *string
	Role        *string
	PhoneNumber *string
}

type UserService struct {
	userRepo      *repository.UserRepository
	audit         *auditlog.Log
	jwtSecret     string
	jwtExpiration time.Duration

	// dummyHash keeps the unknown-email login path as expensive as a real
	// password check, so both failures are indistinguishable to a caller.
	dummyHash string
}

func NewUserService(userRepo *repository.UserRepository, audit *auditlog.Log, jwtSecret string, jwtExpiration time.Duration) *UserService {
	dummyHash, err := utils.HashPassword("inkpost-timing-dummy")
	if err != nil {
		// bcrypt only fails on an out-of-range cost, which is a constant
		logger.Log.Error("Failed to precompute dummy hash", zap.Error(err))
	}

	return &UserService{
		userRepo:      userRepo,
		audit:         audit,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		dummyHash:     dummyHash,
	}
}

func (s *UserService) writeAudit(event, actorID, subject, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Write(auditlog.Entry{
		Event:   event,
		ActorID: actorID,
		Subject: subject,
		Detail:  detail,
	}); err != nil {
		logger.Log.Warn("Audit write failed",
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func (s *UserService) Register(username, email, password, role, phoneNumber string) (*models.User, string, error) {
	start := time.Now()

	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
		zap.String("email", email),
	)

	if err := s.validateRegisterInput(username, email, password, phoneNumber); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// Role defaults to "user" unless explicitly elevated
	userRole := models.RoleUser
	if role != "" {
		userRole = models.Role(role)
		if !userRole.Valid() {
			return nil, "", validationError("role must be admin or user")
		}
	}

	hashStart := time.Now()
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password",
			zap.Error(err),
		)
		return nil, "", err
	}
	hashDuration := time.Since(hashStart)

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         userRole,
		PhoneNumber:  phoneNumber,
	}

	// The unique indexes decide the winner when two registrations race on
	// the same username or email; there is no check-then-insert window.
	if err := s.userRepo.CreateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Log.Warn("Registration rejected: duplicate username or email",
				zap.String("username", username),
				zap.String("email", email),
			)
			// The index violation doesn't say which column collided; one
			// lookup decides the error the caller sees.
			if existing, lookupErr := s.userRepo.GetUserByUsername(username); lookupErr == nil && existing != nil {
				return nil, "", ErrUserExists
			}
			return nil, "", ErrEmailExists
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	s.writeAudit(auditlog.EventRegister, user.ID.String(), user.Username, "")

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
		zap.String("role", string(userRole)),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

func (s *UserService) Login(email, password string) (*models.User, string, error) {
	start := time.Now()

	logger.Log.Debug("Processing user login",
		zap.String("email", email),
	)

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		// Burn the same bcrypt cost as the real path, then fail with the
		// same generic error as a wrong password.
		_, _ = utils.VerifyPassword(password, s.dummyHash)
		logger.Log.Warn("Login failed: user not found",
			zap.String("email", email),
		)
		s.writeAudit(auditlog.EventLoginFailed, "", email, "unknown email")
		return nil, "", ErrInvalidCredentials
	}

	verifyStart := time.Now()
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	verifyDuration := time.Since(verifyStart)

	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("email", email),
			zap.String("user_id", user.ID.String()),
		)
		s.writeAudit(auditlog.EventLoginFailed, user.ID.String(), email, "bad password")
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	s.writeAudit(auditlog.EventLogin, user.ID.String(), user.Username, "")

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Duration("password_verify_duration", verifyDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

func (s *UserService) GetByID(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		logger.Log.Error("Failed to get user by id",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List returns one page of users plus the totals the admin listing shows.
func (s *UserService) List(page, limit int) ([]*models.User, int64, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}

	total, err := s.userRepo.CountUsers()
	if err != nil {
		logger.Log.Error("Failed to count users", zap.Error(err))
		return nil, 0, 0, err
	}

	users, err := s.userRepo.ListUsers((page-1)*limit, limit)
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		return nil, 0, 0, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	logger.Log.Info("Listed users",
		zap.Int("page", page),
		zap.Int("limit", limit),
		zap.Int64("total", total),
	)

	return users, total, totalPages, nil
}

func (s *UserService) UpdateSelf(id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	fields := map[string]interface{}{}

	if input.Username != nil {
		if len(*input.Username) < 3 || len(*input.Username) > 50 {
			return nil, validationError("username must be between 3 and 50 characters")
		}
		fields["username"] = *input.Username
	}
	if input.Email != nil {
		if !emailRegex.MatchString(*input.Email) || len(*input.Email) > 100 {
			return nil, validationError("invalid email format")
		}
		fields["email"] = *input.Email
	}
	if input.Password != nil {
		if len(*input.Password) < 8 || len(*input.Password) > 72 {
			return nil, validationError("password must be between 8 and 72 characters")
		}
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hashed
	}
	if input.Role != nil {
		if !models.Role(*input.Role).Valid() {
			return nil, validationError("role must be admin or user")
		}
		fields["role"] = *input.Role
	}
	if input.PhoneNumber != nil {
		if len(*input.PhoneNumber) < 6 {
			return nil, validationError("phone_number must be at least 6 characters")
		}
		fields["phone_number"] = *input.PhoneNumber
	}

	if len(fields) == 0 {
		return nil, validationError("no fields to update")
	}

	user, err := s.userRepo.UpdateUser(id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if input.Username != nil {
				if existing, lookupErr := s.userRepo.GetUserByUsername(*input.Username); lookupErr == nil && existing != nil {
					return nil, ErrUserExists
				}
			}
			return nil, ErrEmailExists
		}
		logger.Log.Error("Failed to update user",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	logger.Log.Info("User updated",
		zap.String("user_id", id.String()),
	)

	return user, nil
}

// Delete removes the target user. The admin requirement is declared on the
// route; the service only cares that the target exists.
func (s *UserService) Delete(actorID uuid.UUID, targetID uuid.UUID) error {
	affected, err := s.userRepo.DeleteUser(targetID)
	if err != nil {
		logger.Log.Error("Failed to delete user",
			zap.String("user_id", targetID.String()),
			zap.Error(err),
		)
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	s.writeAudit(auditlog.EventUserDeleted, actorID.String(), targetID.String(), "")

	logger.Log.Info("User deleted",
		zap.String("admin_id", actorID.String()),
		zap.String("user_id", targetID.String()),
	)

	return nil
}

func (s *UserService) validateRegisterInput(username, email, password, phoneNumber string) error {
	// Username validation
	if len(username) < 3 {
		return validationError("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return validationError("username must be at most 50 characters")
	}

	// Email validation (regex)
	if !emailRegex.MatchString(email) {
		return validationError("invalid email format")
	}
	if len(email) > 100 {
		return validationError("email too long")
	}

	// Password validation
	if len(password) < 8 {
		return validationError("password must be at least 8 characters")
	}
	// bcrypt only hashes the first 72 bytes; reject anything longer
	if len(password) > 72 {
		return validationError("password too long")
	}

	// Phone number is optional but bounded when present
	if phoneNumber != "" && len(phoneNumber) < 6 {
		return validationError("phone_number must be at least 6 characters")
	}

	return nil
}
