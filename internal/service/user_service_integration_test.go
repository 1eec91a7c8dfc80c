package service_test

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/okaneren/inkpost/internal/auditlog"
	"github.com/okaneren/inkpost/internal/models"
	"github.com/okaneren/inkpost/internal/repository"
	"github.com/okaneren/inkpost/internal/service"
	"github.com/okaneren/inkpost/internal/testutil"
	"github.com/okaneren/inkpost/pkg/logger"
)

const testAuditPath = "/tmp/test_audit_users"

// UserServiceIntegrationTestSuite defines test suite
type UserServiceIntegrationTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	audit       *auditlog.Log
	userService *service.UserService
}

// SetupSuite runs before all tests
func (s *UserServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	os.RemoveAll(testAuditPath)
	audit, err := auditlog.New(testAuditPath)
	assert.NoError(s.T(), err)
	s.audit = audit

	userRepo := repository.NewUserRepository(s.testDB.DB)
	s.userService = service.NewUserService(userRepo, s.audit, "test-secret", time.Hour)
}

// TearDownSuite runs after all tests
func (s *UserServiceIntegrationTestSuite) TearDownSuite() {
	s.audit.Close()
	os.RemoveAll(testAuditPath)
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *UserServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

// TestRegister tests successful registration
func (s *UserServiceIntegrationTestSuite) TestRegister() {
	user, token, err := s.userService.Register("alice", "alice@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)
	assert.NotNil(s.T(), user)
	assert.NotEmpty(s.T(), token)
	assert.Equal(s.T(), models.RoleUser, user.Role)

	// Stored credential is a hash, never the plaintext
	assert.NotEqual(s.T(), "Password123", user.PasswordHash)
	assert.NotContains(s.T(), user.PasswordHash, "Password123")

	// Registration is audited
	entries, err := s.audit.ReadAll()
	assert.NoError(s.T(), err)
	found := false
	for _, e := range entries {
		if e.Event == auditlog.EventRegister && e.Subject == "alice" {
			found = true
		}
	}
	assert.True(s.T(), found, "registration should write an audit entry")
}

// TestRegisterDuplicateUsername tests duplicate registration rejection
func (s *UserServiceIntegrationTestSuite) TestRegisterDuplicateUsername() {
	_, _, err := s.userService.Register("alice", "alice@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)

	_, _, err = s.userService.Register("alice", "other@example.com", "Password123", "", "")
	assert.ErrorIs(s.T(), err, service.ErrUserExists)

	// A taken email is reported as such, not blamed on the username
	_, _, err = s.userService.Register("bob", "alice@example.com", "Password123", "", "")
	assert.ErrorIs(s.T(), err, service.ErrEmailExists)
}

// TestRegisterValidation tests input validation
func (s *UserServiceIntegrationTestSuite) TestRegisterValidation() {
	testCases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@example.com", "Password123"},
		{"invalid email", "alice", "not-an-email", "Password123"},
		{"short password", "alice", "a@example.com", "short"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, _, err := s.userService.Register(tc.username, tc.email, tc.password, "", "")
			assert.ErrorIs(s.T(), err, service.ErrValidation)
		})
	}

	_, _, err := s.userService.Register("alice", "a@example.com", "Password123", "superadmin", "")
	assert.ErrorIs(s.T(), err, service.ErrValidation)
}

// TestConcurrentDuplicateRegistration tests that racing registrations of the
// same username produce exactly one account
func (s *UserServiceIntegrationTestSuite) TestConcurrentDuplicateRegistration() {
	const attempts = 4

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, _, errs[idx] = s.userService.Register("carol", "carol@example.com", "Password123", "", "")
		}(i)
	}
	wg.Wait()

	successes := 0
	duplicates := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrUserExists):
			duplicates++
		default:
			s.T().Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(s.T(), 1, successes, "exactly one registration should win")
	assert.Equal(s.T(), attempts-1, duplicates, "the rest should see a duplicate error")

	var count int64
	s.testDB.DB.Model(&models.User{}).Where("username = ?", "carol").Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

// TestLoginRoundtrip tests register then login with the same password
func (s *UserServiceIntegrationTestSuite) TestLoginRoundtrip() {
	registered, _, err := s.userService.Register("alice", "alice@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)

	user, token, err := s.userService.Login("alice@example.com", "Password123")
	assert.NoError(s.T(), err)
	assert.NotEmpty(s.T(), token)
	assert.Equal(s.T(), registered.ID, user.ID)
}

// TestLoginWrongPassword tests that a wrong password and an unknown email
// fail with the same error
func (s *UserServiceIntegrationTestSuite) TestLoginWrongPassword() {
	_, _, err := s.userService.Register("alice", "alice@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)

	_, _, wrongPass := s.userService.Login("alice@example.com", "WrongPassword")
	assert.ErrorIs(s.T(), wrongPass, service.ErrInvalidCredentials)

	_, _, unknownEmail := s.userService.Login("nobody@example.com", "Password123")
	assert.ErrorIs(s.T(), unknownEmail, service.ErrInvalidCredentials)

	// Same error either way; a caller cannot probe which emails exist
	assert.Equal(s.T(), wrongPass.Error(), unknownEmail.Error())
}

// TestListPagination tests the admin user listing totals
func (s *UserServiceIntegrationTestSuite) TestListPagination() {
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"} {
		_, _, err := s.userService.Register(name+"name", name+"@example.com", "Password123", "", "")
		assert.NoError(s.T(), err)
	}

	users, total, totalPages, err := s.userService.List(1, 5)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), users, 5)
	assert.Equal(s.T(), int64(7), total)
	assert.Equal(s.T(), 2, totalPages)

	users, _, _, err = s.userService.List(2, 5)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), users, 2)
}

// TestUpdateSelf tests the self-service patch
func (s *UserServiceIntegrationTestSuite) TestUpdateSelf() {
	user, _, err := s.userService.Register("alice", "alice@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)

	newUsername := "alice2"
	updated, err := s.userService.UpdateSelf(user.ID, service.UpdateUserInput{Username: &newUsername})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "alice2", updated.Username)

	// Password change re-hashes and the new password logs in
	newPassword := "NewPassword456"
	_, err = s.userService.UpdateSelf(user.ID, service.UpdateUserInput{Password: &newPassword})
	assert.NoError(s.T(), err)

	_, _, err = s.userService.Login("alice@example.com", "NewPassword456")
	assert.NoError(s.T(), err)

	_, _, err = s.userService.Login("alice@example.com", "Password123")
	assert.ErrorIs(s.T(), err, service.ErrInvalidCredentials)
}

// TestUpdateSelfDuplicate tests patching into a taken username
func (s *UserServiceIntegrationTestSuite) TestUpdateSelfDuplicate() {
	_, _, err := s.userService.Register("alice", "alice@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)
	bob, _, err := s.userService.Register("bob", "bob@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)

	taken := "alice"
	_, err = s.userService.UpdateSelf(bob.ID, service.UpdateUserInput{Username: &taken})
	assert.ErrorIs(s.T(), err, service.ErrUserExists)
}

// TestDelete tests admin deletion of a user
func (s *UserServiceIntegrationTestSuite) TestDelete() {
	admin, _, err := s.userService.Register("admin", "admin@example.com", "Admin123456", "admin", "")
	assert.NoError(s.T(), err)
	target, _, err := s.userService.Register("victim", "victim@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)

	err = s.userService.Delete(admin.ID, target.ID)
	assert.NoError(s.T(), err)

	_, err = s.userService.GetByID(target.ID)
	assert.ErrorIs(s.T(), err, service.ErrUserNotFound)

	// Deleting again reports not found
	err = s.userService.Delete(admin.ID, target.ID)
	assert.ErrorIs(s.T(), err, service.ErrUserNotFound)
}

// TestDeleteFreesIdentity tests that a deleted user's username and email can
// be registered again
func (s *UserServiceIntegrationTestSuite) TestDeleteFreesIdentity() {
	admin, _, err := s.userService.Register("admin", "admin@example.com", "Admin123456", "admin", "")
	assert.NoError(s.T(), err)

	ghost, _, err := s.userService.Register("ghost", "ghost@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)

	err = s.userService.Delete(admin.ID, ghost.ID)
	assert.NoError(s.T(), err)

	_, err = s.userService.GetByID(ghost.ID)
	assert.ErrorIs(s.T(), err, service.ErrUserNotFound)

	// The identity is released, not reserved by a dead row
	reborn, _, err := s.userService.Register("ghost", "ghost@example.com", "Password123", "", "")
	assert.NoError(s.T(), err)
	assert.NotEqual(s.T(), ghost.ID, reborn.ID)
}

// TestDeleteUnknownUser tests deleting a user that never existed
func (s *UserServiceIntegrationTestSuite) TestDeleteUnknownUser() {
	admin, _, err := s.userService.Register("admin", "admin@example.com", "Admin123456", "admin", "")
	assert.NoError(s.T(), err)

	err = s.userService.Delete(admin.ID, uuid.New())
	assert.ErrorIs(s.T(), err, service.ErrUserNotFound)
}

// TestSuite runs all tests in the suite
func TestUserServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceIntegrationTestSuite))
}
