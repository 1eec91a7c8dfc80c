package database

import (
	"fmt"

	"github.com/okaneren/inkpost/internal/config"
	"github.com/okaneren/inkpost/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database connection and returns the handle.
// It fails fast instead of leaving callers to poll a shared "connected" flag;
// the handle is injected into repositories at startup.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		// TranslateError maps driver duplicate-key failures to
		// gorm.ErrDuplicatedKey so uniqueness is enforced by the index,
		// not by a check-then-insert in application code.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{})
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
