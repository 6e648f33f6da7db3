package database

import (
	"fmt"

	"gorm.io/gorm"

	"fitness-league/internal/models"
	"fitness-league/pkg/logger"
)

// Migrate creates or updates every table the league needs.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("database migrations completed")
	return nil
}
