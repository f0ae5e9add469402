package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/quantfold/studio/internal/models"
)

// AutoMigrate applies the schema for all persistent models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	return db.AutoMigrate(
		&models.Connection{},
		&models.StudioModel{},
	)
}
