// Package storage opens the sqlite database through gorm and keeps the
// schema in sync. The returned handle is passed explicitly to the services;
// nothing in this package holds global state.
package storage

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"greenpulse/internal/models"
)

// Open connects to the sqlite database at path and migrates the users and
// trees tables. Foreign key enforcement is switched on in the DSN so the
// owner reference is checked by the store itself, not just by the services.
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // surface unique violations as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Tree{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}
