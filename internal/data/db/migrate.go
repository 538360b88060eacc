package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/collections-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// EnsureCollection creates the named collection when no collection with that
// name exists yet, and returns whichever row is stored.
func EnsureCollection(db *gorm.DB, name string) (*types.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("collection name required")
	}
	var existing types.Collection
	err := db.Where("collection_name = ?", name).Order("created_at ASC").First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := &types.Collection{CollectionName: name}
	if err := db.Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}
