package settings

import (
	"context"
	"errors"

	"github.com/abofield/abofield/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists site settings.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the value for key, or "" when unset.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	var setting models.SiteSetting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

// Set upserts a setting.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	setting := models.SiteSetting{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// All returns every setting keyed by name.
func (r *Repository) All(ctx context.Context) (map[string]string, error) {
	var rows []models.SiteSetting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Value
	}
	return result, nil
}
