package images

import (
	"context"

	"github.com/abofield/abofield/database/models"
	"gorm.io/gorm"
)

// Repository persists image records.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new image repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAll returns every record, most recent first.
func (r *Repository) ListAll(ctx context.Context) ([]*models.Image, error) {
	var records []*models.Image
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&records).Error
	return records, err
}

// GetByID returns a single record by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	var record models.Image
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new record.
func (r *Repository) Create(ctx context.Context, record *models.Image) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Save writes back a full record.
func (r *Repository) Save(ctx context.Context, record *models.Image) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// UpdateByID applies a partial update and returns the fresh record.
// Returns gorm.ErrRecordNotFound when no row matched.
func (r *Repository) UpdateByID(ctx context.Context, id string, updates map[string]interface{}) (*models.Image, error) {
	result := r.db.WithContext(ctx).Model(&models.Image{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// DeleteByID removes a record. Returns gorm.ErrRecordNotFound when no row
// matched so callers can treat double deletes as benign.
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Image{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExistsByPath reports whether any record already carries the given path.
// Used by seeding to stay idempotent.
func (r *Repository) ExistsByPath(ctx context.Context, path string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Image{}).Where("path = ?", path).Count(&count).Error
	return count > 0, err
}

// Count returns the total number of records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Image{}).Count(&count).Error
	return count, err
}

// ListManaged returns managed records only, for the reconciliation sweep.
func (r *Repository) ListManaged(ctx context.Context, limit int) ([]*models.Image, error) {
	var records []*models.Image
	db := r.db.WithContext(ctx).Where("type = ?", models.OriginManaged).Order("created_at desc")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&records).Error
	return records, err
}

// DB returns the underlying *gorm.DB.
func (r *Repository) DB() *gorm.DB {
	return r.db
}
