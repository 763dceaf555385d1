package images

import (
	"context"

	"github.com/abofield/abofield/database/models"
)

// RepositoryInterface is the persistence contract consumed by the registry.
type RepositoryInterface interface {
	// ListAll returns every record, most recent first.
	ListAll(ctx context.Context) ([]*models.Image, error)
	// GetByID returns a single record by its ID.
	GetByID(ctx context.Context, id string) (*models.Image, error)
	// Create inserts a new record.
	Create(ctx context.Context, record *models.Image) error
	// UpdateByID applies a partial update and returns the fresh record.
	UpdateByID(ctx context.Context, id string, updates map[string]interface{}) (*models.Image, error)
	// DeleteByID removes a record.
	DeleteByID(ctx context.Context, id string) error
	// ExistsByPath reports whether any record already carries the given path.
	ExistsByPath(ctx context.Context, path string) (bool, error)
	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)
	// ListManaged returns managed records only.
	ListManaged(ctx context.Context, limit int) ([]*models.Image, error)
}

var _ RepositoryInterface = (*Repository)(nil)
