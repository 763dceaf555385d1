package contacts

import (
	"context"

	"github.com/abofield/abofield/database/models"
	"gorm.io/gorm"
)

// Repository persists contact messages and brochure requests.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new contacts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateMessage stores a contact form submission.
func (r *Repository) CreateMessage(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListMessages returns contact messages, newest first.
func (r *Repository) ListMessages(ctx context.Context, page, pageSize int) ([]*models.ContactMessage, int64, error) {
	var messages []*models.ContactMessage
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ContactMessage{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&messages).Error
	return messages, total, err
}

// CreateBrochureRequest stores a brochure download request.
func (r *Repository) CreateBrochureRequest(ctx context.Context, req *models.BrochureRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// ListBrochureRequests returns brochure requests, newest first.
func (r *Repository) ListBrochureRequests(ctx context.Context, page, pageSize int) ([]*models.BrochureRequest, int64, error) {
	var requests []*models.BrochureRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&models.BrochureRequest{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&requests).Error
	return requests, total, err
}
