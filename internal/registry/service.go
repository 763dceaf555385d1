package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/database/repo/images"
	"github.com/abofield/abofield/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the live registry backed by the images table and a blob store.
type Service struct {
	repo   images.RepositoryInterface
	store  storage.Provider
	bucket string
}

// NewService creates the live registry.
func NewService(repo images.RepositoryInterface, store storage.Provider, bucket string) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		bucket: bucket,
	}
}

// Mode reports the resolved operating mode.
func (s *Service) Mode() config.Mode {
	return config.ModeLive
}

// List returns every record, most recent first.
func (s *Service) List(ctx context.Context) ([]*models.Image, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return records, nil
}

// Get returns one record, or (nil, nil) when it does not exist.
func (s *Service) Get(ctx context.Context, id string) (*models.Image, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image %s: %w", id, err)
	}
	return record, nil
}

// Open streams the blob of a managed record.
func (s *Service) Open(ctx context.Context, record *models.Image) (io.ReadCloser, error) {
	if record.Origin != models.OriginManaged || record.FilePath == "" {
		return nil, ErrNoBlob
	}
	reader, err := s.store.GetWithContext(ctx, record.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s/%s: %w", record.BucketName, record.FilePath, err)
	}
	return reader, nil
}

// newStorageKey builds a collision-resistant key keeping the original file
// extension.
func newStorageKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return uuid.New().String() + ext
}

// Create inserts a new record. For managed images the blob is uploaded
// before the metadata insert; if the insert then fails the blob is orphaned
// and only logged, not retried.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Image, error) {
	if in.Name == "" {
		return nil, errors.New("image name is required")
	}

	record := &models.Image{
		Name:        in.Name,
		Description: in.Description,
		UsedIn:      models.StringList{},
	}

	if in.IsExternal {
		if in.ExternalURL == "" {
			return nil, errors.New("external image requires a URL")
		}
		record.Origin = models.OriginExternal
		record.Path = in.ExternalURL
	} else {
		if in.File == nil {
			return nil, errors.New("image upload requires a file")
		}

		key := newStorageKey(in.FileName)
		if err := s.store.SaveWithContext(ctx, key, in.File); err != nil {
			return nil, fmt.Errorf("failed to upload image file: %w", err)
		}

		record.Origin = models.OriginManaged
		record.BucketName = s.bucket
		record.FilePath = key
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if record.Origin == models.OriginManaged {
			// Known inconsistency window: the uploaded blob stays behind.
			log.Printf("Image insert failed after upload, orphaned blob %s/%s: %v",
				record.BucketName, record.FilePath, err)
		}
		return nil, fmt.Errorf("failed to insert image record: %w", err)
	}

	return record, nil
}

// Update rewrites metadata and optionally replaces the backing file. A file
// replacement always uploads under a fresh key; replacing the file of a
// local or external record converts it to managed, one-way.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (bool, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get image %s: %w", id, err)
	}

	updates := make(map[string]interface{})

	if in.File != nil {
		newKey := newStorageKey(in.FileName)
		if err := s.store.SaveWithContext(ctx, newKey, in.File); err != nil {
			return false, fmt.Errorf("failed to upload replacement file: %w", err)
		}

		if record.Origin == models.OriginManaged && record.FilePath != "" {
			if err := s.store.DeleteWithContext(ctx, record.FilePath); err != nil {
				log.Printf("Failed to delete old blob %s/%s: %v", record.BucketName, record.FilePath, err)
			}
		}

		updates["type"] = models.OriginManaged
		updates["bucket_name"] = s.bucket
		updates["file_path"] = newKey
		updates["path"] = ""
	}

	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	if len(updates) == 0 {
		return true, nil
	}

	if _, err := s.repo.UpdateByID(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update image %s: %w", id, err)
	}

	return true, nil
}

// Delete removes the metadata row, attempting blob deletion first for
// managed records. A failed blob delete is logged and does not block the
// row delete.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get image %s: %w", id, err)
	}

	if record.Origin == models.OriginManaged && record.FilePath != "" {
		if err := s.store.DeleteWithContext(ctx, record.FilePath); err != nil {
			log.Printf("Failed to delete blob %s/%s: %v", record.BucketName, record.FilePath, err)
		}
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete image %s: %w", id, err)
	}

	return true, nil
}

// UpdateUsage replaces the used-in list wholesale.
func (s *Service) UpdateUsage(ctx context.Context, id string, usedIn []string) (bool, error) {
	if usedIn == nil {
		usedIn = []string{}
	}

	if _, err := s.repo.UpdateByID(ctx, id, map[string]interface{}{
		"used_in": models.StringList(usedIn),
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update usage of image %s: %w", id, err)
	}

	return true, nil
}

// PublicURL resolves the address a browser loads the image from.
func (s *Service) PublicURL(record *models.Image) string {
	if record.Origin == models.OriginManaged && record.FilePath != "" {
		return s.store.PublicURL(record.FilePath)
	}
	return record.Path
}

var _ Registry = (*Service)(nil)
