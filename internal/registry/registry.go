package registry

import (
	"context"
	"errors"
	"io"

	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database/models"
)

// ErrDemoMode is returned by every mutating operation when no backend is
// configured. It is a handled state, not a failure of the process.
var ErrDemoMode = errors.New("registry is in demo mode, writes are disabled")

// ErrNoBlob is returned by Open for records whose bytes live elsewhere
// (local assets and external URLs).
var ErrNoBlob = errors.New("image has no managed blob")

// CreateInput describes a new image. Exactly one of ExternalURL or File must
// be set, selected by IsExternal.
type CreateInput struct {
	Name        string
	Description string
	IsExternal  bool
	ExternalURL string
	File        io.Reader
	FileName    string
}

// UpdateInput describes a metadata and/or file update. Nil fields are left
// untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	File        io.Reader
	FileName    string
}

// Registry owns image metadata and mediates all blob operations.
//
// Mutating operations report (false, nil) for benign not-found conditions so
// a double delete from two sessions never surfaces as a hard error.
type Registry interface {
	// Mode reports the resolved operating mode.
	Mode() config.Mode
	// List returns every record, most recent first. List never seeds.
	List(ctx context.Context) ([]*models.Image, error)
	// Get returns one record, or (nil, nil) when it does not exist.
	Get(ctx context.Context, id string) (*models.Image, error)
	// Open streams the blob of a managed record. Non-managed records
	// return ErrNoBlob.
	Open(ctx context.Context, record *models.Image) (io.ReadCloser, error)
	// Create inserts a new record, uploading the blob first for managed
	// images.
	Create(ctx context.Context, in CreateInput) (*models.Image, error)
	// Update rewrites metadata and optionally rotates the backing blob.
	Update(ctx context.Context, id string, in UpdateInput) (bool, error)
	// Delete removes the record and best-effort deletes its blob.
	Delete(ctx context.Context, id string) (bool, error)
	// UpdateUsage replaces the used-in list wholesale.
	UpdateUsage(ctx context.Context, id string, usedIn []string) (bool, error)
	// PublicURL resolves the address a browser loads the image from.
	PublicURL(record *models.Image) string
}
