package storage

import (
	"context"
	"io"
)

// Provider is the blob-store abstraction the registry writes through. All
// implementations must be safe for concurrent use.
type Provider interface {
	// SaveWithContext stores a blob under key.
	SaveWithContext(ctx context.Context, key string, file io.Reader) error

	// GetWithContext opens a blob for reading.
	GetWithContext(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteWithContext removes a blob.
	DeleteWithContext(ctx context.Context, key string) error

	// Exists reports whether a blob is present.
	Exists(ctx context.Context, key string) (bool, error)

	// PublicURL returns the address a browser can fetch the blob from.
	PublicURL(key string) string

	// Health checks that the backend is reachable.
	Health(ctx context.Context) error

	// Name returns the provider name.
	Name() string
}
