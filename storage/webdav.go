package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig holds the settings for a WebDAV backend.
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
}

// WebDAVStorage stores blobs on a WebDAV share.
type WebDAVStorage struct {
	client   *gowebdav.Client
	baseURL  string
	rootPath string
}

// NewWebDAVStorage creates a WebDAV storage provider and verifies the
// connection.
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := testWebDAVConnection(ctx, client, rootPath); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return &WebDAVStorage{
		client:   client,
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		rootPath: rootPath,
	}, nil
}

// testWebDAVConnection verifies the share is reachable within ctx.
func testWebDAVConnection(ctx context.Context, client *gowebdav.Client, rootPath string) error {
	done := make(chan error, 1)
	go func() {
		_, err := client.ReadDir(rootPath)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// fullPath joins key onto the configured root.
func (s *WebDAVStorage) fullPath(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + key
	}
	return "/" + key
}

// ensureParentDir creates missing parent collections one level at a time.
func (s *WebDAVStorage) ensureParentDir(fullPath string) error {
	parentDir := path.Dir(fullPath)
	if parentDir == "/" || parentDir == "." {
		return nil
	}

	parts := strings.Split(strings.Trim(parentDir, "/"), "/")
	current := ""
	for _, part := range parts {
		current = current + "/" + part
		if err := s.client.Mkdir(current, 0755); err != nil {
			// Mkdir on an existing collection fails on some servers;
			// existence is checked instead of trusting the error.
			if info, statErr := s.client.Stat(current); statErr == nil && info.IsDir() {
				continue
			}
			return fmt.Errorf("failed to create webdav directory '%s': %w", current, err)
		}
	}
	return nil
}

// SaveWithContext stores a blob under key.
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, key string, file io.Reader) error {
	if !IsValidStorageKey(key) {
		return fmt.Errorf("invalid storage key: %s", key)
	}

	fullPath := s.fullPath(key)
	if err := s.ensureParentDir(fullPath); err != nil {
		return err
	}

	if err := s.client.WriteStream(fullPath, file, 0644); err != nil {
		return fmt.Errorf("failed to write '%s' to webdav: %w", fullPath, err)
	}
	return nil
}

// GetWithContext opens a blob for reading.
func (s *WebDAVStorage) GetWithContext(ctx context.Context, key string) (io.ReadCloser, error) {
	if !IsValidStorageKey(key) {
		return nil, fmt.Errorf("invalid storage key: %s", key)
	}

	stream, err := s.client.ReadStream(s.fullPath(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s' from webdav: %w", key, err)
	}
	return stream, nil
}

// DeleteWithContext removes a blob.
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, key string) error {
	if !IsValidStorageKey(key) {
		return fmt.Errorf("invalid storage key: %s", key)
	}

	if err := s.client.Remove(s.fullPath(key)); err != nil {
		return fmt.Errorf("failed to delete '%s' from webdav: %w", key, err)
	}
	return nil
}

// Exists reports whether a blob is present.
func (s *WebDAVStorage) Exists(ctx context.Context, key string) (bool, error) {
	if !IsValidStorageKey(key) {
		return false, fmt.Errorf("invalid storage key: %s", key)
	}

	_, err := s.client.Stat(s.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		// gowebdav wraps 404s in its own error type
		if strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PublicURL returns the share address of the blob.
func (s *WebDAVStorage) PublicURL(key string) string {
	return s.baseURL + s.fullPath(key)
}

// Health checks that the share is reachable.
func (s *WebDAVStorage) Health(ctx context.Context) error {
	return testWebDAVConnection(ctx, s.client, s.rootPath)
}

// Name returns the provider name.
func (s *WebDAVStorage) Name() string {
	return "webdav"
}
