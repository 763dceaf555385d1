package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalStorage stores blobs on the local filesystem.
type LocalStorage struct {
	absBasePath   string
	publicBaseURL string
}

// NewLocalStorage creates a local storage provider rooted at basePath.
// publicBaseURL is prepended when building public links.
func NewLocalStorage(basePath, publicBaseURL string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
	}

	testFile := filepath.Join(absPath, ".write_test_"+strconv.FormatInt(time.Now().UnixNano(), 10))
	f, err := os.Create(testFile)
	if err != nil {
		return nil, fmt.Errorf("local storage directory '%s' is not writable: %w", absPath, err)
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	return &LocalStorage{
		absBasePath:   absPath + string(os.PathSeparator),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// SaveWithContext stores a blob under key.
func (s *LocalStorage) SaveWithContext(ctx context.Context, key string, file io.Reader) error {
	if !IsValidStorageKey(key) {
		return fmt.Errorf("invalid storage key: %s", key)
	}

	dstPath := filepath.Join(s.absBasePath, key)

	if !strings.HasPrefix(dstPath, s.absBasePath) {
		return fmt.Errorf("invalid file path, potential directory traversal: %s", key)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", key, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file '%s': %w", dstPath, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to copy file content to '%s': %w", dstPath, err)
	}

	return nil
}

// GetWithContext opens a blob for reading.
func (s *LocalStorage) GetWithContext(ctx context.Context, key string) (io.ReadCloser, error) {
	if !IsValidStorageKey(key) {
		return nil, fmt.Errorf("invalid storage key: %s", key)
	}

	fullPath := filepath.Join(s.absBasePath, key)
	if !strings.HasPrefix(fullPath, s.absBasePath) {
		return nil, fmt.Errorf("invalid file path, potential directory traversal: %s", key)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", key)
		}
		return nil, fmt.Errorf("failed to open file '%s': %w", key, err)
	}

	return file, nil
}

// DeleteWithContext removes a blob.
func (s *LocalStorage) DeleteWithContext(ctx context.Context, key string) error {
	if !IsValidStorageKey(key) {
		return fmt.Errorf("invalid storage key: %s", key)
	}

	fullPath := filepath.Join(s.absBasePath, key)
	if !strings.HasPrefix(fullPath, s.absBasePath) {
		return fmt.Errorf("invalid file path: %s", key)
	}

	err := os.Remove(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file to delete not found: %s", key)
		}
		return fmt.Errorf("failed to delete local file '%s': %w", fullPath, err)
	}

	return nil
}

// Exists reports whether a blob is present.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if !IsValidStorageKey(key) {
		return false, fmt.Errorf("invalid storage key: %s", key)
	}

	fullPath := filepath.Join(s.absBasePath, key)
	if !strings.HasPrefix(fullPath, s.absBasePath) {
		return false, fmt.Errorf("invalid file path: %s", key)
	}

	_, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PublicURL returns the address a browser can fetch the blob from.
func (s *LocalStorage) PublicURL(key string) string {
	if s.publicBaseURL == "" {
		return "/" + key
	}
	return s.publicBaseURL + "/" + key
}

// Health checks that the base directory is readable.
func (s *LocalStorage) Health(ctx context.Context) error {
	_, err := os.ReadDir(s.absBasePath)
	return err
}

// Name returns the provider name.
func (s *LocalStorage) Name() string {
	return "local"
}

// BasePath returns the storage root.
func (s *LocalStorage) BasePath() string {
	return s.absBasePath
}

// IsValidStorageKey validates a storage key.
func IsValidStorageKey(key string) bool {
	if key == "" {
		return false
	}

	if filepath.IsAbs(key) {
		return false
	}

	if strings.Contains(key, "..") {
		return false
	}

	for _, r := range key {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}

	return true
}
