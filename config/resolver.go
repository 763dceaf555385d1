package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Mode is the resolved operating mode of the image backend.
type Mode string

const (
	// ModeLive means a storage backend is configured and writes are allowed.
	ModeLive Mode = "live"
	// ModeDemo means no backend credentials were resolved; the registry
	// serves a fixed demo catalogue and rejects writes.
	ModeDemo Mode = "demo"
)

// DefaultOverridePath is where an operator-supplied backend override is
// persisted between runs.
const DefaultOverridePath = "./data/backend_override.json"

// BackendSettings is the outcome of backend resolution.
type BackendSettings struct {
	Mode         Mode
	StorageType  string
	Bucket       string
	LocalPath    string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	WebdavURL    string
	WebdavUser   string
	WebdavPass   string
	FromOverride bool
}

// BackendOverride mirrors the override file written from the admin settings
// page. It always describes an object-store backend.
type BackendOverride struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	UseSSL    bool   `json:"use_ssl"`
	Bucket    string `json:"bucket,omitempty"`
}

func (o *BackendOverride) complete() bool {
	return o != nil && o.Endpoint != "" && o.AccessKey != "" && o.SecretKey != ""
}

// ResolveBackend decides once per process which backend the image registry
// uses. The override file wins over compiled-in/env configuration; if neither
// yields usable credentials the result is demo mode. Missing credentials are
// a normal state, never an error.
func ResolveBackend(cfg *Config) BackendSettings {
	return ResolveBackendWithOverride(cfg, DefaultOverridePath)
}

// ResolveBackendWithOverride is ResolveBackend with an explicit override
// file location.
func ResolveBackendWithOverride(cfg *Config, overridePath string) BackendSettings {
	bucket := cfg.StorageBucket
	if bucket == "" {
		bucket = "images"
	}

	if override, err := ReadOverride(overridePath); err == nil && override.complete() {
		log.Printf("Using backend override from %s", overridePath)
		if override.Bucket != "" {
			bucket = override.Bucket
		}
		return BackendSettings{
			Mode:         ModeLive,
			StorageType:  "minio",
			Bucket:       bucket,
			Endpoint:     override.Endpoint,
			AccessKey:    override.AccessKey,
			SecretKey:    override.SecretKey,
			UseSSL:       override.UseSSL,
			FromOverride: true,
		}
	}

	switch cfg.StorageType {
	case "local":
		if cfg.StorageLocalPath != "" {
			return BackendSettings{
				Mode:        ModeLive,
				StorageType: "local",
				Bucket:      bucket,
				LocalPath:   cfg.StorageLocalPath,
			}
		}
	case "minio":
		if cfg.StorageEndpoint != "" && cfg.StorageAccessKey != "" && cfg.StorageSecretKey != "" {
			return BackendSettings{
				Mode:        ModeLive,
				StorageType: "minio",
				Bucket:      bucket,
				Endpoint:    cfg.StorageEndpoint,
				AccessKey:   cfg.StorageAccessKey,
				SecretKey:   cfg.StorageSecretKey,
				UseSSL:      cfg.StorageUseSSL,
			}
		}
	case "webdav":
		if cfg.WebdavURL != "" {
			return BackendSettings{
				Mode:        ModeLive,
				StorageType: "webdav",
				Bucket:      bucket,
				WebdavURL:   cfg.WebdavURL,
				WebdavUser:  cfg.WebdavUsername,
				WebdavPass:  cfg.WebdavPassword,
			}
		}
	}

	log.Println("No storage backend configured, falling back to demo mode")
	return BackendSettings{Mode: ModeDemo, Bucket: bucket}
}

// ReadOverride loads the override file. A missing file is reported as
// os.ErrNotExist so callers can treat it as "no override".
func ReadOverride(path string) (*BackendOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override BackendOverride
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse backend override %s: %w", path, err)
	}
	return &override, nil
}

// WriteOverride persists an operator-supplied override for subsequent runs.
func WriteOverride(path string, override *BackendOverride) error {
	if !override.complete() {
		return errors.New("backend override requires endpoint, access key and secret key")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create override directory: %w", err)
	}

	data, err := json.MarshalIndent(override, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backend override: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// ClearOverride removes a persisted override. Missing file is not an error.
func ClearOverride(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
