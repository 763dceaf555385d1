package storage

import (
	"fmt"
	"log"

	"github.com/abofield/abofield/config"
)

// Factory creates and holds the storage providers resolved from the backend
// settings.
type Factory struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewFactory builds the providers described by the resolved backend
// settings. It must not be called in demo mode.
func NewFactory(settings config.BackendSettings) (*Factory, error) {
	if settings.Mode == config.ModeDemo {
		return nil, fmt.Errorf("no storage factory in demo mode")
	}

	factory := &Factory{
		providers: make(map[string]Provider),
	}

	log.Println("Initializing storage providers...")

	if settings.LocalPath != "" {
		localProvider, err := NewLocalStorage(settings.LocalPath, "/files")
		if err != nil {
			log.Printf("Failed to initialize local storage: %v", err)
		} else {
			factory.providers["local"] = localProvider
			log.Println("Successfully initialized 'local' storage provider")
		}
	}

	if settings.Endpoint != "" {
		minioProvider, err := NewMinioStorage(MinioConfig{
			Endpoint:   settings.Endpoint,
			AccessKey:  settings.AccessKey,
			SecretKey:  settings.SecretKey,
			BucketName: settings.Bucket,
			UseSSL:     settings.UseSSL,
		})
		if err != nil {
			log.Printf("Failed to initialize minio storage: %v", err)
		} else {
			factory.providers["minio"] = minioProvider
			log.Println("Successfully initialized 'minio' storage provider")
		}
	}

	if settings.WebdavURL != "" {
		webdavProvider, err := NewWebDAVStorage(WebDAVConfig{
			URL:      settings.WebdavURL,
			Username: settings.WebdavUser,
			Password: settings.WebdavPass,
			RootPath: settings.Bucket,
		})
		if err != nil {
			log.Printf("Failed to initialize webdav storage: %v", err)
		} else {
			factory.providers["webdav"] = webdavProvider
			log.Println("Successfully initialized 'webdav' storage provider")
		}
	}

	if len(factory.providers) == 0 {
		return nil, fmt.Errorf("no storage providers were successfully initialized")
	}

	factory.defaultProvider = settings.StorageType
	if _, ok := factory.providers[factory.defaultProvider]; !ok {
		return nil, fmt.Errorf("default storage type '%s' is not available", factory.defaultProvider)
	}
	log.Printf("Default storage provider set to: '%s'", factory.defaultProvider)

	return factory, nil
}

// Get returns the named provider, or the default when name is empty.
func (f *Factory) Get(name string) (Provider, error) {
	if name == "" {
		name = f.defaultProvider
	}

	provider, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("storage provider '%s' not found", name)
	}
	return provider, nil
}

// GetDefault returns the default provider.
func (f *Factory) GetDefault() Provider {
	provider, _ := f.Get(f.defaultProvider)
	return provider
}

// GetDefaultName returns the default provider name.
func (f *Factory) GetDefaultName() string {
	return f.defaultProvider
}

// ListProviders lists the available provider names.
func (f *Factory) ListProviders() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	return names
}
