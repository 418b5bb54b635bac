package factory

import (
	"fmt"

	"go-kyc-intake/internal/config"
	"go-kyc-intake/internal/storage"
)

// StorageFactory creates the image fetcher matching the configured backend.
type StorageFactory interface {
	CreateFetcher(cfg *config.Config) (storage.ImageFetcher, error)
}

type storageFactory struct{}

// NewStorageFactory creates a new storage factory.
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateFetcher creates a fetcher for the backend named in the configuration.
func (f *storageFactory) CreateFetcher(cfg *config.Config) (storage.ImageFetcher, error) {
	switch cfg.StorageBackend {
	case config.StorageHTTP:
		return storage.NewHTTPImageFetcher(), nil
	case config.StorageAzure:
		return storage.NewAzureBlobFetcher(cfg.AzureAccountName, cfg.AzureAccountKey)
	case config.StorageLocal:
		return storage.NewLocalFileFetcher(cfg.LocalImageDir), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
