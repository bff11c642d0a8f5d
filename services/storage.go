package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kendall-kelly/otica-api/config"
)

// StorageInterface stores uploaded files and returns their public URL
type StorageInterface interface {
	Save(ctx context.Context, name, contentType string, content []byte) (string, error)
}

// LocalStorage writes files under a directory that the router serves statically
type LocalStorage struct {
	dir       string
	urlPrefix string
}

var storageInstance StorageInterface

// NewLocalStorage stores files in dir and reports them as urlPrefix/<name>
func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{dir: dir, urlPrefix: urlPrefix}
}

// InitStorage selects the storage driver from STORAGE_DRIVER
func InitStorage(ctx context.Context) (StorageInterface, error) {
	cfg := config.GetConfig()
	switch cfg.StorageDriver {
	case "s3":
		s3Storage, err := NewS3Storage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		storageInstance = s3Storage
	default:
		storageInstance = NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)
	}
	return storageInstance, nil
}

// GetStorage returns the initialized storage instance
func GetStorage() StorageInterface {
	return storageInstance
}

// SetStorage sets the storage instance (primarily for testing)
func SetStorage(storage StorageInterface) {
	storageInstance = storage
}

// Save writes content to dir/name, creating dir when needed
func (l *LocalStorage) Save(ctx context.Context, name, contentType string, content []byte) (string, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	fullPath := filepath.Join(l.dir, filepath.Base(name))
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return l.urlPrefix + "/" + filepath.Base(name), nil
}
