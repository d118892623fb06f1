// Package storage stages uploaded PDFs between the upload step and the
// analyze step of the web UI.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerylCAtieno/financial-analyzer/internal/config"
)

var ErrNotFound = errors.New("staged upload not found")

type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// New returns the backend selected by cfg.StorageType.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageType {
	case config.StorageS3:
		return NewS3Storage(ctx, cfg)
	case config.StorageMemory, "":
		return NewMemoryStorage(cfg.UploadTTL), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}
