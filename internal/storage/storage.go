// Package storage keeps uploaded crack images and hands out the public
// paths clients use to fetch them.
package storage

import (
	"context"
	"errors"
	"fmt"

	"crack-go/internal/config"
)

// ErrInvalidPath is returned for a public path this store did not issue.
var ErrInvalidPath = errors.New("path does not belong to this store")

// ImageStore persists image bytes under a caller-chosen unique name.
type ImageStore interface {
	// Save writes data under name and returns its public path. It must
	// never overwrite an existing object.
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	// Exists reports whether publicPath refers to a stored image.
	Exists(ctx context.Context, publicPath string) (bool, error)
	// Delete removes the image behind publicPath. Missing images are not an error.
	Delete(ctx context.Context, publicPath string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStore(cfg.Local.Dir, cfg.Local.PublicPrefix)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Driver)
	}
}
