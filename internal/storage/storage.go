// Package storage guarda os arquivos exportados (relatórios XLSX).
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/BruksfildServices01/clinica-scheduler/internal/config"
)

type Driver interface {
	// Upload grava o conteúdo em path e devolve a URL pública.
	Upload(ctx context.Context, r io.Reader, path, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	GetPublicURL(path string) string
}

func NewDriver(cfg config.StorageConfig) (Driver, error) {
	switch cfg.Driver {
	case "local", "":
		path := cfg.UploadsPath
		if path == "" {
			path = "./uploads"
		}
		return NewLocal(path), nil

	case "s3":
		return NewS3(cfg)

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
