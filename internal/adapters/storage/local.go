// Package storage provides object storage adapters for the shoreline
// catalog. Each backend lists and fetches regional reference-shoreline
// GeoJSON files.
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/coastgrid/coastgrid/internal/ports/output"
)

// isShorelineFile reports whether a key names a shoreline layer.
func isShorelineFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".geojson")
}

// LocalStorage implements ObjectStorage for a local shoreline data
// directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage adapter.
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

// List returns all shoreline files under the base directory.
func (s *LocalStorage) List(ctx context.Context) ([]output.StorageObject, error) {
	var objects []output.StorageObject

	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isShorelineFile(info.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}

		objects = append(objects, output.StorageObject{
			Key:          relPath,
			Size:         info.Size(),
			LastModified: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// Download copies a file to the destination.
func (s *LocalStorage) Download(ctx context.Context, key string, dest string) error {
	srcPath := filepath.Join(s.basePath, key)
	if srcPath == dest {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return err
	}

	src, err := os.Open(srcPath) //#nosec G304 -- key is relative to the configured base path
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(dest) //#nosec G304 -- dest is a controlled local path
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	_, err = io.Copy(dst, src)
	return err
}

// GetReader returns a reader for the given object.
func (s *LocalStorage) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.basePath, key)) //#nosec G304 -- key is relative to the configured base path
}

// Exists checks if a file exists.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.basePath, key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// FullPath returns the full path for a key.
func (s *LocalStorage) FullPath(key string) string {
	return filepath.Join(s.basePath, key)
}
