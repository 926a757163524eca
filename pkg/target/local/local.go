package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/foundation-rs/invpush/pkg/target"
)

// Backend writes content into a local directory. Useful for same-host
// deployments and for testing the push pipeline without a network.
type Backend struct {
	name     string
	basePath string
}

func init() {
	target.RegisterBackend("local", func(ctx context.Context, cfg target.Config) (target.Backend, error) {
		return New(cfg)
	})
}

// New creates a new local filesystem backend rooted at the path prefix
func New(cfg target.Config) (*Backend, error) {
	if cfg.Prefix == "" {
		return nil, fmt.Errorf("missing required option: prefix")
	}

	if err := os.MkdirAll(cfg.Prefix, 0755); err != nil {
		return nil, target.WrapError(cfg.Name, "mkdir", err)
	}

	return &Backend{
		name:     cfg.Name,
		basePath: cfg.Prefix,
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "local" }

// Write copies a file into the backend
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	destFullPath := filepath.Join(b.basePath, filepath.FromSlash(destPath))

	destDir := filepath.Dir(destFullPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return target.WrapError(b.name, "write", err)
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return target.WrapError(b.name, "write", err)
	}
	defer source.Close()

	dest, err := os.Create(destFullPath)
	if err != nil {
		return target.WrapError(b.name, "write", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, source); err != nil {
		os.Remove(destFullPath) // Clean up partial file
		return target.WrapError(b.name, "write", err)
	}

	return nil
}

// Stat returns metadata about a file
func (b *Backend) Stat(ctx context.Context, path string) (*target.FileInfo, error) {
	fullPath := filepath.Join(b.basePath, filepath.FromSlash(path))
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, target.ErrNotFound
		}
		return nil, target.WrapError(b.name, "stat", err)
	}

	return &target.FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Exists checks if a file exists
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	fullPath := filepath.Join(b.basePath, filepath.FromSlash(path))
	_, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, target.WrapError(b.name, "exists", err)
	}
	return true, nil
}

// Close is a no-op for the local backend
func (b *Backend) Close() error {
	return nil
}
