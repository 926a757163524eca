package target

import (
	"context"
	"time"
)

// Backend represents a push destination that can receive content files
type Backend interface {
	// Name returns the server name from the inventory (e.g., "web1")
	Name() string

	// Type returns the backend type (ssh, local, s3, backblaze)
	Type() string

	// Write copies a local file into the backend under its path prefix
	// sourcePath: absolute path to the local file
	// destPath: slash-separated path relative to the prefix (e.g., "sub/b.txt")
	// An existing file at destPath is overwritten.
	Write(ctx context.Context, sourcePath string, destPath string) error

	// Stat returns metadata about a pushed file
	// path: relative path in the backend
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if a file exists in the backend
	Exists(ctx context.Context, path string) (bool, error)

	// Close releases resources (connections, sessions)
	Close() error
}

// FileInfo represents metadata about a stored file
type FileInfo struct {
	Path    string    // Relative path in backend
	Size    int64     // Size in bytes
	ModTime time.Time // Last modification time
}

// Config represents backend configuration derived from one inventory entry
type Config struct {
	Name    string                 // Server name from the inventory
	Type    string                 // Backend type: ssh, local, s3, backblaze
	Prefix  string                 // Destination root (the inventory path-prefix)
	Options map[string]interface{} // Backend-specific options
}
