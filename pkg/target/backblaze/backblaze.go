package backblaze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/kurin/blazer/b2"

	"github.com/foundation-rs/invpush/pkg/target"
)

type Backend struct {
	name   string
	client *b2.Client
	bucket *b2.Bucket
	prefix string
}

func init() {
	target.RegisterBackend("backblaze", func(ctx context.Context, cfg target.Config) (target.Backend, error) {
		return New(ctx, cfg)
	})
}

// New creates a new Backblaze B2 backend
func New(ctx context.Context, cfg target.Config) (*Backend, error) {
	b2Cfg, err := parseConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := b2.NewClient(ctx, b2Cfg.AccountID, b2Cfg.ApplicationKey)
	if err != nil {
		return nil, target.WrapError(cfg.Name, "init", target.ErrAuthFailed)
	}

	bucket, err := client.Bucket(ctx, b2Cfg.BucketName)
	if err != nil {
		return nil, target.WrapError(cfg.Name, "get bucket", err)
	}

	return &Backend{
		name:   cfg.Name,
		client: client,
		bucket: bucket,
		prefix: strings.TrimPrefix(b2Cfg.Prefix, "/"),
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "backblaze" }

// Write uploads a file to B2
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	file, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer file.Close()

	key := path.Join(b.prefix, destPath)

	obj := b.bucket.Object(key)
	writer := obj.NewWriter(ctx)

	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return target.WrapError(b.name, "upload", err)
	}

	if err := writer.Close(); err != nil {
		return target.WrapError(b.name, "upload", err)
	}

	return nil
}

// Stat returns metadata about an object
func (b *Backend) Stat(ctx context.Context, objectPath string) (*target.FileInfo, error) {
	key := path.Join(b.prefix, objectPath)

	attrs, err := b.bucket.Object(key).Attrs(ctx)
	if err != nil {
		if b2.IsNotExist(err) {
			return nil, target.ErrNotFound
		}
		return nil, target.WrapError(b.name, "stat", err)
	}

	return &target.FileInfo{
		Path:    objectPath,
		Size:    attrs.Size,
		ModTime: attrs.UploadTimestamp,
	}, nil
}

// Exists checks if an object exists
func (b *Backend) Exists(ctx context.Context, objectPath string) (bool, error) {
	_, err := b.Stat(ctx, objectPath)
	if err != nil {
		if errors.Is(err, target.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close is a no-op for the B2 backend
func (b *Backend) Close() error {
	return nil
}

func parseConfig(cfg target.Config) (*Config, error) {
	b2Cfg := &Config{
		Prefix: cfg.Prefix,
	}

	if v, ok := cfg.Options["account_id"].(string); ok && v != "" {
		b2Cfg.AccountID = v
	} else {
		return nil, fmt.Errorf("missing required option: account_id")
	}
	if v, ok := cfg.Options["application_key"].(string); ok && v != "" {
		b2Cfg.ApplicationKey = v
	} else {
		return nil, fmt.Errorf("missing required option: application_key")
	}
	if v, ok := cfg.Options["bucket_name"].(string); ok && v != "" {
		b2Cfg.BucketName = v
	} else {
		return nil, fmt.Errorf("missing required option: bucket_name")
	}

	return b2Cfg, nil
}
