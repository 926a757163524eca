package s3

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/foundation-rs/invpush/pkg/target"
)

type Backend struct {
	name     string
	client   *s3.Client
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

func init() {
	target.RegisterBackend("s3", func(ctx context.Context, cfg target.Config) (target.Backend, error) {
		return New(ctx, cfg)
	})
}

// New creates a new S3 backend
func New(ctx context.Context, cfg target.Config) (*Backend, error) {
	s3Cfg, err := parseConfig(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s3Cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3Cfg.AccessKeyID,
				s3Cfg.SecretAccessKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, target.WrapError(cfg.Name, "init", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3Cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Cfg.Endpoint)
		}
		o.UsePathStyle = s3Cfg.ForcePathStyle
	})

	// Test connection
	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s3Cfg.Bucket),
	})
	if err != nil {
		return nil, target.WrapError(cfg.Name, "connection test", target.ErrConnFailed)
	}

	return &Backend{
		name:     cfg.Name,
		client:   client,
		bucket:   s3Cfg.Bucket,
		prefix:   strings.TrimPrefix(s3Cfg.Prefix, "/"),
		uploader: manager.NewUploader(client),
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "s3" }

// Write uploads a file to S3
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	file, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer file.Close()

	key := path.Join(b.prefix, destPath)

	_, err = b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   file,
	})

	if err != nil {
		return target.WrapError(b.name, "upload", err)
	}

	return nil
}

// Stat returns metadata about an object
func (b *Backend) Stat(ctx context.Context, objectPath string) (*target.FileInfo, error) {
	key := path.Join(b.prefix, objectPath)

	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return nil, target.WrapError(b.name, "stat", err)
	}

	return &target.FileInfo{
		Path:    objectPath,
		Size:    *result.ContentLength,
		ModTime: *result.LastModified,
	}, nil
}

// Exists checks if an object exists
func (b *Backend) Exists(ctx context.Context, objectPath string) (bool, error) {
	if _, err := b.Stat(ctx, objectPath); err != nil {
		return false, nil
	}
	return true, nil
}

// Close is a no-op for the S3 backend
func (b *Backend) Close() error {
	return nil
}

func parseConfig(cfg target.Config) (*Config, error) {
	s3Cfg := &Config{
		Prefix: cfg.Prefix,
	}

	if v, ok := cfg.Options["bucket"].(string); ok && v != "" {
		s3Cfg.Bucket = v
	} else {
		return nil, fmt.Errorf("missing required option: bucket")
	}
	if v, ok := cfg.Options["region"].(string); ok && v != "" {
		s3Cfg.Region = v
	} else {
		return nil, fmt.Errorf("missing required option: region")
	}
	if v, ok := cfg.Options["access_key_id"].(string); ok {
		s3Cfg.AccessKeyID = v
	}
	if v, ok := cfg.Options["secret_access_key"].(string); ok {
		s3Cfg.SecretAccessKey = v
	}
	if v, ok := cfg.Options["endpoint"].(string); ok {
		s3Cfg.Endpoint = v
	}
	if v, ok := cfg.Options["force_path_style"].(bool); ok {
		s3Cfg.ForcePathStyle = v
	}

	return s3Cfg, nil
}
