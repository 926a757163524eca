package push

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/foundation-rs/invpush/pkg/config"
	"github.com/foundation-rs/invpush/pkg/target"

	// Import backends to register them
	_ "github.com/foundation-rs/invpush/pkg/target/backblaze"
	_ "github.com/foundation-rs/invpush/pkg/target/local"
	_ "github.com/foundation-rs/invpush/pkg/target/s3"
	_ "github.com/foundation-rs/invpush/pkg/target/ssh"
)

// Result represents the outcome of pushing content to a single server
type Result struct {
	Server   string
	Type     string
	Success  bool
	Skipped  bool // True if the server is disabled in the inventory
	Files    int
	Bytes    int64
	Error    error
	Duration time.Duration
}

// Pusher copies the inventory content to configured servers
type Pusher struct {
	logger  zerolog.Logger
	factory *target.Factory
}

// New creates a new pusher
func New(logger zerolog.Logger) *Pusher {
	return &Pusher{
		logger:  logger,
		factory: target.NewFactory(),
	}
}

// PushServer pushes the content tree to one server. contentPath is taken
// verbatim from the inventory; a leading ~ is expanded here, at push time.
func (p *Pusher) PushServer(ctx context.Context, name, contentPath string, srv config.ServerTarget) Result {
	start := time.Now()
	result := Result{Server: name, Type: srv.GetType()}

	srvLog := p.logger.With().Str("server", name).Str("type", result.Type).Logger()
	srvLog.Info().
		Str("uri", srv.URI).
		Str("path_prefix", srv.PathPrefix).
		Str("description", srv.Description).
		Msg("starting push")

	content, err := config.ExpandHome(contentPath)
	if err == nil {
		_, err = os.Stat(content)
	}
	if err != nil {
		result.Error = fmt.Errorf("content not available: %w", err)
		result.Duration = time.Since(start)
		srvLog.Error().Err(result.Error).Str("content", contentPath).Msg("push failed")
		return result
	}

	files, err := collectFiles(content)
	if err != nil {
		result.Error = fmt.Errorf("failed to enumerate content: %w", err)
		result.Duration = time.Since(start)
		srvLog.Error().Err(result.Error).Str("content", content).Msg("push failed")
		return result
	}

	if result.Type == "ssh" && srv.Password != "" && srv.KeyPath == "" {
		srvLog.Warn().Msg("authenticating with a plaintext password from the inventory, consider key-path instead")
	}

	backend, err := p.factory.Create(ctx, TargetConfig(name, srv))
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		srvLog.Error().Err(err).Msg("failed to open target")
		return result
	}
	defer backend.Close()

	for _, f := range files {
		if err := backend.Write(ctx, f.Source, f.Dest); err != nil {
			result.Error = target.WrapError(name, "transfer", err)
			result.Duration = time.Since(start)
			srvLog.Error().Err(err).Str("file", f.Dest).Msg("transfer failed")
			return result
		}

		result.Files++
		result.Bytes += f.Size
		srvLog.Debug().Str("file", f.Dest).Int64("bytes", f.Size).Msg("pushed file")
	}

	result.Success = true
	result.Duration = time.Since(start)
	srvLog.Info().
		Int("files", result.Files).
		Int64("bytes", result.Bytes).
		Dur("duration", result.Duration).
		Msg("push completed")
	return result
}

// TargetConfig maps an inventory entry onto a backend configuration
func TargetConfig(name string, srv config.ServerTarget) target.Config {
	cfg := target.Config{
		Name:    name,
		Type:    srv.GetType(),
		Prefix:  srv.PathPrefix,
		Options: map[string]interface{}{},
	}

	switch cfg.Type {
	case "ssh":
		keyPath := srv.KeyPath
		if expanded, err := config.ExpandHome(keyPath); err == nil {
			keyPath = expanded
		}
		cfg.Options["host"] = srv.Host()
		cfg.Options["port"] = srv.GetPort()
		cfg.Options["user"] = srv.User
		cfg.Options["password"] = srv.Password
		cfg.Options["key_path"] = keyPath
		cfg.Options["key_passphrase"] = srv.KeyPassphrase
	case "s3":
		cfg.Options["bucket"] = srv.GetBucket()
		cfg.Options["region"] = srv.Region
		cfg.Options["access_key_id"] = srv.AccessKeyID
		cfg.Options["secret_access_key"] = srv.SecretAccessKey
		cfg.Options["endpoint"] = srv.Endpoint
		cfg.Options["force_path_style"] = srv.ForcePathStyle
	case "backblaze":
		cfg.Options["account_id"] = srv.AccountID
		cfg.Options["application_key"] = srv.ApplicationKey
		cfg.Options["bucket_name"] = srv.GetBucket()
	}

	return cfg
}

type contentFile struct {
	Source string // Absolute local path
	Dest   string // Slash-separated path relative to the content root
	Size   int64
}

// collectFiles enumerates the content tree. A single file pushes under its
// base name; a directory pushes its files with relative paths preserved.
func collectFiles(root string) ([]contentFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []contentFile{{Source: root, Dest: filepath.Base(root), Size: info.Size()}}, nil
	}

	var files []contentFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, contentFile{
			Source: path,
			Dest:   filepath.ToSlash(rel),
			Size:   fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
