package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/foundation-rs/invpush/pkg/target"
)

type Backend struct {
	name       string
	sshClient  *ssh.Client
	sftpClient *sftp.Client
	remotePath string
}

func init() {
	target.RegisterBackend("ssh", func(ctx context.Context, cfg target.Config) (target.Backend, error) {
		return New(cfg)
	})
}

// New connects to an SSH server and prepares an SFTP session rooted at the
// configured remote path
func New(cfg target.Config) (*Backend, error) {
	sshCfg, err := parseConfig(cfg)
	if err != nil {
		return nil, err
	}

	clientConfig := &ssh.ClientConfig{
		User:            sshCfg.User,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // TODO: Add host key verification
		Timeout:         30 * time.Second,
	}

	// Key auth is preferred over password auth when both are configured
	if sshCfg.KeyPath != "" {
		key, err := os.ReadFile(sshCfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}

		var signer ssh.Signer
		if sshCfg.KeyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(sshCfg.KeyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH key: %w", err)
		}

		clientConfig.Auth = append(clientConfig.Auth, ssh.PublicKeys(signer))
	}

	if sshCfg.Password != "" {
		clientConfig.Auth = append(clientConfig.Auth, ssh.Password(sshCfg.Password))
	}

	if len(clientConfig.Auth) == 0 {
		return nil, fmt.Errorf("no password or key configured for %s: %w", cfg.Name, target.ErrInvalidConfig)
	}

	if sshCfg.Port == 0 {
		sshCfg.Port = 22
	}

	addr := fmt.Sprintf("%s:%d", sshCfg.Host, sshCfg.Port)
	sshClient, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return nil, target.WrapError(cfg.Name, "connect", target.ErrConnFailed)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, target.WrapError(cfg.Name, "sftp init", err)
	}

	// Ensure the remote prefix exists up front
	if err := sftpClient.MkdirAll(sshCfg.RemotePath); err != nil {
		sftpClient.Close()
		sshClient.Close()
		return nil, target.WrapError(cfg.Name, "mkdir", err)
	}

	return &Backend{
		name:       cfg.Name,
		sshClient:  sshClient,
		sftpClient: sftpClient,
		remotePath: sshCfg.RemotePath,
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "ssh" }

// Write uploads a file via SFTP, creating remote directories as needed
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	localFile, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer localFile.Close()

	remotePath := path.Join(b.remotePath, destPath)

	remoteDir := path.Dir(remotePath)
	if err := b.sftpClient.MkdirAll(remoteDir); err != nil {
		return target.WrapError(b.name, "mkdir", err)
	}

	// Create truncates, so re-pushing unchanged content is idempotent
	remoteFile, err := b.sftpClient.Create(remotePath)
	if err != nil {
		return target.WrapError(b.name, "create", err)
	}
	defer remoteFile.Close()

	if _, err := io.Copy(remoteFile, localFile); err != nil {
		return target.WrapError(b.name, "upload", err)
	}

	return nil
}

// Stat returns file metadata
func (b *Backend) Stat(ctx context.Context, filePath string) (*target.FileInfo, error) {
	remotePath := path.Join(b.remotePath, filePath)

	info, err := b.sftpClient.Stat(remotePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, target.ErrNotFound
		}
		return nil, target.WrapError(b.name, "stat", err)
	}

	return &target.FileInfo{
		Path:    filePath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Exists checks if a file exists
func (b *Backend) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := b.Stat(ctx, filePath)
	if err != nil {
		if errors.Is(err, target.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close releases resources
func (b *Backend) Close() error {
	if b.sftpClient != nil {
		b.sftpClient.Close()
	}
	if b.sshClient != nil {
		b.sshClient.Close()
	}
	return nil
}

func parseConfig(cfg target.Config) (*Config, error) {
	sshCfg := &Config{
		Port:       22,
		RemotePath: cfg.Prefix,
	}

	if v, ok := cfg.Options["host"].(string); ok && v != "" {
		sshCfg.Host = v
	} else {
		return nil, fmt.Errorf("missing required option: host")
	}
	if v, ok := cfg.Options["user"].(string); ok && v != "" {
		sshCfg.User = v
	} else {
		return nil, fmt.Errorf("missing required option: user")
	}
	if sshCfg.RemotePath == "" {
		return nil, fmt.Errorf("missing required option: prefix")
	}
	if v, ok := cfg.Options["password"].(string); ok {
		sshCfg.Password = v
	}
	if v, ok := cfg.Options["key_path"].(string); ok {
		sshCfg.KeyPath = v
	}
	if v, ok := cfg.Options["key_passphrase"].(string); ok {
		sshCfg.KeyPassphrase = v
	}
	if v, ok := cfg.Options["port"].(int); ok && v > 0 {
		sshCfg.Port = v
	}

	return sshCfg, nil
}
