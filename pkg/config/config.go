package config

import (
	"net"
	"strconv"
)

// ServerTarget defines a single push destination from the inventory
type ServerTarget struct {
	URI           string `yaml:"uri"`
	User          string `yaml:"user,omitempty"`
	Password      string `yaml:"password,omitempty"`
	Description   string `yaml:"description,omitempty"`
	PathPrefix    string `yaml:"path-prefix"`
	Type          string `yaml:"type,omitempty"`           // ssh, local, s3, backblaze (default: ssh)
	Port          int    `yaml:"port,omitempty"`           // optional, overrides a port embedded in uri
	KeyPath       string `yaml:"key-path,omitempty"`       // optional: path to SSH private key
	KeyPassphrase string `yaml:"key-passphrase,omitempty"` // optional
	Enabled       *bool  `yaml:"enabled,omitempty"`        // defaults to true if omitted

	// Object store options (s3, backblaze)
	Region          string `yaml:"region,omitempty"`
	Bucket          string `yaml:"bucket,omitempty"` // defaults to uri for object store targets
	AccessKeyID     string `yaml:"access-key-id,omitempty"`
	SecretAccessKey string `yaml:"secret-access-key,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	ForcePathStyle  bool   `yaml:"force-path-style,omitempty"`
	AccountID       string `yaml:"account-id,omitempty"`
	ApplicationKey  string `yaml:"application-key,omitempty"`
}

// Inventory is the root configuration structure
type Inventory struct {
	Content             string                  `yaml:"content"`
	Servers             map[string]ServerTarget `yaml:"servers"`
	LogLevel            string                  `yaml:"log-level,omitempty"`             // debug, info, warn, error (default: info)
	LogFormat           string                  `yaml:"log-format,omitempty"`            // json, console (default: console)
	MaxConcurrentPushes int                     `yaml:"max-concurrent-pushes,omitempty"` // default: 1 (sequential)
}

// GetType returns the effective target type (defaults to ssh)
func (s *ServerTarget) GetType() string {
	if s.Type != "" {
		return s.Type
	}
	return "ssh"
}

// Host returns the host part of uri, stripping an embedded port if present
func (s *ServerTarget) Host() string {
	if host, _, err := net.SplitHostPort(s.URI); err == nil {
		return host
	}
	return s.URI
}

// GetPort returns the effective SSH port: the explicit port field, then a
// port embedded in uri, then 22
func (s *ServerTarget) GetPort() int {
	if s.Port > 0 {
		return s.Port
	}
	if _, port, err := net.SplitHostPort(s.URI); err == nil {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			return n
		}
	}
	return 22
}

// GetBucket returns the bucket for object store targets (defaults to uri)
func (s *ServerTarget) GetBucket() string {
	if s.Bucket != "" {
		return s.Bucket
	}
	return s.URI
}

// IsEnabled returns whether the target is enabled (defaults to true)
func (s *ServerTarget) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// GetLogLevel returns the log level (defaults to info)
func (inv *Inventory) GetLogLevel() string {
	if inv.LogLevel != "" {
		return inv.LogLevel
	}
	return "info"
}

// GetLogFormat returns the log format (defaults to console)
func (inv *Inventory) GetLogFormat() string {
	if inv.LogFormat != "" {
		return inv.LogFormat
	}
	return "console"
}

// GetMaxConcurrentPushes returns the push concurrency limit (defaults to 1,
// which keeps execution sequential across targets)
func (inv *Inventory) GetMaxConcurrentPushes() int {
	if inv.MaxConcurrentPushes > 0 {
		return inv.MaxConcurrentPushes
	}
	return 1
}
