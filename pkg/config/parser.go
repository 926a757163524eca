package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is the conventional inventory location inside the user's
// home directory.
const DefaultFilename = ".inventory.yaml"

// ErrInvalidInventory marks a missing, malformed or incomplete inventory
// file. Errors of this kind are fatal and reported before any push runs.
var ErrInvalidInventory = errors.New("invalid inventory")

// DefaultPath returns the conventional inventory path, ~/.inventory.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultFilename), nil
}

// Load reads, validates and parses an inventory file
func Load(inventoryFile string) (*Inventory, error) {
	if err := Validate(inventoryFile); err != nil {
		return nil, err
	}

	file, err := os.Open(inventoryFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer file.Close()

	var inv Inventory
	if err := yaml.NewDecoder(file).Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse inventory file: %w: %v", ErrInvalidInventory, err)
	}

	if err := checkRequired(&inv); err != nil {
		return nil, err
	}

	return &inv, nil
}

// checkRequired enforces the field constraints the schema cannot express,
// notably that SSH targets carry a user.
func checkRequired(inv *Inventory) error {
	if strings.TrimSpace(inv.Content) == "" {
		return fmt.Errorf("%w: content must not be empty", ErrInvalidInventory)
	}
	if len(inv.Servers) == 0 {
		return fmt.Errorf("%w: at least one server is required", ErrInvalidInventory)
	}
	for name, srv := range inv.Servers {
		if strings.TrimSpace(srv.URI) == "" {
			return fmt.Errorf("%w: server %s: uri must not be empty", ErrInvalidInventory, name)
		}
		if strings.TrimSpace(srv.PathPrefix) == "" {
			return fmt.Errorf("%w: server %s: path-prefix must not be empty", ErrInvalidInventory, name)
		}
		if srv.GetType() == "ssh" && strings.TrimSpace(srv.User) == "" {
			return fmt.Errorf("%w: server %s: user must not be empty", ErrInvalidInventory, name)
		}
	}
	return nil
}

// ExpandHome expands a leading ~ or ~/ in path to the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "~" {
		return homeDir, nil
	}
	return filepath.Join(homeDir, path[2:]), nil
}
