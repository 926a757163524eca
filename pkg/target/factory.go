package target

import (
	"context"
	"fmt"
)

// BackendConstructor is a function that creates a backend instance
type BackendConstructor func(ctx context.Context, cfg Config) (Backend, error)

var backendRegistry = make(map[string]BackendConstructor)

// RegisterBackend registers a backend constructor
func RegisterBackend(backendType string, constructor BackendConstructor) {
	backendRegistry[backendType] = constructor
}

// Factory creates push backends from configuration
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create instantiates a backend from config
func (f *Factory) Create(ctx context.Context, cfg Config) (Backend, error) {
	constructor, ok := backendRegistry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown target type %q: %w", cfg.Type, ErrInvalidConfig)
	}

	return constructor(ctx, cfg)
}
