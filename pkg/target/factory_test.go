package target_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundation-rs/invpush/pkg/target"
	"github.com/foundation-rs/invpush/pkg/target/mocks"
)

func TestFactory_Create(t *testing.T) {
	t.Run("unknown_type", func(t *testing.T) {
		factory := target.NewFactory()

		_, err := factory.Create(context.Background(), target.Config{Name: "web1", Type: "carrier-pigeon"})
		require.Error(t, err)
		assert.ErrorIs(t, err, target.ErrInvalidConfig)
	})

	t.Run("registered_type", func(t *testing.T) {
		mockBackend := mocks.NewMockBackend(t)

		var seen target.Config
		target.RegisterBackend("factory-test", func(ctx context.Context, cfg target.Config) (target.Backend, error) {
			seen = cfg
			return mockBackend, nil
		})

		factory := target.NewFactory()
		cfg := target.Config{
			Name:   "web1",
			Type:   "factory-test",
			Prefix: "/var/www",
			Options: map[string]interface{}{
				"host": "web1.example.com",
			},
		}

		backend, err := factory.Create(context.Background(), cfg)
		require.NoError(t, err)
		assert.Same(t, target.Backend(mockBackend), backend)
		assert.Equal(t, cfg, seen)
	})
}
