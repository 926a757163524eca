package push_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/foundation-rs/invpush/pkg/config"
	"github.com/foundation-rs/invpush/pkg/push"
	"github.com/foundation-rs/invpush/pkg/target"
	"github.com/foundation-rs/invpush/pkg/target/mocks"
)

// writeContentTree lays out the canonical test content: a.txt and sub/b.txt
func writeContentTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("bravo"), 0644))
	return root
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return tree
}

func localTarget(prefix string) config.ServerTarget {
	return config.ServerTarget{
		Type:       "local",
		URI:        "localhost",
		PathPrefix: prefix,
	}
}

func TestPushServer_TreeStructure(t *testing.T) {
	content := writeContentTree(t)
	prefix := filepath.Join(t.TempDir(), "www")

	pusher := push.New(zerolog.Nop())
	result := pusher.PushServer(context.Background(), "web1", content, localTarget(prefix))

	require.True(t, result.Success, "push should succeed: %v", result.Error)
	assert.Equal(t, "web1", result.Server)
	assert.Equal(t, "local", result.Type)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, int64(len("alpha")+len("bravo")), result.Bytes)

	// The pushed tree mirrors the local tree
	assert.Equal(t, map[string]string{
		"a.txt":     "alpha",
		"sub/b.txt": "bravo",
	}, readTree(t, prefix))
}

func TestPushServer_Idempotent(t *testing.T) {
	content := writeContentTree(t)
	prefix := filepath.Join(t.TempDir(), "www")

	pusher := push.New(zerolog.Nop())
	ctx := context.Background()

	first := pusher.PushServer(ctx, "web1", content, localTarget(prefix))
	require.True(t, first.Success, "first push should succeed: %v", first.Error)
	treeAfterFirst := readTree(t, prefix)

	second := pusher.PushServer(ctx, "web1", content, localTarget(prefix))
	require.True(t, second.Success, "second push should succeed: %v", second.Error)

	assert.Equal(t, treeAfterFirst, readTree(t, prefix), "re-running an unchanged push must not alter the remote tree")
}

func TestPushServer_SingleFileContent(t *testing.T) {
	content := filepath.Join(t.TempDir(), "artifact.bin")
	require.NoError(t, os.WriteFile(content, []byte("payload"), 0644))
	prefix := filepath.Join(t.TempDir(), "www")

	pusher := push.New(zerolog.Nop())
	result := pusher.PushServer(context.Background(), "web1", content, localTarget(prefix))

	require.True(t, result.Success, "push should succeed: %v", result.Error)
	assert.Equal(t, 1, result.Files)

	data, err := os.ReadFile(filepath.Join(prefix, "artifact.bin"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestPushServer_HomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, "site"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "site", "index.html"), []byte("<html/>"), 0644))
	prefix := filepath.Join(t.TempDir(), "www")

	pusher := push.New(zerolog.Nop())
	result := pusher.PushServer(context.Background(), "web1", "~/site", localTarget(prefix))

	require.True(t, result.Success, "push should succeed: %v", result.Error)

	data, err := os.ReadFile(filepath.Join(prefix, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html/>", string(data))
}

func TestPushServer_ContentMissing(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "www")

	pusher := push.New(zerolog.Nop())
	result := pusher.PushServer(context.Background(), "web1", filepath.Join(t.TempDir(), "no-such-dir"), localTarget(prefix))

	assert.False(t, result.Success)
	assert.Error(t, result.Error)
	assert.Zero(t, result.Files)
}

func TestPushServer_MockBackend(t *testing.T) {
	t.Run("writes_every_file_then_closes", func(t *testing.T) {
		content := writeContentTree(t)

		mockBackend := mocks.NewMockBackend(t)
		mockBackend.On("Write", mock.Anything, filepath.Join(content, "a.txt"), "a.txt").Return(nil).Once()
		mockBackend.On("Write", mock.Anything, filepath.Join(content, "sub", "b.txt"), "sub/b.txt").Return(nil).Once()
		mockBackend.On("Close").Return(nil).Once()

		target.RegisterBackend("mock-ok", func(ctx context.Context, cfg target.Config) (target.Backend, error) {
			return mockBackend, nil
		})

		pusher := push.New(zerolog.Nop())
		result := pusher.PushServer(context.Background(), "web1", content, config.ServerTarget{
			Type:       "mock-ok",
			URI:        "mock",
			PathPrefix: "/www",
		})

		require.True(t, result.Success, "push should succeed: %v", result.Error)
		assert.Equal(t, 2, result.Files)
	})

	t.Run("transfer_failure_aborts_target", func(t *testing.T) {
		content := writeContentTree(t)

		mockBackend := mocks.NewMockBackend(t)
		mockBackend.On("Write", mock.Anything, mock.Anything, "a.txt").Return(nil).Once()
		mockBackend.On("Write", mock.Anything, mock.Anything, "sub/b.txt").Return(target.ErrConnFailed).Once()
		mockBackend.On("Close").Return(nil).Once()

		target.RegisterBackend("mock-fail", func(ctx context.Context, cfg target.Config) (target.Backend, error) {
			return mockBackend, nil
		})

		pusher := push.New(zerolog.Nop())
		result := pusher.PushServer(context.Background(), "web1", content, config.ServerTarget{
			Type:       "mock-fail",
			URI:        "mock",
			PathPrefix: "/www",
		})

		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Error, target.ErrConnFailed)
		assert.Equal(t, 1, result.Files, "only the first file should have been transferred")
	})

	t.Run("connection_failure", func(t *testing.T) {
		content := writeContentTree(t)

		target.RegisterBackend("mock-unreachable", func(ctx context.Context, cfg target.Config) (target.Backend, error) {
			return nil, target.WrapError(cfg.Name, "connect", target.ErrConnFailed)
		})

		pusher := push.New(zerolog.Nop())
		result := pusher.PushServer(context.Background(), "web1", content, config.ServerTarget{
			Type:       "mock-unreachable",
			URI:        "mock",
			PathPrefix: "/www",
		})

		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Error, target.ErrConnFailed)
		assert.True(t, target.IsConnectionError(result.Error))
	})
}

func TestPushAll_ContinueOnFailure(t *testing.T) {
	content := writeContentTree(t)
	base := t.TempDir()

	// The "down" target's prefix sits under a regular file, so opening the
	// backend fails the same way an unreachable server would.
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	inv := &config.Inventory{
		Content: content,
		Servers: map[string]config.ServerTarget{
			"web1": localTarget(filepath.Join(base, "web1")),
			"web2": localTarget(filepath.Join(base, "web2")),
			"down": localTarget(filepath.Join(blocker, "www")),
		},
	}

	pusher := push.New(zerolog.Nop())
	results := pusher.PushAll(context.Background(), inv)

	require.Len(t, results, 3, "every target must be attempted")

	succeeded, failed, skipped := push.Summarize(results)
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
	assert.Zero(t, skipped)

	for _, result := range results {
		if result.Server == "down" {
			assert.False(t, result.Success)
			assert.Error(t, result.Error)
		} else {
			assert.True(t, result.Success, "server %s should succeed: %v", result.Server, result.Error)
		}
	}

	// The healthy targets still received the full tree
	assert.Equal(t, readTree(t, filepath.Join(base, "web1")), readTree(t, filepath.Join(base, "web2")))
}

func TestPushAll_SkipsDisabledServers(t *testing.T) {
	content := writeContentTree(t)
	base := t.TempDir()

	disabled := false
	off := localTarget(filepath.Join(base, "off"))
	off.Enabled = &disabled

	inv := &config.Inventory{
		Content: content,
		Servers: map[string]config.ServerTarget{
			"web1": localTarget(filepath.Join(base, "web1")),
			"off":  off,
		},
	}

	pusher := push.New(zerolog.Nop())
	results := pusher.PushAll(context.Background(), inv)

	require.Len(t, results, 2)

	succeeded, failed, skipped := push.Summarize(results)
	assert.Equal(t, 1, succeeded)
	assert.Zero(t, failed)
	assert.Equal(t, 1, skipped)

	_, err := os.Stat(filepath.Join(base, "off"))
	assert.True(t, os.IsNotExist(err), "disabled target must not be touched")
}

func TestPushAll_BoundedFanOut(t *testing.T) {
	content := writeContentTree(t)
	base := t.TempDir()

	inv := &config.Inventory{
		Content:             content,
		MaxConcurrentPushes: 3,
		Servers: map[string]config.ServerTarget{
			"web1": localTarget(filepath.Join(base, "web1")),
			"web2": localTarget(filepath.Join(base, "web2")),
			"web3": localTarget(filepath.Join(base, "web3")),
		},
	}

	pusher := push.New(zerolog.Nop())
	results := pusher.PushAll(context.Background(), inv)

	require.Len(t, results, 3)
	for _, result := range results {
		assert.True(t, result.Success, "server %s should succeed: %v", result.Server, result.Error)
		assert.Equal(t, 2, result.Files)
	}
}

func TestTargetConfig(t *testing.T) {
	t.Run("ssh_options", func(t *testing.T) {
		cfg := push.TargetConfig("web1", config.ServerTarget{
			URI:        "web1.example.com:2222",
			User:       "deploy",
			Password:   "hunter2",
			PathPrefix: "/var/www",
		})

		assert.Equal(t, "ssh", cfg.Type)
		assert.Equal(t, "/var/www", cfg.Prefix)
		assert.Equal(t, "web1.example.com", cfg.Options["host"])
		assert.Equal(t, 2222, cfg.Options["port"])
		assert.Equal(t, "deploy", cfg.Options["user"])
		assert.Equal(t, "hunter2", cfg.Options["password"])
	})

	t.Run("s3_options", func(t *testing.T) {
		cfg := push.TargetConfig("mirror", config.ServerTarget{
			Type:            "s3",
			URI:             "site-mirror",
			Region:          "us-east-1",
			AccessKeyID:     "AKIAEXAMPLE",
			SecretAccessKey: "sekrit",
			PathPrefix:      "releases/current",
		})

		assert.Equal(t, "s3", cfg.Type)
		assert.Equal(t, "releases/current", cfg.Prefix)
		assert.Equal(t, "site-mirror", cfg.Options["bucket"])
		assert.Equal(t, "us-east-1", cfg.Options["region"])
	})

	t.Run("backblaze_options", func(t *testing.T) {
		cfg := push.TargetConfig("b2", config.ServerTarget{
			Type:           "backblaze",
			URI:            "site-archive",
			AccountID:      "acct",
			ApplicationKey: "key",
			PathPrefix:     "releases",
		})

		assert.Equal(t, "backblaze", cfg.Type)
		assert.Equal(t, "site-archive", cfg.Options["bucket_name"])
		assert.Equal(t, "acct", cfg.Options["account_id"])
	})
}
