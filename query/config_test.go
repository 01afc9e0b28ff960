package query

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/c360/querykit/errors"
)

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 6, cfg.ChunkSize)
	assert.Equal(t, 3, cfg.MaxConcurrent)
	assert.Equal(t, 50*time.Millisecond, cfg.ChunkDelay)
	assert.Zero(t, cfg.FetchRate)
	require.NoError(t, cfg.Validate())
}

func TestConfigDefaultsKeepExplicitValues(t *testing.T) {
	cfg := Config{ChunkSize: 4, MaxConcurrent: 2, ChunkDelay: time.Millisecond}
	cfg.SetDefaults()
	assert.Equal(t, 4, cfg.ChunkSize)
	assert.Equal(t, 2, cfg.MaxConcurrent)
	assert.Equal(t, time.Millisecond, cfg.ChunkDelay)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative chunk size", Config{ChunkSize: -1, MaxConcurrent: 3}},
		{"negative concurrency", Config{ChunkSize: 6, MaxConcurrent: -2}},
		{"negative delay", Config{ChunkSize: 6, MaxConcurrent: 3, ChunkDelay: -time.Second}},
		{"negative rate", Config{ChunkSize: 6, MaxConcurrent: 3, FetchRate: -1}},
		{"negative burst", Config{ChunkSize: 6, MaxConcurrent: 3, FetchBurst: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.True(t, qerrors.IsInvalid(err))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "querykit.yaml")
	data := []byte("chunk_size: 8\nmax_concurrent: 4\nchunk_delay: 25ms\nfetch_rate: 100\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.ChunkSize)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, 25*time.Millisecond, cfg.ChunkDelay)
	assert.Equal(t, float64(100), cfg.FetchRate)
	// Burst defaulted because a rate was set
	assert.Equal(t, 1, cfg.FetchBurst)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: [oops"), 0o600))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.True(t, qerrors.IsInvalid(err))

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: -3"), 0o600))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.True(t, qerrors.IsInvalid(err))
}
