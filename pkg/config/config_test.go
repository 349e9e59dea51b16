package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 300, cfg.Layout.MaxSteps)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  read_timeout: 5s
layout:
  width: 640
  height: 480
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	// Unset fields keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 640.0, cfg.Layout.Width)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("ATLAS_ADDR", ":7070")
	t.Setenv("ATLAS_LAYOUT_SEED", "99")
	t.Setenv("ATLAS_LAYOUT_MAX_STEPS", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, int64(99), cfg.Layout.Seed)
	// Malformed env values leave the default alone.
	assert.Equal(t, 300, cfg.Layout.MaxSteps)
}

func TestInvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: loud
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
