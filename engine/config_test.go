package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadApplicationConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	defaults := DefaultApplicationConfig()
	assert.Equal(t, defaults, config)
}

func TestLoadApplicationConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
name = "Testbed"
start_width = 800
start_height = 600
watch_assets = false
log_level = "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadApplicationConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Testbed", config.Name)
	assert.Equal(t, uint32(800), config.StartWidth)
	assert.Equal(t, uint32(600), config.StartHeight)
	assert.False(t, config.WatchAssets)
	assert.Equal(t, "warn", config.LogLevel)

	// Unset keys keep their defaults.
	assert.Equal(t, DefaultApplicationConfig().ShaderDir, config.ShaderDir)
}

func TestLoadApplicationConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = [unclosed"), 0o644))

	_, err := LoadApplicationConfig(path)
	assert.Error(t, err)
}
