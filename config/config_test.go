package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesCanonicalGeometry(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 32, cfg.PageSize)
	assert.Equal(t, 4096, cfg.BlockSize)
	assert.Equal(t, 65536, cfg.FlashSize)
	assert.Equal(t, 2, cfg.BlockTotal)
	assert.Equal(t, "memory", cfg.BackingDev)
	assert.NoError(t, cfg.Geometry().Validate())
}

func TestLoadOverlaysOntoDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
backing_device = "eeprom.bin"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eeprom.bin", cfg.BackingDev)
	assert.Equal(t, 32, cfg.PageSize) // untouched field keeps the default
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}
