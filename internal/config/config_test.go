package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parl-lang/parlc/internal/config"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.HexLower, cfg.HexCase)
	assert.False(t, cfg.AllowFloatMod)
	assert.Empty(t, cfg.BuiltinAliases)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".parlrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidYAML(t *testing.T) {
	path := writeConfig(t, "hex_case: upper\nallow_float_mod: true\nbuiltin_aliases:\n  px: __write\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.HexUpper, cfg.HexCase)
	assert.True(t, cfg.AllowFloatMod)
	assert.Equal(t, "__write", cfg.BuiltinAliases["px"])
}

func TestLoadInvalidHexCaseFallsBackToLower(t *testing.T) {
	path := writeConfig(t, "hex_case: sideways\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.HexLower, cfg.HexCase)
}

func TestLoadMalformedYAMLReturnsError(t *testing.T) {
	path := writeConfig(t, "hex_case: [this, is, not, a, scalar\n")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestDefaultHasNoAliases(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, config.HexLower, cfg.HexCase)
	assert.False(t, cfg.AllowFloatMod)
	assert.Nil(t, cfg.BuiltinAliases)
}
