// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyplan/academyplan-mcp/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), *cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[engine]
language_cache_size = 32
review_threshold = 0.75
alternative_on_shortfall = true

[log]
mode = "production"

[output]
format = "ics"
timezone = "Europe/Madrid"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Engine.LanguageCacheSize)
	assert.Equal(t, 0.75, cfg.Engine.ReviewThreshold)
	assert.True(t, cfg.Engine.AlternativeOnShortfall)
	assert.Equal(t, "production", cfg.Log.Mode)
	assert.Equal(t, "ics", cfg.Output.Format)
	assert.Equal(t, "Europe/Madrid", cfg.Output.Timezone)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "[log]\nmode = \"production\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Engine.LanguageCacheSize)
	assert.Equal(t, 0.6, cfg.Engine.ReviewThreshold)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := config.Load(writeConfig(t, "[engine\nlanguage_cache_size = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ACADEMYPLAN_LOG_MODE", "production")
	t.Setenv("ACADEMYPLAN_CACHE_SIZE", "8")
	t.Setenv("ACADEMYPLAN_FORMAT", "yaml")
	t.Setenv("ACADEMYPLAN_TIMEZONE", "America/New_York")

	cfg, err := config.Load(writeConfig(t, "[output]\nformat = \"ics\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Log.Mode)
	assert.Equal(t, 8, cfg.Engine.LanguageCacheSize)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "America/New_York", cfg.Output.Timezone)
}

func TestLoad_InvalidCacheSizeIgnored(t *testing.T) {
	t.Setenv("ACADEMYPLAN_CACHE_SIZE", "-3")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Engine.LanguageCacheSize)
}

func TestConfigPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := config.ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "academyplan", "config.toml"), path)
}

func TestLocation(t *testing.T) {
	cfg := config.DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Output.Timezone = ""
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Output.Timezone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}
