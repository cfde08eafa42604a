// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Engine EngineConfig `toml:"engine"`
	Log    LogConfig    `toml:"log"`
	Output OutputConfig `toml:"output"`
}

type EngineConfig struct {
	LanguageCacheSize int     `toml:"language_cache_size"`
	ReviewThreshold   float64 `toml:"review_threshold"`

	// AlternativeOnShortfall re-runs extraction with the other strategies when
	// fewer weeks than expected were found.
	AlternativeOnShortfall bool `toml:"alternative_on_shortfall"`
}

type LogConfig struct {
	Mode string `toml:"mode"` // "development" | "production"
}

type OutputConfig struct {
	Format   string `toml:"format"` // "json" | "yaml" | "ics"
	Timezone string `toml:"timezone"`
}

func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			LanguageCacheSize: 256,
			ReviewThreshold:   0.6,
		},
		Log: LogConfig{
			Mode: "development",
		},
		Output: OutputConfig{
			Format:   "json",
			Timezone: "UTC",
		},
	}
}

func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "academyplan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "academyplan"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path, or the default config path when path is empty. A missing
// file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ACADEMYPLAN_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("ACADEMYPLAN_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Engine.LanguageCacheSize = n
		}
	}
	if v := os.Getenv("ACADEMYPLAN_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("ACADEMYPLAN_TIMEZONE"); v != "" {
		cfg.Output.Timezone = v
	}
}

// Location resolves the configured output timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Output.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Output.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Output.Timezone, err)
	}
	return loc, nil
}
