// Package config models burnup.yml, the optional per-workspace
// settings file. Everything in it has a default, so a missing file is
// not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working
// directory when no explicit path is given.
const DefaultFileName = "burnup.yml"

// Config models burnup.yml.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Chart struct {
		BufferDays   int `yaml:"buffer_days"`
		MinRangeDays int `yaml:"min_range_days"`
	} `yaml:"chart"`
	Annotations struct {
		GroupWindowDays int `yaml:"group_window_days"`
	} `yaml:"annotations"`
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{}
	cfg.Chart.BufferDays = 5
	cfg.Chart.MinRangeDays = 30
	cfg.Annotations.GroupWindowDays = 5
	return cfg
}

// Load reads the config file at path. A missing file yields the
// defaults; a present but malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return FromYAML(data)
}

// FromYAML parses config bytes, filling unset fields from defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	if c.Chart.BufferDays < 0 {
		return fmt.Errorf("chart.buffer_days must not be negative")
	}
	if c.Chart.MinRangeDays < 0 {
		return fmt.Errorf("chart.min_range_days must not be negative")
	}
	if c.Annotations.GroupWindowDays < 1 {
		return fmt.Errorf("annotations.group_window_days must be at least 1")
	}
	return nil
}
