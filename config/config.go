// SPDX-License-Identifier: GPL-2.0-or-later

// Package config holds the settings of the asset tools.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"kwark/image"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	// GameDir is searched for pak0.pak, pak1.pak, ...
	GameDir string `yaml:"game_dir"`
	// Pak is a single pack file, it takes precedence over GameDir.
	Pak         string    `yaml:"pak"`
	OutputDir   string    `yaml:"output_dir"`
	ImageFormat string    `yaml:"image_format"`
	ImageScale  int       `yaml:"image_scale"`
	EdgeFix     bool      `yaml:"edge_fix"`
	Listen      string    `yaml:"listen"`
	Log         LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func Default() *Config {
	return &Config{
		GameDir:     "id1",
		OutputDir:   "out",
		ImageFormat: "png",
		ImageScale:  1,
		Listen:      "localhost:8080",
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults overridden by the yaml file at path. An empty
// path only returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Save writes cfg as yaml to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.GameDir == "" && c.Pak == "" {
		return errors.Wrap(ErrInvalid, "neither game_dir nor pak set")
	}
	if _, err := image.ParseFormat(c.ImageFormat); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if c.ImageScale < 1 || c.ImageScale > 16 {
		return errors.Wrapf(ErrInvalid, "image_scale %d not in [1,16]", c.ImageScale)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(ErrInvalid, "log level %q", c.Log.Level)
	}
	return nil
}

// Format returns the parsed ImageFormat.
func (c *Config) Format() image.Format {
	f, err := image.ParseFormat(c.ImageFormat)
	if err != nil {
		return image.PNG
	}
	return f
}

func (c *Config) ImageOptions() image.Options {
	return image.Options{Scale: c.ImageScale, EdgeFix: c.EdgeFix}
}
