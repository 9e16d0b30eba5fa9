// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwark/image"
)

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, image.PNG, cfg.Format())
}

func TestLoadMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kwark.yaml")
	require.NoError(t, os.WriteFile(path, []byte("image_format: webp\nimage_scale: 4\nlog:\n  level: debug\n"), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "webp", cfg.ImageFormat)
	assert.Equal(t, 4, cfg.ImageScale)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, "id1", cfg.GameDir)
	assert.Equal(t, image.Options{Scale: 4}, cfg.ImageOptions())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("image_scale: [1"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "kwark.yaml")
	cfg := Default()
	cfg.Pak = "pak0.pak"
	cfg.EdgeFix = true
	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no source", func(c *Config) { c.GameDir = "" }},
		{"format", func(c *Config) { c.ImageFormat = "gif" }},
		{"scale", func(c *Config) { c.ImageScale = 0 }},
		{"level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
