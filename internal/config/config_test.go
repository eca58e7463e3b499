package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Defaults()

	assert.Equal(t, "brain-games-app.appspot.com", c.Bucket)
	assert.Equal(t, "mini-games", c.Folder)
	assert.Equal(t, "service-account.json", c.CredentialsPath)
	assert.Equal(t, "mini-games", c.AssetsDir)
	assert.Equal(t, time.Hour, c.CacheMaxAge)
	assert.Equal(t, "public, max-age=3600", c.CacheControl())
	assert.NoError(t, c.Validate())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PUBLISH_BUCKET", "other-bucket")
	t.Setenv("PUBLISH_CACHE_MAX_AGE", "5m")
	t.Setenv("PUBLISH_CONCURRENCY", "4")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "other-bucket", c.Bucket)
	assert.Equal(t, "mini-games", c.Folder, "unset variables keep their defaults")
	assert.Equal(t, "public, max-age=300", c.CacheControl())
	assert.Equal(t, 4, c.Concurrency)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("PUBLISH_CONCURRENCY", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no bucket", func(c *Config) { c.Bucket = "" }, "bucket is required"},
		{"no folder", func(c *Config) { c.Folder = "" }, "folder is required"},
		{"zero max age", func(c *Config) { c.CacheMaxAge = 0 }, "cache max age"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestManifest(t *testing.T) {
	c := Defaults()
	c.AssetsDir = "assets"

	m, err := c.Manifest()
	require.NoError(t, err)
	assert.Len(t, m, 3)
	assert.Equal(t, filepath.Join("assets", "memory-match.html"), m[0].LocalPath)

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assets:\n  - name: a.html\n"), 0o644))
	c.ManifestPath = path

	m, err = c.Manifest()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html"}, m.Names())
}
