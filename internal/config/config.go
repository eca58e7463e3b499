// Package config loads the publisher's settings from the environment. Flags
// defined by the commands take precedence over the values loaded here.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tomasbasham/minigame-publish/internal/credentials"
	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/storage"
)

// DefaultBucket is the Firebase Storage bucket of the client app.
const DefaultBucket = "brain-games-app.appspot.com"

// Config holds settings shared by every subcommand.
type Config struct {
	Bucket          string        `env:"PUBLISH_BUCKET"`
	Folder          string        `env:"PUBLISH_FOLDER"`
	CredentialsPath string        `env:"PUBLISH_CREDENTIALS"`
	AssetsDir       string        `env:"PUBLISH_ASSETS_DIR"`
	ManifestPath    string        `env:"PUBLISH_MANIFEST"`
	CacheMaxAge     time.Duration `env:"PUBLISH_CACHE_MAX_AGE"`
	Concurrency     int           `env:"PUBLISH_CONCURRENCY"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Bucket:          DefaultBucket,
		Folder:          storage.DefaultFolder,
		CredentialsPath: credentials.DefaultPath,
		AssetsDir:       manifest.DefaultAssetsDir,
		CacheMaxAge:     time.Hour,
		Concurrency:     1,
	}
}

// Load returns Defaults overridden by any PUBLISH_* environment variables.
func Load() (Config, error) {
	c := Defaults()
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// CacheControl renders CacheMaxAge as a Cache-Control header value.
func (c Config) CacheControl() string {
	return fmt.Sprintf("public, max-age=%d", int64(c.CacheMaxAge/time.Second))
}

// Manifest returns the manifest named by ManifestPath, or the compiled-in
// manifest when none is configured.
func (c Config) Manifest() (manifest.Manifest, error) {
	if c.ManifestPath == "" {
		return manifest.Default(c.AssetsDir), nil
	}
	return manifest.Load(c.ManifestPath, c.AssetsDir)
}

// Validate reports settings that would make every run fail.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Folder == "" {
		return fmt.Errorf("folder is required")
	}
	if c.CacheMaxAge <= 0 {
		return fmt.Errorf("cache max age must be positive, got %s", c.CacheMaxAge)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
