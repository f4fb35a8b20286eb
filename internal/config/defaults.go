package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dori/sticky/internal/db"
	"github.com/dori/sticky/internal/images"
	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: db.DefaultDataDir(),
		Images: ImagesConfig{
			MaxDimension:       images.DefaultMaxDimension,
			Quality:            images.DefaultQuality,
			ThumbnailCacheSize: images.DefaultThumbnailCacheSize,
		},
	}
}

// DBFile returns the database path, defaulting into the data directory
func (c *Config) DBFile() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "sticky.db")
}

// ImagesDir returns the image directory, defaulting into the data directory
func (c *Config) ImagesDir() string {
	if c.Images.Dir != "" {
		return c.Images.Dir
	}
	return filepath.Join(c.DataDir, "images")
}

// LogFile returns the debug log path, defaulting into the data directory
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "sticky.log")
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	header := []byte("# sticky configuration\n# Environment variables override these values, e.g. STICKY_LOG_DEBUG=true\n")
	return os.WriteFile(path, append(header, data...), 0644)
}
