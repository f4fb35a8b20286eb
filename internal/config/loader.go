package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. STICKY_DATA_DIR
const EnvPrefix = "STICKY"

// DefaultPath returns the default config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".sticky", "config.yaml")
	}
	return filepath.Join(dir, "sticky", "config.yaml")
}

// Load reads the YAML file at path over the defaults and applies STICKY_*
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("images.dir", cfg.Images.Dir)
	v.SetDefault("images.max_dimension", cfg.Images.MaxDimension)
	v.SetDefault("images.quality", cfg.Images.Quality)
	v.SetDefault("images.thumbnail_cache_size", cfg.Images.ThumbnailCacheSize)
	v.SetDefault("images.cascade_delete", cfg.Images.CascadeDelete)
	v.SetDefault("log.debug", cfg.Log.Debug)
	v.SetDefault("log.file", cfg.Log.File)
}
