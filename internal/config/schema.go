package config

// Config represents the full sticky configuration
type Config struct {
	// Directory holding the database, images, lock and log files
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// Database path; empty means <data_dir>/sticky.db
	DBPath string `yaml:"db_path,omitempty" mapstructure:"db_path"`

	Images ImagesConfig `yaml:"images" mapstructure:"images"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ImagesConfig configures image storage
type ImagesConfig struct {
	// Directory for image files; empty means <data_dir>/images
	Dir                string `yaml:"dir,omitempty" mapstructure:"dir"`
	MaxDimension       int    `yaml:"max_dimension" mapstructure:"max_dimension"`
	Quality            int    `yaml:"quality" mapstructure:"quality"`
	ThumbnailCacheSize int    `yaml:"thumbnail_cache_size" mapstructure:"thumbnail_cache_size"`

	// Delete a task's image file when the task is deleted or its image replaced
	CascadeDelete bool `yaml:"cascade_delete" mapstructure:"cascade_delete"`
}

// LogConfig configures the debug log
type LogConfig struct {
	Debug bool   `yaml:"debug" mapstructure:"debug"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}
