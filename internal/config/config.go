package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete LexAI client configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// BackendConfig controls how the client reaches the LexAI API
type BackendConfig struct {
	// URL is the base URL of the backend, without the /api suffix (default: "http://localhost:8001")
	URL string `mapstructure:"url" yaml:"url"`
	// TimeoutSeconds bounds every request, including reading the response body (default: 30)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Storage backends
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// StorageConfig controls where the session token, user record and selected
// category are persisted
type StorageConfig struct {
	// Backend is one of "file", "memory" or "redis" (default: "file").
	// "memory" forgets the session when the process exits.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Dir is the directory used by the file backend and for the log file.
	// If empty, defaults to $XDG_DATA_HOME/lexai or ~/.local/share/lexai.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// RedisURL is a redis:// URL used when Backend is "redis"
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
	// RedisPrefix namespaces keys so several profiles can share one server (default: "lexai:")
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// SidebarOpen controls whether the sidebar starts expanded (default: true)
	SidebarOpen bool `mapstructure:"sidebar_open" yaml:"sidebar_open"`
	// SidebarWidth is the width of the expanded sidebar in columns (default: 28, min: 20, max: 60)
	SidebarWidth int `mapstructure:"sidebar_width" yaml:"sidebar_width"`
	// RecentLimit is how many cases and conversations the dashboard lists (default: 5)
	RecentLimit int `mapstructure:"recent_limit" yaml:"recent_limit"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging to the data directory is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "http://localhost:8001",
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			Backend:     StorageFile,
			Dir:         "",
			RedisURL:    "redis://localhost:6379/0",
			RedisPrefix: "lexai:",
		},
		TUI: TUIConfig{
			SidebarOpen:  true,
			SidebarWidth: 28,
			RecentLimit:  5,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Timeout returns the request timeout as a time.Duration
func (c *BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveDir returns the directory the file store and log file live in.
func (s *StorageConfig) ResolveDir() string {
	if s.Dir != "" {
		return s.Dir
	}
	return DataDir()
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Backend defaults
	viper.SetDefault("backend.url", defaults.Backend.URL)
	viper.SetDefault("backend.timeout_seconds", defaults.Backend.TimeoutSeconds)

	// Storage defaults
	viper.SetDefault("storage.backend", defaults.Storage.Backend)
	viper.SetDefault("storage.dir", defaults.Storage.Dir)
	viper.SetDefault("storage.redis_url", defaults.Storage.RedisURL)
	viper.SetDefault("storage.redis_prefix", defaults.Storage.RedisPrefix)

	// TUI defaults
	viper.SetDefault("tui.sidebar_open", defaults.TUI.SidebarOpen)
	viper.SetDefault("tui.sidebar_width", defaults.TUI.SidebarWidth)
	viper.SetDefault("tui.recent_limit", defaults.TUI.RecentLimit)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lexai")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lexai"
	}
	return filepath.Join(home, ".config", "lexai")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the default directory for persisted session state and logs
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "lexai")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lexai"
	}
	return filepath.Join(home, ".local", "share", "lexai")
}

// ValidStorageBackends returns the list of valid storage.backend values
func ValidStorageBackends() []string {
	return []string{StorageFile, StorageMemory, StorageRedis}
}
