package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default backend config
	if cfg.Backend.URL != "http://localhost:8001" {
		t.Errorf("Backend.URL = %q, want %q", cfg.Backend.URL, "http://localhost:8001")
	}
	if cfg.Backend.TimeoutSeconds != 30 {
		t.Errorf("Backend.TimeoutSeconds = %d, want 30", cfg.Backend.TimeoutSeconds)
	}

	// Verify default storage config
	if cfg.Storage.Backend != StorageFile {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, StorageFile)
	}
	if cfg.Storage.Dir != "" {
		t.Errorf("Storage.Dir = %q, want empty", cfg.Storage.Dir)
	}

	// Verify default TUI config
	if !cfg.TUI.SidebarOpen {
		t.Error("TUI.SidebarOpen should be true by default")
	}
	if cfg.TUI.RecentLimit != 5 {
		t.Errorf("TUI.RecentLimit = %d, want 5", cfg.TUI.RecentLimit)
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestBackendConfig_Timeout(t *testing.T) {
	tests := []struct {
		seconds  int
		expected time.Duration
	}{
		{30, 30 * time.Second},
		{1, time.Second},
		{120, 2 * time.Minute},
	}

	for _, tt := range tests {
		cfg := BackendConfig{TimeoutSeconds: tt.seconds}
		if got := cfg.Timeout(); got != tt.expected {
			t.Errorf("Timeout() with %d = %v, want %v", tt.seconds, got, tt.expected)
		}
	}
}

func TestStorageConfig_ResolveDir(t *testing.T) {
	t.Run("explicit dir wins", func(t *testing.T) {
		s := StorageConfig{Dir: "/srv/lexai"}
		if got := s.ResolveDir(); got != "/srv/lexai" {
			t.Errorf("ResolveDir() = %q, want %q", got, "/srv/lexai")
		}
	})

	t.Run("falls back to data dir", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "/custom/data")
		s := StorageConfig{}
		if got := s.ResolveDir(); got != "/custom/data/lexai" {
			t.Errorf("ResolveDir() = %q, want %q", got, "/custom/data/lexai")
		}
	})
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/lexai"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "lexai")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/lexai/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".local", "share", "lexai")
	if got := DataDir(); got != expected {
		t.Errorf("DataDir() = %q, want %q", got, expected)
	}
}

func TestGet(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Backend.URL != "http://localhost:8001" {
		t.Errorf("Get().Backend.URL = %q, want default", cfg.Backend.URL)
	}
}

func TestLoad(t *testing.T) {
	t.Run("reads overrides", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		SetDefaults()

		viper.Set("backend.url", "https://api.lexai.es")
		viper.Set("storage.backend", "memory")
		viper.Set("tui.sidebar_open", false)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Backend.URL != "https://api.lexai.es" {
			t.Errorf("Backend.URL = %q", cfg.Backend.URL)
		}
		if cfg.Storage.Backend != StorageMemory {
			t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
		}
		if cfg.TUI.SidebarOpen {
			t.Error("TUI.SidebarOpen should be false")
		}
		// Untouched keys keep their defaults
		if cfg.Backend.TimeoutSeconds != 30 {
			t.Errorf("Backend.TimeoutSeconds = %d, want 30", cfg.Backend.TimeoutSeconds)
		}
	})

	t.Run("returns validation errors", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		SetDefaults()

		viper.Set("storage.backend", "sqlite")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() should fail for an unknown storage backend")
		}
		verrs, ok := err.(ValidationErrors)
		if !ok {
			t.Fatalf("Load() error type = %T, want ValidationErrors", err)
		}
		if len(verrs) != 1 || verrs[0].Field != "storage.backend" {
			t.Errorf("unexpected validation errors: %v", verrs)
		}
	})

	t.Run("Get falls back to defaults on invalid config", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		SetDefaults()

		viper.Set("backend.timeout_seconds", -1)

		cfg := Get()
		if cfg.Backend.TimeoutSeconds != 30 {
			t.Errorf("Get() should fall back to defaults, got timeout %d", cfg.Backend.TimeoutSeconds)
		}
	})
}

func TestValidStorageBackends(t *testing.T) {
	backends := ValidStorageBackends()
	expected := []string{"file", "memory", "redis"}

	if len(backends) != len(expected) {
		t.Fatalf("ValidStorageBackends() returned %d items, want %d", len(backends), len(expected))
	}
	for i, b := range expected {
		if backends[i] != b {
			t.Errorf("ValidStorageBackends()[%d] = %q, want %q", i, backends[i], b)
		}
	}
}
