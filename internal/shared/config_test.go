package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "playvault.db" {
			t.Errorf("expected database path playvault.db, got %s", config.Database.Path)
		}

		if config.Tokens.BaseURL != "http://localhost:5000" {
			t.Errorf("expected token service URL http://localhost:5000, got %s", config.Tokens.BaseURL)
		}

		if config.Sync.PageSize != 50 {
			t.Errorf("expected page size 50, got %d", config.Sync.PageSize)
		}

		if config.Sync.Timezone != "America/Recife" {
			t.Errorf("expected timezone America/Recife, got %s", config.Sync.Timezone)
		}

		if config.Sync.RequestTimeoutSecs != 30 {
			t.Errorf("expected request timeout 30s, got %d", config.Sync.RequestTimeoutSecs)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		content := `
[database]
path = "/tmp/custom.db"
max_open_conns = 5

[tokens]
base_url = "http://tokens.internal:9000"

[sync]
page_size = 25
timezone = "UTC"
rate_limit = 2.5
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/tmp/custom.db" {
			t.Errorf("expected custom database path, got %s", config.Database.Path)
		}
		if config.Tokens.BaseURL != "http://tokens.internal:9000" {
			t.Errorf("expected custom token URL, got %s", config.Tokens.BaseURL)
		}
		if config.Sync.PageSize != 25 {
			t.Errorf("expected page size 25, got %d", config.Sync.PageSize)
		}
		if config.Sync.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %f", config.Sync.RateLimit)
		}
	})

	t.Run("LoadConfigMissingFile", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("LoadConfigInvalidTOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("not [valid toml"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for invalid TOML")
		}
	})
}
