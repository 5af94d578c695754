package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
)

const testYAML = `
port: "9090"
env: "test"

auth:
  enable_verification: false

database:
  host: "db.internal"
  port: 5433
  user: "yard"
  database: "yard_test"

ai:
  text_model: "gpt-4"
  image_count: 2

storage:
  bucket: "yard-test-assets"
`

func writeTestConfig(t *testing.T, contents string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Chdir(dir)
}

func TestLoad(t *testing.T) {
	writeTestConfig(t, testYAML)

	cfg, err := Load("1.0.0-test")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Version != "1.0.0-test" {
		t.Errorf("expected injected version, got %q", cfg.Version)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:9090" {
		t.Errorf("expected derived base URL, got %q", cfg.BaseURL)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected database host from yaml, got %q", cfg.Database.Host)
	}
	if cfg.AI.ImageCount != 2 {
		t.Errorf("expected image_count 2, got %d", cfg.AI.ImageCount)
	}
	if cfg.Storage.Bucket != "yard-test-assets" {
		t.Errorf("expected bucket from yaml, got %q", cfg.Storage.Bucket)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	writeTestConfig(t, testYAML)
	t.Setenv("PORT", "7070")
	t.Setenv("PGHOST", "env-db")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != "7070" {
		t.Errorf("expected env port to win, got %q", cfg.Port)
	}
	if cfg.Database.Host != "env-db" {
		t.Errorf("expected env database host to win, got %q", cfg.Database.Host)
	}
	if cfg.AI.APIKey != "sk-test" {
		t.Error("expected API key from environment")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := Load("dev"); err == nil {
		t.Error("expected error when config.yaml is absent")
	}
}

func TestAIConfig_Validate(t *testing.T) {
	cfg := &AIConfig{Endpoint: "https://api.openai.com/v1"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error without API key")
	}
	var confErr *apperrors.ConfigurationError
	if !errors.As(err, &confErr) || confErr.Setting != "OPENAI_API_KEY" {
		t.Errorf("expected ConfigurationError for OPENAI_API_KEY, got %v", err)
	}

	cfg.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestStorageConfig_Validate(t *testing.T) {
	cfg := &StorageConfig{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without bucket")
	}

	cfg.Bucket = "assets"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "yard",
		Password: "secret",
		Database: "yard_db",
		SSLMode:  "disable",
	}

	got := cfg.ConnectionString()
	want := "host=localhost port=5432 user=yard password=secret dbname=yard_db sslmode=disable"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
