package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zkhudr/gemini-agent/infrastructure/config"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		settings, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if settings.Gemini.Model != "gemini-2.0-flash" {
			t.Errorf("Model = %q", settings.Gemini.Model)
		}
		if settings.Memory.Backend != "file" {
			t.Errorf("Backend = %q", settings.Memory.Backend)
		}
		if settings.Shell.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v", settings.Shell.Timeout)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		doc := `
gemini:
  model: gemini-1.5-pro
  max_tokens: 4096
memory:
  backend: redis
  redis:
    address: localhost:6379
logging:
  level: debug
`
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}

		settings, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if settings.Gemini.Model != "gemini-1.5-pro" || settings.Gemini.MaxTokens != 4096 {
			t.Errorf("Gemini = %+v", settings.Gemini)
		}
		if settings.Memory.Backend != "redis" || settings.Memory.Redis.Address != "localhost:6379" {
			t.Errorf("Memory = %+v", settings.Memory)
		}
		if settings.Logging.Level != "debug" {
			t.Errorf("Logging = %+v", settings.Logging)
		}
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		os.WriteFile(path, []byte("gemini: ["), 0o644)
		if _, err := config.Load(path); err == nil {
			t.Error("Load() accepted malformed YAML")
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-key")
		t.Setenv("GEMINI_MODEL", "gemini-env")

		settings, err := config.Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if settings.Gemini.APIKey != "env-key" || settings.Gemini.Model != "gemini-env" {
			t.Errorf("Gemini = %+v", settings.Gemini)
		}
	})
}
