// Package config loads assistant settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the root configuration document.
type Settings struct {
	// ProjectPath is the project root for context aggregation and the
	// session/project memory scopes. Defaults to the working directory.
	ProjectPath string `yaml:"project_path"`

	Gemini  GeminiSettings  `yaml:"gemini"`
	Search  SearchSettings  `yaml:"search"`
	Memory  MemorySettings  `yaml:"memory"`
	Shell   ShellSettings   `yaml:"shell"`
	Logging LoggingSettings `yaml:"logging"`
}

// GeminiSettings configures the text-generation backend.
type GeminiSettings struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

// SearchSettings configures the web_search tool.
type SearchSettings struct {
	APIKey string `yaml:"api_key"` // Google Custom Search API key
	CSEID  string `yaml:"cse_id"`  // Custom Search Engine identifier
}

// MemorySettings selects and configures the memory backend.
type MemorySettings struct {
	// Backend is "file" (default) or "redis".
	Backend string `yaml:"backend"`

	// HomeDir overrides the root for the user and global scopes.
	// Defaults to the invoking user's home directory.
	HomeDir string `yaml:"home_dir"`

	Redis RedisSettings `yaml:"redis"`
}

// RedisSettings configures the redis memory backend.
type RedisSettings struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ShellSettings configures the bash_commands tool.
type ShellSettings struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingSettings configures structured logging.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns settings with sensible defaults.
func Default() Settings {
	wd, _ := os.Getwd()
	return Settings{
		ProjectPath: wd,
		Gemini: GeminiSettings{
			Model:     "gemini-2.0-flash",
			MaxTokens: 8192,
		},
		Memory: MemorySettings{
			Backend: "file",
		},
		Shell: ShellSettings{
			Timeout: 30 * time.Second,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads settings from path (optional) and applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (Settings, error) {
	settings := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Settings{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&settings)

	if settings.ProjectPath == "" {
		settings.ProjectPath, _ = os.Getwd()
	}
	if settings.Memory.HomeDir == "" {
		settings.Memory.HomeDir, _ = os.UserHomeDir()
	}
	return settings, nil
}

// applyEnv overrides file settings with environment variables.
func applyEnv(s *Settings) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		s.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		s.Gemini.Model = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		s.Search.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CSE_ID"); v != "" {
		s.Search.CSEID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		s.Memory.Backend = "redis"
		s.Memory.Redis.Address = v
	}
}
