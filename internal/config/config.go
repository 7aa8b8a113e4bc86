// Package config handles cad-agent configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no language-model credential is configured.
var ErrMissingAPIKey = errors.New("XAI_API_KEY environment variable is required")

// Config is the main configuration.
type Config struct {
	LLM     LLMConfig     `toml:"llm"`
	Journal JournalConfig `toml:"journal"`
	Log     LogConfig     `toml:"log"`
}

// LLMConfig configures the language-model collaborator.
type LLMConfig struct {
	BaseURL        string   `toml:"base_url"`
	Model          string   `toml:"model"`
	APIKey         string   `toml:"api_key"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	Temperature    *float32 `toml:"temperature"`
}

// JournalConfig configures the turn journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // ":memory:" keeps it in-process
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".cad-agent")

	return &Config{
		LLM: LLMConfig{
			BaseURL:        "https://api.x.ai/v1",
			Model:          "grok-3-fast",
			TimeoutSeconds: 3600,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "journal.db"),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the config file location: $CAD_AGENT_CONFIG or ~/.cad-agent/config.toml.
func DefaultPath() string {
	if env := os.Getenv("CAD_AGENT_CONFIG"); env != "" {
		return env
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cad-agent", "config.toml")
}

// LoadDotEnv loads variables from .env files without overriding the environment.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load loads the configuration from the given path and applies environment
// overrides. If the file doesn't exist, defaults are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	cfg.applyEnv()
	cfg.Journal.Path = expandHome(cfg.Journal.Path)

	return cfg, nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(c)
}

// Validate reports whether a chat session can be built from c.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	return nil
}

// Timeout returns the per-request timeout of the language model.
func (c *Config) Timeout() time.Duration {
	if c.LLM.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) applyEnv() {
	if v := os.Getenv("XAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("CAD_AGENT_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("CAD_AGENT_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("CAD_AGENT_JOURNAL"); v != "" {
		c.Journal.Path = v
	}
}

// expandHome expands a leading ~ in p.
func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, p[1:])
	}
	return p
}
