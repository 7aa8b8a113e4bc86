package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"XAI_API_KEY", "CAD_AGENT_MODEL", "CAD_AGENT_BASE_URL", "CAD_AGENT_JOURNAL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.x.ai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "grok-3-fast", cfg.LLM.Model)
	assert.Equal(t, time.Hour, cfg.Timeout())
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[llm]
model = "grok-4"
timeout_seconds = 30
temperature = 0.2

[journal]
enabled = false
path = ":memory:"

[log]
level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grok-4", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	require.NotNil(t, cfg.LLM.Temperature)
	assert.InDelta(t, 0.2, *cfg.LLM.Temperature, 0.0001)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, ":memory:", cfg.Journal.Path)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("XAI_API_KEY", "xai-test")
	t.Setenv("CAD_AGENT_MODEL", "grok-3-mini")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "xai-test", cfg.LLM.APIKey)
	assert.Equal(t, "grok-3-mini", cfg.LLM.Model)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[llm\nmodel = "), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.LLM.APIKey = "  "
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.LLM.APIKey = "key"
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Model = ""
	assert.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.LLM.Model = "grok-code"
	cfg.Journal.Path = "/tmp/j.db"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grok-code", loaded.LLM.Model)
	assert.Equal(t, "/tmp/j.db", loaded.Journal.Path)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("XAI_API_KEY")
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("XAI_API_KEY=from-dotenv\n"), 0o644))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "from-dotenv", os.Getenv("XAI_API_KEY"))
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "x.db"), expandHome("~/x.db"))
	assert.Equal(t, "/abs/x.db", expandHome("/abs/x.db"))
	assert.Equal(t, ":memory:", expandHome(":memory:"))
}
