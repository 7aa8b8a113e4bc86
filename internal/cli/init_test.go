package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/cad-agent/internal/config"
)

func TestInitCommand(t *testing.T) {
	out := execute(t, "", "init", "--force=false")
	path := strings.TrimPrefix(strings.TrimSpace(out), "Wrote ")
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "[journal]")

	for _, env := range []string{"XAI_API_KEY", "CAD_AGENT_MODEL", "CAD_AGENT_BASE_URL", "CAD_AGENT_JOURNAL"} {
		t.Setenv(env, "")
	}
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestWriteDefaultConfig_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644))

	err := writeDefaultConfig(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, _ := os.ReadFile(path)
	assert.Equal(t, "[log]\nlevel = \"debug\"\n", string(data), "config must be left untouched")

	require.NoError(t, writeDefaultConfig(path, true))
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), `level = "warn"`)
}
