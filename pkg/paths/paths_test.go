package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/raspiroman/camstack/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFilePath_FlagWins(t *testing.T) {
	t.Setenv(paths.EnvConfig, "/env/camstack.toml")
	got := paths.ConfigFilePath("/flag/camstack.toml")
	assert.Equal(t, "/flag/camstack.toml", got)
}

func TestConfigFilePath_EnvBeatsDiscovery(t *testing.T) {
	t.Setenv(paths.EnvConfig, "/env/camstack.toml")
	got := paths.ConfigFilePath("")
	assert.Equal(t, "/env/camstack.toml", got)
}

func TestConfigFilePath_XDGDiscovery(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
	t.Setenv(paths.EnvConfig, "")

	configPath := filepath.Join(dir, "camstack", "camstack.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0644))

	got := paths.ConfigFilePath("")
	assert.Equal(t, configPath, got)
}

func TestConfigFilePath_NothingFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Setenv(paths.EnvConfig, "")

	wd := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(wd))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	assert.Empty(t, paths.ConfigFilePath(""))
}

func TestLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	xdg.Reload()

	assert.Equal(t, filepath.Join("/state", "camstack", "camstack.log"), paths.LogFilePath())
}
