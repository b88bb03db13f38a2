package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raspiroman/camstack/pkg/config"
	"github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePipeline_FullExample(t *testing.T) {
	data := []byte(`
[[step]]
name = "web root"
kind = "ensure-dir"
path = "/var/www/webcam"
owner = "www-data"
group = "www-data"
mode = "0775"

[[step]]
name = "publish index"
kind = "file-copy"
src = "/opt/site/index.html"
dst = "/var/www/webcam/index.html"

[[step]]
name = "upload symlink"
kind = "symlink"
target = "/var/log/webcam"
desired = "/srv/webcam/upload"

[[step]]
name = "validate nginx"
kind = "validate"
command = ["nginx", "-t"]

[[step]]
name = "reload nginx"
kind = "service"
action = "reload"
service = "nginx"

[[step]]
name = "probe"
kind = "service"
action = "status"
service = "nginx"
`)

	steps, err := config.ParsePipeline(data)
	require.NoError(t, err)
	require.Len(t, steps, 6)

	assert.Equal(t, types.KindEnsureDir, steps[0].Kind)
	assert.Equal(t, os.FileMode(0775), steps[0].Mode)
	assert.Equal(t, "www-data", steps[0].Owner)
	assert.True(t, steps[0].FatalOnFailure, "steps default to fatal")

	assert.Equal(t, "/opt/site/index.html", steps[1].Source)

	assert.Equal(t, "/var/log/webcam", steps[2].Symlink.Target)
	assert.Equal(t, "/srv/webcam/upload", steps[2].Symlink.Desired)

	assert.Equal(t, []string{"nginx", "-t"}, steps[3].Command)

	assert.Equal(t, types.VerbReload, steps[4].Action)
	assert.Equal(t, "nginx", steps[4].Service)

	assert.Equal(t, types.VerbStatus, steps[5].Action)
	assert.False(t, steps[5].FatalOnFailure, "status probes default to advisory")
}

func TestParsePipeline_ExplicitFatalOverride(t *testing.T) {
	data := []byte(`
[[step]]
name = "optional cleanup"
kind = "command"
command = ["rm", "-f", "/tmp/stale"]
fatal = false

[[step]]
name = "strict probe"
kind = "service"
action = "status"
service = "nginx"
fatal = true
`)

	steps, err := config.ParsePipeline(data)
	require.NoError(t, err)
	assert.False(t, steps[0].FatalOnFailure)
	assert.True(t, steps[1].FatalOnFailure, "explicit fatal beats the status default")
}

func TestParsePipeline_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no steps", ``},
		{"missing name", "[[step]]\nkind = \"command\"\ncommand = [\"true\"]"},
		{"unknown kind", "[[step]]\nname = \"x\"\nkind = \"teleport\""},
		{"file-copy without dst", "[[step]]\nname = \"x\"\nkind = \"file-copy\"\nsrc = \"/a\""},
		{"symlink without desired", "[[step]]\nname = \"x\"\nkind = \"symlink\"\ntarget = \"/a\""},
		{"service without name", "[[step]]\nname = \"x\"\nkind = \"service\"\naction = \"reload\""},
		{"unknown action", "[[step]]\nname = \"x\"\nkind = \"service\"\naction = \"explode\"\nservice = \"nginx\""},
		{"validate without command", "[[step]]\nname = \"x\"\nkind = \"validate\""},
		{"validate marked tolerant", "[[step]]\nname = \"x\"\nkind = \"validate\"\ncommand = [\"nginx\", \"-t\"]\nfatal = false"},
		{"bad mode", "[[step]]\nname = \"x\"\nkind = \"ensure-dir\"\npath = \"/a\"\nmode = \"99z\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParsePipeline([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
		})
	}
}

func TestDefaultPipeline(t *testing.T) {
	steps, err := config.DefaultPipeline()
	require.NoError(t, err)
	require.NotEmpty(t, steps)

	// The embedded pipeline must gate the nginx reload behind nginx -t
	validateIdx, reloadIdx := -1, -1
	for i, s := range steps {
		if s.Kind == types.KindExternalValidate {
			validateIdx = i
		}
		if s.Kind == types.KindServiceAction && s.Action == types.VerbReload && s.Service == "nginx" {
			reloadIdx = i
		}
	}
	require.GreaterOrEqual(t, validateIdx, 0)
	require.GreaterOrEqual(t, reloadIdx, 0)
	assert.Less(t, validateIdx, reloadIdx, "validation must precede the reload it guards")
}

func TestLoadPipeline_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camstack.toml")
	content := "[[step]]\nname = \"noop\"\nkind = \"command\"\ncommand = [\"true\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	steps, err := config.LoadPipeline(path)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "noop", steps[0].Name)
}

func TestLoadPipeline_MissingFile(t *testing.T) {
	_, err := config.LoadPipeline(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoadSettings(t *testing.T) {
	settings, err := config.LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "/etc/systemd/system", settings.UnitDir)
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	t.Setenv("CAMSTACK_SETTINGS_UNIT_DIR", "/usr/lib/systemd/system")

	settings, err := config.LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/systemd/system", settings.UnitDir)
}

func TestLoadSettings_FileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camstack.toml")
	content := "[settings]\nunit_dir = \"/custom/units\"\n\n[[step]]\nname = \"noop\"\nkind = \"command\"\ncommand = [\"true\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	settings, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/custom/units", settings.UnitDir)
}
