package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/raspiroman/camstack/pkg/errors"
)

// Settings are the engine-level knobs that apply to every pipeline run.
// They merge in layers: embedded defaults, then the pipeline file's
// [settings] table, then CAMSTACK_* environment variables.
type Settings struct {
	// UnitDir is where install-unit steps place unit definitions.
	UnitDir string `koanf:"unit_dir"`
}

// LoadSettings loads settings with the layered override order. path may
// be empty, in which case only defaults and environment apply.
func LoadSettings(path string) (Settings, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigLoad, "load embedded defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return Settings{}, errors.Wrapf(err, errors.ErrConfigLoad, "load config from %s", path)
			}
		}
	}

	// CAMSTACK_SETTINGS_UNIT_DIR overrides settings.unit_dir
	envProvider := env.Provider("CAMSTACK_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "CAMSTACK_"))
		return strings.Replace(key, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigLoad, "load environment overrides")
	}

	var settings Settings
	if err := k.Unmarshal("settings", &settings); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigParse, "unmarshal settings")
	}
	return settings, nil
}
