// Package config loads camstack's declarative pipeline files. A pipeline
// file is an ordered list of [[step]] tables plus an optional [settings]
// table; the step list is the only configuration surface the engine has.
package config

import (
	"io/fs"
	"os"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/raspiroman/camstack/pkg/utils"
)

// stepConfig is the on-disk shape of one [[step]] table.
type stepConfig struct {
	Name      string   `toml:"name"`
	Kind      string   `toml:"kind"`
	Fatal     *bool    `toml:"fatal"`
	Src       string   `toml:"src"`
	Dst       string   `toml:"dst"`
	Path      string   `toml:"path"`
	Owner     string   `toml:"owner"`
	Group     string   `toml:"group"`
	Mode      string   `toml:"mode"`
	Recursive bool     `toml:"recursive"`
	Target    string   `toml:"target"`
	Desired   string   `toml:"desired"`
	Service   string   `toml:"service"`
	Action    string   `toml:"action"`
	Unit      string   `toml:"unit"`
	Command   []string `toml:"command"`
}

type pipelineFile struct {
	Steps []stepConfig `toml:"step"`
}

// LoadPipeline reads and parses the pipeline declaration at path.
func LoadPipeline(path string) ([]types.Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "read pipeline file %s", path)
	}
	return ParsePipeline(data)
}

// DefaultPipeline parses the embedded default pipeline.
func DefaultPipeline() ([]types.Step, error) {
	return ParsePipeline(defaultConfig)
}

// ParsePipeline decodes a pipeline file and validates every step.
func ParsePipeline(data []byte) ([]types.Step, error) {
	var pf pipelineFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "parse pipeline file")
	}
	if len(pf.Steps) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "pipeline declares no steps")
	}

	steps := make([]types.Step, 0, len(pf.Steps))
	for i, sc := range pf.Steps {
		step, err := buildStep(sc)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "step %d (%s)", i+1, sc.Name)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func buildStep(sc stepConfig) (types.Step, error) {
	if sc.Name == "" {
		return types.Step{}, errors.New(errors.ErrConfigValid, "step has no name")
	}

	kind := types.StepKind(sc.Kind)
	step := types.Step{
		Name:           sc.Name,
		Kind:           kind,
		FatalOnFailure: true,
		Recursive:      sc.Recursive,
	}

	mode, err := parseMode(sc.Mode)
	if err != nil {
		return types.Step{}, err
	}
	step.Mode = mode

	switch kind {
	case types.KindFileCopy:
		if sc.Src == "" || sc.Dst == "" {
			return types.Step{}, errors.New(errors.ErrConfigValid, "file-copy needs src and dst")
		}
		step.Source = utils.ExpandPath(sc.Src)
		step.Dest = utils.ExpandPath(sc.Dst)

	case types.KindEnsureDir, types.KindEnsureOwnership:
		if sc.Path == "" {
			return types.Step{}, errors.Newf(errors.ErrConfigValid, "%s needs path", kind)
		}
		step.Path = utils.ExpandPath(sc.Path)
		step.Owner = sc.Owner
		step.Group = sc.Group

	case types.KindSymlinkReconcile:
		if sc.Target == "" || sc.Desired == "" {
			return types.Step{}, errors.New(errors.ErrConfigValid, "symlink needs target and desired")
		}
		step.Symlink = types.SymlinkSpec{
			Target:  utils.ExpandPath(sc.Target),
			Desired: utils.ExpandPath(sc.Desired),
		}

	case types.KindServiceAction:
		verb := types.ServiceVerb(sc.Action)
		switch verb {
		case types.VerbInstallUnit:
			if sc.Service == "" || sc.Unit == "" {
				return types.Step{}, errors.New(errors.ErrConfigValid, "install-unit needs service and unit")
			}
			step.UnitFile = utils.ExpandPath(sc.Unit)
		case types.VerbReloadManager:
			// no service required
		case types.VerbEnable, types.VerbStart, types.VerbRestart, types.VerbReload, types.VerbStop:
			if sc.Service == "" {
				return types.Step{}, errors.Newf(errors.ErrConfigValid, "%s needs service", verb)
			}
		case types.VerbStatus:
			if sc.Service == "" {
				return types.Step{}, errors.New(errors.ErrConfigValid, "status needs service")
			}
			// Status probes are informational; they default to advisory.
			step.FatalOnFailure = false
		default:
			return types.Step{}, errors.Newf(errors.ErrConfigValid, "unknown service action %q", sc.Action)
		}
		step.Service = sc.Service
		step.Action = verb

	case types.KindExternalValidate, types.KindExternalCommand:
		if len(sc.Command) == 0 {
			return types.Step{}, errors.Newf(errors.ErrConfigValid, "%s needs command", kind)
		}
		step.Command = sc.Command

	default:
		return types.Step{}, errors.Newf(errors.ErrConfigValid, "unknown step kind %q", sc.Kind)
	}

	// An explicit fatal flag wins over every default.
	if sc.Fatal != nil {
		step.FatalOnFailure = *sc.Fatal
	}
	// A validator that tolerated its own failure would defeat the gate it
	// guards.
	if kind == types.KindExternalValidate && !step.FatalOnFailure {
		return types.Step{}, errors.New(errors.ErrConfigValid, "validate steps cannot set fatal = false")
	}

	return step, nil
}

func parseMode(s string) (fs.FileMode, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrConfigValid, "invalid mode %q", s)
	}
	return fs.FileMode(n), nil
}
