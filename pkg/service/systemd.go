package service

import (
	"context"
	"os/exec"
	"strings"

	"github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/filesystem"
	"github.com/raspiroman/camstack/pkg/fsops"
	"github.com/raspiroman/camstack/pkg/logging"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultUnitDir is where installed unit definitions land.
const DefaultUnitDir = "/etc/systemd/system"

// Runner executes systemctl and returns its combined output. Tests
// substitute a fake.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Systemd is a Controller backed by systemctl.
type Systemd struct {
	runner  Runner
	fs      types.FS
	unitDir string
	logger  zerolog.Logger
}

// Options configures a Systemd controller. Zero values select the real
// systemctl, the OS filesystem and the default unit directory.
type Options struct {
	Runner  Runner
	FS      types.FS
	UnitDir string
}

// NewSystemd creates a systemctl-backed controller.
func NewSystemd(opts Options) *Systemd {
	runner := opts.Runner
	if runner == nil {
		runner = execRunner{}
	}
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	unitDir := opts.UnitDir
	if unitDir == "" {
		unitDir = DefaultUnitDir
	}
	return &Systemd{
		runner:  runner,
		fs:      fs,
		unitDir: unitDir,
		logger:  logging.GetLogger("service"),
	}
}

// InstallUnit copies the unit definition into the unit directory. The
// copy is content-addressed, so reinstalling an unchanged unit reports
// no change.
func (s *Systemd) InstallUnit(ctx context.Context, unitName, srcPath string) (bool, error) {
	dst := s.unitDir + "/" + unitName
	changed, err := fsops.CopyIfChanged(s.fs, srcPath, dst)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrServiceControl, "install unit %s", unitName)
	}
	if changed {
		s.logger.Info().Str("unit", unitName).Str("path", dst).Msg("Installed unit definition")
	}
	return changed, nil
}

// ReloadManager runs systemctl daemon-reload.
func (s *Systemd) ReloadManager(ctx context.Context) error {
	return s.systemctl(ctx, "daemon-reload")
}

// Enable runs systemctl enable.
func (s *Systemd) Enable(ctx context.Context, service string) error {
	return s.systemctl(ctx, "enable", service)
}

// Start runs systemctl start.
func (s *Systemd) Start(ctx context.Context, service string) error {
	return s.systemctl(ctx, "start", service)
}

// Restart runs systemctl restart.
func (s *Systemd) Restart(ctx context.Context, service string) error {
	return s.systemctl(ctx, "restart", service)
}

// Reload runs systemctl reload.
func (s *Systemd) Reload(ctx context.Context, service string) error {
	return s.systemctl(ctx, "reload", service)
}

// Stop runs systemctl stop.
func (s *Systemd) Stop(ctx context.Context, service string) error {
	return s.systemctl(ctx, "stop", service)
}

// QueryStatus asks systemctl is-active and maps the answer to a
// snapshot. It never fails: anything it cannot interpret is unknown.
func (s *Systemd) QueryStatus(ctx context.Context, service string) Status {
	output, err := s.runner.CombinedOutput(ctx, "systemctl", "is-active", service)
	state := strings.TrimSpace(string(output))

	switch state {
	case "active", "activating":
		return StatusRunning
	case "inactive", "failed", "deactivating":
		return StatusStopped
	}
	if err != nil {
		s.logger.Debug().Err(err).Str("service", service).Str("state", state).Msg("Status query inconclusive")
	}
	return StatusUnknown
}

func (s *Systemd) systemctl(ctx context.Context, args ...string) error {
	output, err := s.runner.CombinedOutput(ctx, "systemctl", args...)
	if err != nil {
		return errors.Wrapf(err, errors.ErrServiceControl,
			"systemctl %s: %s", strings.Join(args, " "), strings.TrimSpace(string(output)))
	}
	s.logger.Debug().Strs("args", args).Msg("systemctl succeeded")
	return nil
}
