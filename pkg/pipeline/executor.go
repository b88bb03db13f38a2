// Package pipeline executes an ordered list of deployment steps and
// produces a run report.
//
// Execution is strictly sequential: deployment steps carry implicit
// ordering dependencies (a unit file must exist before daemon-reload, a
// validator must pass before the reload it guards), so the executor never
// reorders or parallelizes, it only walks the declared list. Failure
// handling is two-tier: a fatal step's failure aborts the remaining
// pipeline, an advisory step's failure is recorded and execution
// continues. Nothing escapes the executor as a Go error; every result is
// a StepOutcome in the report.
package pipeline

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/filesystem"
	"github.com/raspiroman/camstack/pkg/fsops"
	"github.com/raspiroman/camstack/pkg/logging"
	"github.com/raspiroman/camstack/pkg/service"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/raspiroman/camstack/pkg/validate"
	"github.com/rs/zerolog"
)

// CommandRunner executes an external command step and returns its
// combined output.
type CommandRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Options contains configuration for the executor
type Options struct {
	FS         types.FS
	Controller service.Controller
	Gate       *validate.Gate
	Runner     CommandRunner
	DryRun     bool
	Logger     zerolog.Logger
}

// Executor runs deployment pipelines.
type Executor struct {
	fs     types.FS
	ctrl   service.Controller
	gate   *validate.Gate
	runner CommandRunner
	dryRun bool
	logger zerolog.Logger
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("pipeline")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = service.NewSystemd(service.Options{FS: fs})
	}
	gate := opts.Gate
	if gate == nil {
		gate = validate.NewGate()
	}
	runner := opts.Runner
	if runner == nil {
		runner = execRunner{}
	}

	return &Executor{
		fs:     fs,
		ctrl:   ctrl,
		gate:   gate,
		runner: runner,
		dryRun: opts.DryRun,
		logger: logger,
	}
}

// Run executes the steps strictly in order and returns the report. A
// fatal failure stops execution immediately; outcomes for the remaining
// steps are absent from the report and the run is marked aborted.
// Completed means only that no fatal step failed - advisory failures may
// still be present in the outcomes.
func (e *Executor) Run(ctx context.Context, steps []types.Step) *types.RunReport {
	report := &types.RunReport{
		Status:    types.RunCompleted,
		Outcomes:  make([]types.StepOutcome, 0, len(steps)),
		StartedAt: time.Now(),
	}

	for _, step := range steps {
		outcome := e.executeStep(ctx, step)
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.Status == types.StatusFatalFailed {
			e.logger.Error().
				Str("step", step.Name).
				Str("detail", outcome.Detail).
				Msg("Fatal step failed, aborting run")
			report.Status = types.RunAborted
			break
		}
	}

	report.FinishedAt = time.Now()
	e.logger.Info().
		Str("status", string(report.Status)).
		Int("steps", len(report.Outcomes)).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Run finished")
	return report
}

// executeStep dispatches one step and converts whatever happened into a
// StepOutcome. Errors are caught here, at the step boundary.
func (e *Executor) executeStep(ctx context.Context, step types.Step) types.StepOutcome {
	start := time.Now()

	e.logger.Debug().
		Str("step", step.Name).
		Str("kind", string(step.Kind)).
		Bool("dry_run", e.dryRun).
		Msg("Executing step")

	if e.dryRun {
		return types.StepOutcome{
			StepName:  step.Name,
			Status:    types.StatusNoOp,
			Detail:    "dry run - no changes made",
			Timestamp: start,
			Duration:  time.Since(start),
		}
	}

	changed, detail, err := e.dispatch(ctx, step)

	outcome := types.StepOutcome{
		StepName:  step.Name,
		Timestamp: start,
		Duration:  time.Since(start),
		Detail:    detail,
	}

	if err != nil {
		if outcome.Detail == "" {
			outcome.Detail = err.Error()
		}
		outcome.Status = types.StatusFailed
		// A precondition failure always needs an operator, and a rejected
		// validation must never let the guarded reload run, whatever the
		// step's declared tolerance.
		if step.FatalOnFailure ||
			errors.IsErrorCode(err, errors.ErrPrecondition) ||
			errors.IsErrorCode(err, errors.ErrValidation) {
			outcome.Status = types.StatusFatalFailed
		}
		e.logger.Error().
			Err(err).
			Str("step", step.Name).
			Str("status", string(outcome.Status)).
			Msg("Step failed")
		return outcome
	}

	if changed {
		outcome.Status = types.StatusSuccess
	} else {
		outcome.Status = types.StatusNoOp
	}
	e.logger.Info().
		Str("step", step.Name).
		Str("status", string(outcome.Status)).
		Dur("duration", outcome.Duration).
		Msg("Step finished")
	return outcome
}

// dispatch routes a step to its action and reports whether the host
// changed, an optional human-readable detail, and the failure if any.
func (e *Executor) dispatch(ctx context.Context, step types.Step) (bool, string, error) {
	switch step.Kind {
	case types.KindFileCopy:
		changed, err := fsops.CopyIfChanged(e.fs, step.Source, step.Dest)
		if err != nil {
			return false, "", err
		}
		if changed {
			return true, "copied " + step.Source + " to " + step.Dest, nil
		}
		return false, "destination already up to date", nil

	case types.KindEnsureDir:
		created, err := fsops.EnsureDirectory(e.fs, step.Path, step.Owner, step.Group, step.Mode)
		if err != nil {
			return false, "", err
		}
		if created {
			return true, "created " + step.Path, nil
		}
		return false, "directory present, ownership re-asserted", nil

	case types.KindEnsureOwnership:
		err := fsops.EnsureOwnership(e.fs, step.Path, step.Owner, step.Group, step.Mode, step.Recursive)
		if err != nil {
			return false, "", err
		}
		return true, "ownership applied to " + step.Path, nil

	case types.KindSymlinkReconcile:
		changed, err := fsops.ReconcileSymlink(e.fs, step.Symlink)
		if err != nil {
			return false, "", err
		}
		if changed {
			return true, step.Symlink.Target + " -> " + step.Symlink.Desired, nil
		}
		return false, "symlink already correct", nil

	case types.KindServiceAction:
		return e.dispatchService(ctx, step)

	case types.KindExternalValidate:
		result := e.gate.Validate(ctx, step.Command)
		if !result.Pass {
			// Detail carries the validator's diagnostic verbatim; it is
			// the most actionable text an aborted run can show.
			return false, result.Output, errors.New(errors.ErrValidation, "validator reported invalid configuration")
		}
		return true, result.Output, nil

	case types.KindExternalCommand:
		if len(step.Command) == 0 {
			return false, "", errors.Newf(errors.ErrStepInvalid, "step %s has no command", step.Name)
		}
		output, err := e.runner.CombinedOutput(ctx, step.Command[0], step.Command[1:]...)
		if err != nil {
			return false, strings.TrimSpace(string(output)), errors.Wrapf(err, errors.ErrInternal,
				"command %s failed", strings.Join(step.Command, " "))
		}
		return true, strings.TrimSpace(string(output)), nil

	default:
		return false, "", errors.Newf(errors.ErrStepInvalid, "unknown step kind %q", step.Kind)
	}
}

func (e *Executor) dispatchService(ctx context.Context, step types.Step) (bool, string, error) {
	switch step.Action {
	case types.VerbInstallUnit:
		changed, err := e.ctrl.InstallUnit(ctx, step.Service, step.UnitFile)
		if err != nil {
			return false, "", err
		}
		if changed {
			return true, "installed unit " + step.Service, nil
		}
		return false, "unit definition unchanged", nil

	case types.VerbReloadManager:
		if err := e.ctrl.ReloadManager(ctx); err != nil {
			return false, "", err
		}
		return true, "service manager reloaded", nil

	case types.VerbEnable:
		if err := e.ctrl.Enable(ctx, step.Service); err != nil {
			return false, "", err
		}
		return true, "enabled " + step.Service, nil

	case types.VerbStart:
		if err := e.ctrl.Start(ctx, step.Service); err != nil {
			return false, "", err
		}
		return true, "started " + step.Service, nil

	case types.VerbRestart:
		if err := e.ctrl.Restart(ctx, step.Service); err != nil {
			return false, "", err
		}
		return true, "restarted " + step.Service, nil

	case types.VerbReload:
		if err := e.ctrl.Reload(ctx, step.Service); err != nil {
			return false, "", err
		}
		return true, "reloaded " + step.Service, nil

	case types.VerbStop:
		if err := e.ctrl.Stop(ctx, step.Service); err != nil {
			return false, "", err
		}
		return true, "stopped " + step.Service, nil

	case types.VerbStatus:
		// Advisory probe: the snapshot itself never errors, but a
		// not-running service is reported as a (normally non-fatal)
		// failure so it shows up in the report.
		status := e.ctrl.QueryStatus(ctx, step.Service)
		if status == service.StatusRunning {
			return true, step.Service + " is running", nil
		}
		return false, "", errors.Newf(errors.ErrServiceControl, "%s is %s", step.Service, status)

	default:
		return false, "", errors.Newf(errors.ErrStepInvalid, "unknown service action %q", step.Action)
	}
}
