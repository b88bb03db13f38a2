// Package validate runs external configuration validators ahead of the
// destructive reloads they guard. The gate treats the validator as
// opaque: exit zero means pass, anything else means fail, and the
// combined output is captured verbatim either way.
package validate

import (
	"context"
	"os/exec"

	"github.com/raspiroman/camstack/pkg/logging"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/rs/zerolog"
)

// Runner executes an external command and returns its combined output.
// It exists so tests can substitute a fake validator.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Gate invokes external validators. Results are never cached: every
// guarded reload gets a fresh validation.
type Gate struct {
	runner Runner
	logger zerolog.Logger
}

// NewGate creates a gate that executes validators via os/exec.
func NewGate() *Gate {
	return NewGateWithRunner(execRunner{})
}

// NewGateWithRunner creates a gate using the given runner.
func NewGateWithRunner(r Runner) *Gate {
	return &Gate{
		runner: r,
		logger: logging.GetLogger("validate"),
	}
}

// Validate runs the validator command and captures its verdict. The
// command's combined stdout/stderr is preserved verbatim in the result;
// that text is the most actionable diagnostic a failed deployment has.
func (g *Gate) Validate(ctx context.Context, command []string) types.ValidationResult {
	if len(command) == 0 {
		return types.ValidationResult{Pass: false, Output: "no validator command configured"}
	}

	output, err := g.runner.CombinedOutput(ctx, command[0], command[1:]...)
	result := types.ValidationResult{
		Pass:   err == nil,
		Output: string(output),
	}

	g.logger.Debug().
		Strs("command", command).
		Bool("pass", result.Pass).
		Msg("Validator finished")
	if !result.Pass {
		g.logger.Warn().
			Strs("command", command).
			Str("output", result.Output).
			Msg("Validation failed")
	}

	return result
}
