package types

import "time"

// StepStatus is the result classification of a single executed step.
type StepStatus string

const (
	// StatusSuccess means the step performed its side effect.
	StatusSuccess StepStatus = "success"
	// StatusNoOp means the desired state already held and nothing was done.
	StatusNoOp StepStatus = "noop"
	// StatusFailed means the step failed but the pipeline continued
	// (advisory step).
	StatusFailed StepStatus = "failed"
	// StatusFatalFailed means the step failed and aborted the run.
	StatusFatalFailed StepStatus = "fatal"
)

// StepOutcome records the result of one executed step. Outcomes are
// append-only: once recorded in a RunReport they are never mutated.
type StepOutcome struct {
	StepName  string        `yaml:"step"`
	Status    StepStatus    `yaml:"status"`
	Detail    string        `yaml:"detail,omitempty"`
	Timestamp time.Time     `yaml:"timestamp"`
	Duration  time.Duration `yaml:"duration"`
}

// RunStatus is the overall disposition of a pipeline run.
type RunStatus string

const (
	// RunCompleted means no fatal step failed. Individual advisory steps
	// may still have failed; callers must inspect the outcomes.
	RunCompleted RunStatus = "completed"
	// RunAborted means a fatal step failed and the remaining steps were
	// not executed.
	RunAborted RunStatus = "aborted"
)

// RunReport is the ordered record of one pipeline run. It is owned by a
// single run and never shared between runs.
type RunReport struct {
	Status     RunStatus     `yaml:"status"`
	Outcomes   []StepOutcome `yaml:"outcomes"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at"`
}

// AbortCause returns the outcome that aborted the run, or nil for
// completed runs.
func (r *RunReport) AbortCause() *StepOutcome {
	if r.Status != RunAborted {
		return nil
	}
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == StatusFatalFailed {
			return &r.Outcomes[i]
		}
	}
	return nil
}

// Failures returns every outcome that did not succeed, fatal or advisory.
func (r *RunReport) Failures() []StepOutcome {
	var failed []StepOutcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed || o.Status == StatusFatalFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// ValidationResult is the captured verdict of one external validator
// invocation. Results are never cached; a fresh validation runs before
// every reload the validator guards.
type ValidationResult struct {
	Pass bool
	// Output is the validator's combined stdout/stderr, verbatim.
	Output string
}
