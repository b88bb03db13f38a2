package types

import "io/fs"

// StepKind identifies which action a step performs.
type StepKind string

const (
	KindFileCopy         StepKind = "file-copy"
	KindEnsureDir        StepKind = "ensure-dir"
	KindEnsureOwnership  StepKind = "ensure-ownership"
	KindSymlinkReconcile StepKind = "symlink"
	KindServiceAction    StepKind = "service"
	KindExternalValidate StepKind = "validate"
	KindExternalCommand  StepKind = "command"
)

// ServiceVerb is the operation a service step asks of the service controller.
type ServiceVerb string

const (
	VerbInstallUnit   ServiceVerb = "install-unit"
	VerbReloadManager ServiceVerb = "daemon-reload"
	VerbEnable        ServiceVerb = "enable"
	VerbStart         ServiceVerb = "start"
	VerbRestart       ServiceVerb = "restart"
	VerbReload        ServiceVerb = "reload"
	VerbStop          ServiceVerb = "stop"
	VerbStatus        ServiceVerb = "status"
)

// SymlinkSpec declares where a link lives and what it must point to.
type SymlinkSpec struct {
	// Target is the path of the link itself.
	Target string
	// Desired is the destination the link must resolve to.
	Desired string
}

// Step is one unit of work in a deployment pipeline. A step is immutable
// once constructed; only the fields relevant to its Kind are populated.
type Step struct {
	Name string
	Kind StepKind

	// FatalOnFailure controls the executor's fail-fast policy: when true
	// (the default for every kind except advisory status queries) a failed
	// step aborts the remaining pipeline.
	FatalOnFailure bool

	// KindFileCopy
	Source string
	Dest   string

	// KindEnsureDir, KindEnsureOwnership
	Path      string
	Owner     string
	Group     string
	Mode      fs.FileMode
	Recursive bool

	// KindSymlinkReconcile
	Symlink SymlinkSpec

	// KindServiceAction. UnitFile is the source path for install-unit.
	Service  string
	Action   ServiceVerb
	UnitFile string

	// KindExternalValidate, KindExternalCommand
	Command []string
}
