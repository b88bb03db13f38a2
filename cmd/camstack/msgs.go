package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "An idempotent deployer for the Raspberry Pi webcam stack"
	MsgDeployShort    = "Run the deployment pipeline"
	MsgStatusShort    = "Show service status for every service the pipeline touches"
	MsgGenConfigShort = "Print the default pipeline configuration"
	MsgVersionShort   = "Print version information"

	// Status messages
	MsgDryRunNotice  = "\nDRY RUN MODE - No changes were made"
	MsgNoConfigFound = "No pipeline file found, using the built-in default pipeline"
)

// MsgRootLong is the root command help text
const MsgRootLong = `camstack deploys a small webcam stack onto a single host: it publishes
the static site, installs and restarts the watcher service, reconciles
the upload symlink, and reloads nginx and vsftpd behind a config
validation gate.

Every step is idempotent - re-running a deployment that is already in
the desired state changes nothing and reports no-ops.`

// MsgDeployLong is the deploy command help text
const MsgDeployLong = `Deploy runs the pipeline declared in the camstack.toml file (or the
built-in default pipeline when no file is found).

Steps run strictly in order. A fatal step failure aborts the run and
the exit code is non-zero; advisory failures (such as service status
probes) are reported but do not abort.`
