// Package service controls long-running services on the target host.
// The Controller interface covers the capability set the deployment
// pipeline needs; the systemd implementation shells out to systemctl.
package service

import "context"

// Status is a point-in-time snapshot of a service's state.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusUnknown Status = "unknown"
)

// Controller is the interface to one process-supervision system.
//
// Reload, Restart, Enable and Start return an error when the supervisor
// rejects the request; how that error affects the pipeline is decided by
// the step's fatal flag, not here. QueryStatus never returns an error:
// it is consumed only by advisory steps and always yields a snapshot.
type Controller interface {
	// InstallUnit places a unit definition where the supervisor will
	// find it. It reports whether the definition changed.
	InstallUnit(ctx context.Context, unitName, srcPath string) (bool, error)

	// ReloadManager makes the supervisor re-read unit definitions
	// (systemd's daemon-reload).
	ReloadManager(ctx context.Context) error

	Enable(ctx context.Context, service string) error
	Start(ctx context.Context, service string) error
	Restart(ctx context.Context, service string) error
	Reload(ctx context.Context, service string) error
	Stop(ctx context.Context, service string) error

	QueryStatus(ctx context.Context, service string) Status
}
