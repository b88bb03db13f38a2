package pipeline_test

import (
	"context"
	"errors"
	"testing"

	camerrors "github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/filesystem"
	"github.com/raspiroman/camstack/pkg/pipeline"
	"github.com/raspiroman/camstack/pkg/service"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/raspiroman/camstack/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockController implements service.Controller for testing
type MockController struct {
	mock.Mock
}

func (m *MockController) InstallUnit(ctx context.Context, unitName, srcPath string) (bool, error) {
	args := m.Called(ctx, unitName, srcPath)
	return args.Bool(0), args.Error(1)
}

func (m *MockController) ReloadManager(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockController) Enable(ctx context.Context, svc string) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *MockController) Start(ctx context.Context, svc string) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *MockController) Restart(ctx context.Context, svc string) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *MockController) Reload(ctx context.Context, svc string) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *MockController) Stop(ctx context.Context, svc string) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *MockController) QueryStatus(ctx context.Context, svc string) service.Status {
	return m.Called(ctx, svc).Get(0).(service.Status)
}

// MockCommandRunner implements pipeline.CommandRunner and validate.Runner
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	callArgs := m.Called(ctx, name, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).([]byte), callArgs.Error(1)
}

func newMemFS(t *testing.T) types.FS {
	t.Helper()
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/", 0755))
	return fs
}

func TestRun_FatalStepAbortsRemaining(t *testing.T) {
	fs := newMemFS(t)
	require.NoError(t, fs.WriteFile("/src/a", []byte("a"), 0644))

	steps := []types.Step{
		{Name: "copy a", Kind: types.KindFileCopy, FatalOnFailure: true, Source: "/src/a", Dest: "/dst/a"},
		{Name: "copy missing", Kind: types.KindFileCopy, FatalOnFailure: true, Source: "/src/missing", Dest: "/dst/b"},
		{Name: "never reached", Kind: types.KindFileCopy, FatalOnFailure: true, Source: "/src/a", Dest: "/dst/c"},
	}

	exec := pipeline.New(pipeline.Options{FS: fs})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunAborted, report.Status)
	require.Len(t, report.Outcomes, 2, "steps after the fatal failure must be absent")
	assert.Equal(t, types.StatusSuccess, report.Outcomes[0].Status)
	assert.Equal(t, types.StatusFatalFailed, report.Outcomes[1].Status)

	cause := report.AbortCause()
	require.NotNil(t, cause)
	assert.Equal(t, "copy missing", cause.StepName)
}

func TestRun_AdvisoryFailureContinues(t *testing.T) {
	fs := newMemFS(t)
	require.NoError(t, fs.WriteFile("/src/a", []byte("a"), 0644))

	ctrl := new(MockController)
	ctrl.On("QueryStatus", mock.Anything, "webcam").Return(service.StatusStopped)

	steps := []types.Step{
		{Name: "probe webcam", Kind: types.KindServiceAction, Service: "webcam", Action: types.VerbStatus, FatalOnFailure: false},
		{Name: "copy a", Kind: types.KindFileCopy, FatalOnFailure: true, Source: "/src/a", Dest: "/dst/a"},
	}

	exec := pipeline.New(pipeline.Options{FS: fs, Controller: ctrl})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunCompleted, report.Status, "advisory failures must not abort the run")
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, types.StatusFailed, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Detail, "stopped")
	assert.Equal(t, types.StatusSuccess, report.Outcomes[1].Status)
}

func TestRun_ServiceActions(t *testing.T) {
	ctrl := new(MockController)
	ctrl.On("ReloadManager", mock.Anything).Return(nil)
	ctrl.On("Enable", mock.Anything, "webcam").Return(nil)
	ctrl.On("Restart", mock.Anything, "webcam").Return(nil)

	steps := []types.Step{
		{Name: "daemon-reload", Kind: types.KindServiceAction, Action: types.VerbReloadManager, FatalOnFailure: true},
		{Name: "enable webcam", Kind: types.KindServiceAction, Service: "webcam", Action: types.VerbEnable, FatalOnFailure: true},
		{Name: "restart webcam", Kind: types.KindServiceAction, Service: "webcam", Action: types.VerbRestart, FatalOnFailure: true},
	}

	exec := pipeline.New(pipeline.Options{FS: newMemFS(t), Controller: ctrl})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunCompleted, report.Status)
	for _, o := range report.Outcomes {
		assert.Equal(t, types.StatusSuccess, o.Status)
	}
	ctrl.AssertExpectations(t)
}

func TestRun_ServiceReloadRejected(t *testing.T) {
	ctrl := new(MockController)
	ctrl.On("Reload", mock.Anything, "nginx").
		Return(camerrors.New(camerrors.ErrServiceControl, "systemctl reload nginx: job failed"))

	steps := []types.Step{
		{Name: "reload nginx", Kind: types.KindServiceAction, Service: "nginx", Action: types.VerbReload, FatalOnFailure: true},
	}

	exec := pipeline.New(pipeline.Options{FS: newMemFS(t), Controller: ctrl})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunAborted, report.Status)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, types.StatusFatalFailed, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Detail, "job failed")
}

func TestRun_ExternalCommand(t *testing.T) {
	runner := new(MockCommandRunner)
	runner.On("CombinedOutput", mock.Anything, "git", []string{"pull", "--ff-only"}).
		Return([]byte("Already up to date.\n"), nil)

	steps := []types.Step{
		{Name: "fetch source", Kind: types.KindExternalCommand, Command: []string{"git", "pull", "--ff-only"}, FatalOnFailure: true},
	}

	exec := pipeline.New(pipeline.Options{FS: newMemFS(t), Runner: runner})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunCompleted, report.Status)
	assert.Equal(t, "Already up to date.", report.Outcomes[0].Detail)
}

func TestRun_ExternalCommandFailureCapturesOutput(t *testing.T) {
	runner := new(MockCommandRunner)
	runner.On("CombinedOutput", mock.Anything, "apt-get", []string{"install", "-y", "vsftpd"}).
		Return([]byte("E: Unable to locate package vsftpd"), errors.New("exit status 100"))

	steps := []types.Step{
		{Name: "install vsftpd", Kind: types.KindExternalCommand,
			Command: []string{"apt-get", "install", "-y", "vsftpd"}, FatalOnFailure: true},
	}

	exec := pipeline.New(pipeline.Options{FS: newMemFS(t), Runner: runner})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunAborted, report.Status)
	assert.Contains(t, report.Outcomes[0].Detail, "Unable to locate package")
}

func TestRun_DryRunMakesNoChanges(t *testing.T) {
	fs := newMemFS(t)
	require.NoError(t, fs.WriteFile("/src/a", []byte("a"), 0644))

	steps := []types.Step{
		{Name: "copy a", Kind: types.KindFileCopy, Source: "/src/a", Dest: "/dst/a", FatalOnFailure: true},
	}

	exec := pipeline.New(pipeline.Options{FS: fs, DryRun: true})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunCompleted, report.Status)
	assert.Equal(t, types.StatusNoOp, report.Outcomes[0].Status)
	_, err := fs.Stat("/dst/a")
	assert.Error(t, err, "dry run must not write the destination")
}

func TestRun_UnknownKindIsFatal(t *testing.T) {
	steps := []types.Step{
		{Name: "mystery", Kind: types.StepKind("teleport"), FatalOnFailure: true},
	}

	exec := pipeline.New(pipeline.Options{FS: newMemFS(t)})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunAborted, report.Status)
	assert.Contains(t, report.Outcomes[0].Detail, "teleport")
}

func TestRun_ValidationGateBlocksReload(t *testing.T) {
	diagnostic := "nginx: [emerg] invalid parameter in /etc/nginx/nginx.conf:42"
	validatorRunner := new(MockCommandRunner)
	validatorRunner.On("CombinedOutput", mock.Anything, "nginx", []string{"-t"}).
		Return([]byte(diagnostic), errors.New("exit status 1"))

	ctrl := new(MockController)
	// No expectations on Reload: it must never be called.

	steps := []types.Step{
		{Name: "validate nginx config", Kind: types.KindExternalValidate,
			Command: []string{"nginx", "-t"}, FatalOnFailure: true},
		{Name: "reload nginx", Kind: types.KindServiceAction,
			Service: "nginx", Action: types.VerbReload, FatalOnFailure: true},
	}

	exec := pipeline.New(pipeline.Options{
		FS:         newMemFS(t),
		Controller: ctrl,
		Gate:       validate.NewGateWithRunner(validatorRunner),
	})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunAborted, report.Status)
	require.Len(t, report.Outcomes, 1, "the reload step must be absent from the report")
	assert.Equal(t, types.StatusFatalFailed, report.Outcomes[0].Status)
	assert.Equal(t, diagnostic, report.Outcomes[0].Detail, "validator diagnostic must be verbatim")
	ctrl.AssertNotCalled(t, "Reload", mock.Anything, "nginx")
}

func TestRun_AdvisoryValidationStillBlocksReload(t *testing.T) {
	validatorRunner := new(MockCommandRunner)
	validatorRunner.On("CombinedOutput", mock.Anything, "nginx", []string{"-t"}).
		Return([]byte("nginx: configuration file test failed"), errors.New("exit status 1"))

	ctrl := new(MockController)

	// Even a validate step marked tolerant must stop the guarded reload.
	steps := []types.Step{
		{Name: "validate nginx config", Kind: types.KindExternalValidate,
			Command: []string{"nginx", "-t"}, FatalOnFailure: false},
		{Name: "reload nginx", Kind: types.KindServiceAction,
			Service: "nginx", Action: types.VerbReload, FatalOnFailure: true},
	}

	exec := pipeline.New(pipeline.Options{
		FS:         newMemFS(t),
		Controller: ctrl,
		Gate:       validate.NewGateWithRunner(validatorRunner),
	})
	report := exec.Run(context.Background(), steps)

	assert.Equal(t, types.RunAborted, report.Status)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, types.StatusFatalFailed, report.Outcomes[0].Status)
	ctrl.AssertNotCalled(t, "Reload", mock.Anything, "nginx")
}
