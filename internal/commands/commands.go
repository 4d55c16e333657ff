package commands

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/lambda-feedback/deskshell/internal/sidecar"
	"github.com/lambda-feedback/deskshell/internal/window"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	StartSidecarCommand     = "start_sidecar"
	ShutdownSidecarCommand  = "shutdown_sidecar"
	ToggleFullscreenCommand = "toggle_fullscreen"
)

const (
	MsgInitialized = "Backend initialized."
	MsgStopped     = "Backend stopped."
	MsgNotRunning  = "Backend was not running."
)

// Supervisor controls the lifecycle of the sidecar.
type Supervisor interface {
	Start(ctx context.Context) (sidecar.StartResult, error)
	Stop() sidecar.StopResult
	Running() bool
}

var _ Supervisor = (*sidecar.Registry)(nil)

type Params struct {
	fx.In

	Supervisor Supervisor
	Window     window.Window
	Log        *zap.Logger
}

// Commands is the set of operations the presentation layer may invoke.
type Commands struct {
	supervisor Supervisor
	window     window.Window
	log        *zap.Logger
}

func New(params Params) *Commands {
	return &Commands{
		supervisor: params.Supervisor,
		window:     params.Window,
		log:        params.Log,
	}
}

// StartSidecar starts the sidecar if it is not running yet. A redundant
// call succeeds with the same message as the one that launched it.
func (c *Commands) StartSidecar(ctx context.Context) (string, error) {
	res, err := c.supervisor.Start(ctx)
	if err != nil {
		c.log.Error("start_sidecar failed", zap.Error(err))
		sentry.CaptureException(err)
		return "", err
	}

	log := c.log.With(zap.Int("pid", res.Pid))
	if res.Status == sidecar.AlreadyRunning {
		log.Debug("start_sidecar: already running")
	} else {
		log.Info("start_sidecar: started")
	}

	return MsgInitialized, nil
}

// ShutdownSidecar kills the sidecar. It never fails.
func (c *Commands) ShutdownSidecar(context.Context) (string, error) {
	if c.supervisor.Stop() == sidecar.Terminated {
		return MsgStopped, nil
	}

	return MsgNotRunning, nil
}

// ToggleFullscreen flips the fullscreen state of the window, if it
// can be read. Failures are ignored.
func (c *Commands) ToggleFullscreen(context.Context) {
	window.Toggle(c.window)
}

// Running reports whether the sidecar is running.
func (c *Commands) Running() bool {
	return c.supervisor.Running()
}
