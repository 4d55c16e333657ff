package sidecar

import (
	"context"

	"github.com/lambda-feedback/deskshell/util/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type RegistryParams struct {
	fx.In

	Config   Config
	Launcher Launcher
	Sink     Sink
	Log      *zap.Logger
}

// NewLifecycleRegistry creates the registry and binds it to the lifecycle
// of the application: the sidecar is optionally started on startup, and
// always killed when the application is asked to exit.
func NewLifecycleRegistry(params RegistryParams, lc fx.Lifecycle) *Registry {
	registry := NewRegistry(Params{
		Config:   params.Config,
		Launcher: params.Launcher,
		Sink:     params.Sink,
		Log:      params.Log,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !params.Config.Autostart {
				return nil
			}

			// a failed launch must not prevent the application from
			// starting, the user can retry via start_sidecar
			_, _ = registry.Start(ctx)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			registry.Stop()
			return nil
		},
	})

	return registry
}

func Module(config Config) fx.Option {
	return fx.Module("sidecar",
		// rename logger for module
		logging.DecorateLogger("sidecar"),
		// provide config
		fx.Supply(config),
		// provide launcher
		fx.Provide(fx.Annotate(NewExecLauncher, fx.As(new(Launcher)))),
		// provide registry
		fx.Provide(NewLifecycleRegistry),
		// invoke registry, so its hooks are registered
		fx.Invoke(func(*Registry) {}),
	)
}
