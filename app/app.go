package app

import (
	"github.com/lambda-feedback/deskshell/config"
	"github.com/lambda-feedback/deskshell/internal/bridge"
	"github.com/lambda-feedback/deskshell/internal/commands"
	"github.com/lambda-feedback/deskshell/internal/server"
	"github.com/lambda-feedback/deskshell/internal/shell"
	"github.com/lambda-feedback/deskshell/internal/sidecar"
	"github.com/lambda-feedback/deskshell/internal/window"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New assembles the shell from the application config.
func New(log *zap.Logger, cfg config.Config) (*shell.Shell, error) {
	return shell.New(log, Module(cfg)), nil
}

func Module(cfg config.Config) fx.Option {
	return fx.Options(
		// provide global config
		fx.Supply(cfg),
		// the hub is the sink for sidecar output and window changes
		fx.Provide(func(hub *bridge.Hub) sidecar.Sink { return hub }),
		fx.Provide(func(hub *bridge.Hub) window.Emitter { return hub }),
		// the registry is the supervisor behind the commands
		fx.Provide(func(r *sidecar.Registry) commands.Supervisor { return r }),
		bridge.Module(cfg.Bridge),
		sidecar.Module(cfg.Sidecar),
		window.Module(),
		commands.Module(),
		server.Module(server.HttpConfig{
			Host: cfg.Bridge.Host,
			Port: cfg.Bridge.Port,
			H2c:  cfg.Bridge.H2c,
		}),
	)
}
