package commands

import (
	"github.com/lambda-feedback/deskshell/internal/server"
	"github.com/lambda-feedback/deskshell/util/logging"
	"go.uber.org/fx"
)

func NewCommandRoute(handler *CommandHandler) server.HttpHandlerResult {
	return server.AsHttpHandler("/commands/{command}", handler)
}

func NewHealthRoute(commands *Commands) server.HttpHandlerResult {
	return server.AsHttpHandler("/health", HealthHandler(commands))
}

func Module() fx.Option {
	return fx.Module("commands",
		// rename logger for module
		logging.DecorateLogger("commands"),
		// provide commands
		fx.Provide(New),
		// provide handlers
		fx.Provide(NewCommandHandler),
		// provide routes
		fx.Provide(NewCommandRoute),
		fx.Provide(NewHealthRoute),
	)
}
