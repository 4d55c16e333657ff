package bridge

import (
	"github.com/lambda-feedback/deskshell/internal/server"
	"github.com/lambda-feedback/deskshell/util/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEventsRoute(hub *Hub, log *zap.Logger) server.HttpHandlerResult {
	return server.AsHttpHandler("/events", NewEventsHandler(hub, log))
}

func Module(config Config) fx.Option {
	return fx.Module("bridge",
		// rename logger for module
		logging.DecorateLogger("bridge"),
		// provide config
		fx.Supply(config),
		// provide hub
		fx.Provide(NewHub),
		// provide routes
		fx.Provide(NewEventsRoute),
	)
}
