package window

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("window",
		fx.Provide(fx.Annotate(NewState, fx.As(new(Window)))),
	)
}
