package logging

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type contextKey int

var loggerKey = contextKey(0)

var ErrNoLoggerInContext = errors.New("no logger in context")

type Options struct {
	// Level is the minimum enabled level, e.g. "debug" or "info".
	// Invalid or empty levels fall back to info.
	Level string

	// Format is either "production" (json) or "development" (console)
	Format string

	// Name is set as the "app" field on every entry
	Name string
}

func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	if opts.Format == "development" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	if opts.Name != "" {
		config.InitialFields = map[string]any{
			"app": opts.Name,
		}
	}

	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if atom, err := zap.ParseAtomicLevel(opts.Level); err == nil {
		config.Level = atom
	}

	return config.Build()
}

func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func LoggerFromContext(ctx context.Context) (*zap.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger, nil
	}

	return nil, ErrNoLoggerInContext
}

// DecorateLogger names the logger of all components in an fx module.
func DecorateLogger(name string) fx.Option {
	return fx.Decorate(func(log *zap.Logger) *zap.Logger {
		return log.Named(name)
	})
}
