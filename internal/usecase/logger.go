package usecase

import (
	"context"

	"go.uber.org/zap"
)

// Logger is the subset of the sugared zap logger the use cases need. Every
// call carries an "event" key from the domain.Event* constants.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

type loggerKey struct{}

// withFields returns a context whose use case log lines carry the given
// fields, when the logger supports child loggers.
func withFields(ctx context.Context, logger Logger, keysAndValues ...interface{}) (context.Context, Logger) {
	if parent, ok := logger.(interface {
		With(args ...interface{}) *zap.SugaredLogger
	}); ok {
		logger = parent.With(keysAndValues...)
	}
	return context.WithValue(ctx, loggerKey{}, logger), logger
}

func loggerFrom(ctx context.Context, fallback Logger) Logger {
	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return logger
	}
	return fallback
}
