package log

import (
	"context"

	"go.uber.org/zap"
)

// Logger is the structured logger used across the service.
// Every method takes a context so that fields attached with With follow
// the request or connection they were attached to.
type Logger interface {
	Debug(ctx context.Context, arg ...any)
	Debugf(ctx context.Context, template string, arg ...any)
	Info(ctx context.Context, arg ...any)
	Infof(ctx context.Context, template string, arg ...any)
	Warn(ctx context.Context, arg ...any)
	Warnf(ctx context.Context, template string, arg ...any)
	Error(ctx context.Context, arg ...any)
	Errorf(ctx context.Context, template string, arg ...any)
	Fatal(ctx context.Context, arg ...any)
	Fatalf(ctx context.Context, template string, arg ...any)

	// With returns a child context whose log lines carry the given key/value pairs.
	With(ctx context.Context, keysAndValues ...any) context.Context
	Sync() error
}

// Init builds a Logger writing to stderr.
func Init(cfg ZapConfig) Logger {
	l := &zapLogger{cfg: &cfg}
	l.init()
	return l
}

// NewNop returns a Logger that discards everything. Used in tests.
func NewNop() Logger {
	return &zapLogger{sugarLogger: zap.NewNop().Sugar(), cfg: &ZapConfig{}}
}
