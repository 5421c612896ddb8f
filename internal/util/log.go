package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFromContext returns the logger embedded in the given context or the
// global logger if the context carries none (or a disabled one).
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		disabledLogger := &log.Logger
		return disabledLogger
	}
	return l
}

// WithLogger returns a context carrying the given logger, retrievable via
// LogFromContext.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}
