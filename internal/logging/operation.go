package logging

import (
	"context"
	"log/slog"
	"time"
)

// Operation marks the start of a named unit of work and returns a function
// that logs its completion with the elapsed duration. Intended for store
// load/save cycles and other synchronous filesystem work.
func Operation(ctx context.Context, name string, args ...any) func() {
	logger := FromContext(ctx).With(slog.String("operation", name))
	if len(args) > 0 {
		logger = logger.With(args...)
	}
	start := time.Now()

	return func() {
		logger.Debug("operation completed", slog.Duration("duration", time.Since(start)))
	}
}
