// Package runctx carries per-run identity through a context.
package runctx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type key int

const runKey key = 0

// RunContext identifies a single verification run.
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRun attaches a fresh run ID to ctx together with a logger that tags
// every event with it.
func WithRun(ctx context.Context, logger zerolog.Logger) context.Context {
	rc := &RunContext{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	ctx = context.WithValue(ctx, runKey, rc)
	return logger.With().Str("run_id", rc.RunID).Logger().WithContext(ctx)
}

// FromContext returns the run attached to ctx, or a placeholder.
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}
