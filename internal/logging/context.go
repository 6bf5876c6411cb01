package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext returns the logger attached to ctx, or a disabled logger when
// none is attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithSurfaceID derives a context whose logger carries the surface id. Used
// at the top of each per-surface attachment sequence.
func WithSurfaceID(ctx context.Context, surfaceID uint64) context.Context {
	child := FromContext(ctx).With().Uint64("surface_id", surfaceID).Logger()
	return child.WithContext(ctx)
}
