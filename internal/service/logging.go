package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/middleware"
)

// contextLogger tags base with the request correlation id carried by ctx.
func contextLogger(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		return base.With().Str("correlation_id", correlation).Logger()
	}
	return base
}
