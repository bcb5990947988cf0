package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/dto"
)

// SessionSource resolves the portal's single active session.
type SessionSource interface {
	Current(ctx context.Context) (*dto.SessionResponse, error)
}

// Session loads the active session into the request locals user_role,
// user_id and user_name. Requests without a session pass through anonymous.
//
// The portal persists exactly one session and nothing ties it to a client:
// every caller, from any origin, acts as the principal who logged in last.
// Deployments are expected to serve a single browser.
func Session(source SessionSource, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := ContextWithCorrelation(c.UserContext(), GetCorrelationID(c))
		current, err := source.Current(ctx)
		if err != nil {
			requestLogger := RequestLogger(logger, c)
			requestLogger.Error().Err(err).Msg("failed to resolve session")
			return fiber.NewError(fiber.StatusServiceUnavailable, "session unavailable")
		}
		if current != nil {
			c.Locals("user_role", current.Role)
			c.Locals("user_id", current.UserID)
			c.Locals("user_name", current.Name)
		}
		return c.Next()
	}
}
