package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mikoro-portal/internal/config"
	"github.com/noah-isme/mikoro-portal/internal/handler"
	"github.com/noah-isme/mikoro-portal/internal/middleware"
	"github.com/noah-isme/mikoro-portal/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	StudentHandler      *handler.StudentHandler
	ProfileHandler      *handler.ProfileHandler
	RecordHandler       *handler.RecordHandler
	AnnouncementHandler *handler.AnnouncementHandler
	SnapshotHandler     *handler.SnapshotHandler
	EventsHandler       *handler.EventsHandler
	StorageProbe        handler.StorageProbe
}

// Register wires the HTTP routes into the fiber application. Role guards read
// the locals populated by the session middleware.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg, deps.StorageProbe))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.StorageProbe))

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students"))
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api.Group("/me", middleware.RequireRole(middleware.AuthRoleStudent)))
	}

	if deps.RecordHandler != nil {
		deps.RecordHandler.Register(api)
	}

	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.Register(api.Group("/announcements"))
	}

	if deps.SnapshotHandler != nil {
		deps.SnapshotHandler.Register(api.Group("/snapshot", middleware.RequireRole(middleware.AuthRoleTeacher)))
	}

	if deps.EventsHandler != nil {
		deps.EventsHandler.Register(api.Group("/events", middleware.RequireRole(middleware.AuthRoleTeacher)))
	}
}
