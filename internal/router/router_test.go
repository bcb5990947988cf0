package router_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mikoro-portal/internal/config"
	"github.com/noah-isme/mikoro-portal/internal/handler"
	"github.com/noah-isme/mikoro-portal/internal/middleware"
	"github.com/noah-isme/mikoro-portal/internal/repository"
	"github.com/noah-isme/mikoro-portal/internal/router"
	"github.com/noah-isme/mikoro-portal/internal/service"
)

func newApp(t *testing.T) (*fiber.App, service.AuthService) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := repository.NewMemoryKeyValueStore()
	snapshots := repository.NewSnapshotRepository(store, "", logger)
	sessions := repository.NewSessionRepository(store, "", logger)
	require.NoError(t, snapshots.EnsureSeeded(context.Background()))

	validate := validator.New(validator.WithRequiredStructEnabled())
	events := service.NewEventBus(nil, "", logger)
	auth := service.NewAuthService(snapshots, sessions, logger)
	records := service.NewRecordService(snapshots, events, validate, logger)

	cfg := config.Config{AppName: "MI Koro Portal", AppEnv: "test", StorageDriver: config.StorageMemory}
	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger, Session: auth})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(auth, validate, logger),
		StudentHandler:      handler.NewStudentHandler(records, service.NewPhotoService(nil, records, logger), logger),
		ProfileHandler:      handler.NewProfileHandler(records, logger),
		RecordHandler:       handler.NewRecordHandler(records, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(records, logger),
		SnapshotHandler:     handler.NewSnapshotHandler(records, logger),
		EventsHandler:       handler.NewEventsHandler(events, logger),
	})
	return app, auth
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func TestRegisterServesHealthAndMetrics(t *testing.T) {
	app, _ := newApp(t)

	require.Equal(t, fiber.StatusOK, get(t, app, "/health").StatusCode)

	resp := get(t, app, "/api/v1/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "MI Koro Portal", resp.Header.Get("X-Application"))
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))

	require.Equal(t, fiber.StatusOK, get(t, app, "/metrics").StatusCode)
}

func TestRegisterPublicAndGuardedRoutes(t *testing.T) {
	app, auth := newApp(t)

	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/announcements").StatusCode)
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/v1/me/records").StatusCode)
	require.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/v1/events/ws").StatusCode)

	_, err := auth.Authenticate(context.Background(), "teacher", "Guru Admin", "admin123")
	require.NoError(t, err)

	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/students").StatusCode)
	require.Equal(t, fiber.StatusOK, get(t, app, "/api/v1/snapshot").StatusCode)
	require.Equal(t, fiber.StatusUpgradeRequired, get(t, app, "/api/v1/events/ws").StatusCode)
	require.Equal(t, fiber.StatusForbidden, get(t, app, "/api/v1/me/records").StatusCode)
}
