package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mikoro-portal/internal/handler"
	"github.com/noah-isme/mikoro-portal/internal/middleware"
	"github.com/noah-isme/mikoro-portal/internal/repository"
	"github.com/noah-isme/mikoro-portal/internal/service"
)

type envelope[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Message string            `json:"message"`
	Meta    map[string]int    `json:"meta"`
	Details map[string]string `json:"details"`
}

type testEnv struct {
	app       *fiber.App
	auth      service.AuthService
	records   service.RecordService
	snapshots repository.SnapshotRepository
}

func newTestEnv(t *testing.T, photos service.PhotoStorage) testEnv {
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
	photoService := service.NewPhotoService(photos, records, logger)

	app := fiber.New()
	app.Use(middleware.Session(auth, logger))
	api := app.Group("/api/v1")
	handler.NewAuthHandler(auth, validate, logger).Register(api.Group("/auth"))
	handler.NewStudentHandler(records, photoService, logger).Register(api.Group("/students"))
	handler.NewProfileHandler(records, logger).Register(api.Group("/me", middleware.RequireRole(middleware.AuthRoleStudent)))
	handler.NewRecordHandler(records, logger).Register(api)
	handler.NewAnnouncementHandler(records, logger).Register(api.Group("/announcements"))
	handler.NewSnapshotHandler(records, logger).Register(api.Group("/snapshot", middleware.RequireRole(middleware.AuthRoleTeacher)))

	return testEnv{app: app, auth: auth, records: records, snapshots: snapshots}
}

func (e testEnv) loginTeacher(t *testing.T) {
	t.Helper()
	_, err := e.auth.Authenticate(context.Background(), "teacher", "Guru Admin", "admin123")
	require.NoError(t, err)
}

func (e testEnv) loginStudent(t *testing.T) {
	t.Helper()
	_, err := e.auth.Authenticate(context.Background(), "student", "Budi Santoso", "budi123")
	require.NoError(t, err)
}

func (e testEnv) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
