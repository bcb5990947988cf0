package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/models"
)

func TestAnnouncementHandler_ListAndPost(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/api/v1/announcements", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var empty envelope[[]models.Announcement]
	decodeResponse(t, resp, &empty)
	require.Empty(t, empty.Data)

	resp = env.do(t, http.MethodPost, "/api/v1/announcements", dto.AnnouncementInput{Message: "Libur"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	env.loginTeacher(t)
	for _, message := range []string{"Libur semester", "Rapat wali murid"} {
		resp = env.do(t, http.MethodPost, "/api/v1/announcements", dto.AnnouncementInput{Message: message})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/announcements?limit=1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list envelope[[]models.Announcement]
	decodeResponse(t, resp, &list)
	require.Len(t, list.Data, 1)
	require.Equal(t, "Rapat wali murid", list.Data[0].Message)
	require.Equal(t, 1, list.Meta["count"])
}

func TestAnnouncementHandler_InvalidLimit(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/api/v1/announcements?limit=oops", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSnapshotHandler_TeacherOnly(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/api/v1/snapshot", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	env.loginTeacher(t)
	resp = env.do(t, http.MethodGet, "/api/v1/snapshot", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope[models.Snapshot]
	decodeResponse(t, resp, &body)
	require.Equal(t, models.Fixture().Students, body.Data.Students)
	require.Len(t, body.Data.Passwords, 2)
}
