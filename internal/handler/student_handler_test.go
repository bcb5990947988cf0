package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

type stubPhotoStorage struct {
	lastName string
}

func (s *stubPhotoStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	s.lastName = name
	return "https://res.example.com/" + name + ".png", nil
}

func TestStudentHandler_RequiresTeacher(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/api/v1/students", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	env.loginStudent(t)
	resp = env.do(t, http.MethodGet, "/api/v1/students", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestStudentHandler_SaveAndList(t *testing.T) {
	env := newTestEnv(t, nil)
	env.loginTeacher(t)

	resp := env.do(t, http.MethodPost, "/api/v1/students", dto.StudentInput{Name: "Siti Aminah", ParentWA: "62811", Password: "siti1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var saved envelope[models.Student]
	decodeResponse(t, resp, &saved)
	require.NotEmpty(t, saved.Data.ID)
	require.Equal(t, "Siti Aminah", saved.Data.Name)

	resp = env.do(t, http.MethodGet, "/api/v1/students", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list envelope[[]models.Student]
	decodeResponse(t, resp, &list)
	require.Len(t, list.Data, 2)
	require.Equal(t, "stu-001", list.Data[0].ID)
	require.Equal(t, saved.Data.ID, list.Data[1].ID)

	_, err := env.auth.Authenticate(context.Background(), "student", "siti aminah", "siti1")
	require.NoError(t, err)
}

func TestStudentHandler_SaveValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.loginTeacher(t)

	resp := env.do(t, http.MethodPost, "/api/v1/students", dto.StudentInput{BirthDate: "12-08-2014"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body envelope[any]
	decodeResponse(t, resp, &body)
	require.Equal(t, "required", body.Details["Name"])
	require.Equal(t, "datetime", body.Details["BirthDate"])
}

func TestStudentHandler_Records(t *testing.T) {
	env := newTestEnv(t, nil)
	env.loginTeacher(t)

	_, err := env.records.RecordGrade(context.Background(), dto.GradeInput{StudentID: "stu-001", Subject: "IPA", Score: 88})
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/v1/students/stu-001/records", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body envelope[dto.StudentRecordsResponse]
	decodeResponse(t, resp, &body)
	require.Equal(t, "Budi Santoso", body.Data.Student.Name)
	require.Len(t, body.Data.Grades, 1)

	resp = env.do(t, http.MethodGet, "/api/v1/students/stu-404/records", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentHandler_Tally(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for _, status := range []string{"present", "present", "sick", "absent"} {
		_, err := env.records.RecordAttendance(ctx, dto.AttendanceInput{StudentID: "stu-001", Date: "2024-03-05", Status: status})
		require.NoError(t, err)
	}
	_, err := env.records.RecordAttendance(ctx, dto.AttendanceInput{StudentID: "stu-001", Date: "2024-02-05", Status: "excused"})
	require.NoError(t, err)

	env.loginStudent(t)
	resp := env.do(t, http.MethodGet, "/api/v1/students/stu-001/tally?year=2024&month=3", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body envelope[dto.TallyResponse]
	decodeResponse(t, resp, &body)
	require.Equal(t, models.AttendanceTally{Month: "2024-03", Present: 2, Sick: 1, Absent: 1}, body.Data.Month)
	require.Len(t, body.Data.History, 2)
	require.Equal(t, "2024-02", body.Data.History[0].Month)

	resp = env.do(t, http.MethodGet, "/api/v1/students/stu-002/tally", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/students/stu-001/tally?month=13", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/students/stu-001/tally?year=abc", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	env.loginTeacher(t)
	resp = env.do(t, http.MethodGet, "/api/v1/students/stu-404/tally", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func uploadRequest(t *testing.T, path string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestStudentHandler_PhotoUploadDisabled(t *testing.T) {
	env := newTestEnv(t, nil)
	env.loginTeacher(t)

	resp, err := env.app.Test(uploadRequest(t, "/api/v1/students/stu-001/photo", pngHeader), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestStudentHandler_PhotoUpload(t *testing.T) {
	storage := &stubPhotoStorage{}
	env := newTestEnv(t, storage)
	env.loginTeacher(t)

	resp, err := env.app.Test(uploadRequest(t, "/api/v1/students/stu-001/photo", pngHeader), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope[models.Student]
	decodeResponse(t, resp, &body)
	require.Equal(t, "https://res.example.com/stu-001.png", body.Data.PhotoURL)
	require.Equal(t, "stu-001", storage.lastName)

	resp, err = env.app.Test(uploadRequest(t, "/api/v1/students/stu-001/photo", []byte("plain text")), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/students/stu-001/photo", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
