package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mikoro-portal/internal/dto"
)

func TestAuthHandler_LoginAndSession(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Role: "Teacher", Name: "guru admin", Password: "admin123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var login envelope[dto.SessionResponse]
	decodeResponse(t, resp, &login)
	require.True(t, login.Success)
	require.Equal(t, dto.SessionResponse{Role: "teacher", UserID: "t-001", Name: "Guru Admin"}, login.Data)

	resp = env.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var session envelope[dto.SessionResponse]
	decodeResponse(t, resp, &session)
	require.Equal(t, "t-001", session.Data.UserID)
}

func TestAuthHandler_LoginFailureCodes(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := []struct {
		name    string
		payload dto.LoginRequest
		code    string
	}{
		{name: "bad password", payload: dto.LoginRequest{Role: "teacher", Name: "Guru Admin", Password: "wrong"}, code: "bad_password"},
		{name: "unknown principal", payload: dto.LoginRequest{Role: "student", Name: "Nonexistent Name", Password: "x"}, code: "principal_not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/v1/auth/login", tc.payload)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

			var body envelope[any]
			decodeResponse(t, resp, &body)
			require.False(t, body.Success)
			require.Equal(t, tc.code, body.Details["code"])
		})
	}

	resp := env.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Role: "parent", Name: "Guru Admin"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body envelope[any]
	decodeResponse(t, resp, &body)
	require.Equal(t, "oneof", body.Details["Role"])
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t, nil)
	env.loginStudent(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
