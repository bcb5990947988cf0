package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/service"
	"github.com/noah-isme/mikoro-portal/internal/utils"
)

// AuthHandler exposes login, logout and the current session.
type AuthHandler struct {
	service   service.AuthService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, validator *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/logout", h.logout)
	router.Get("/session", h.session)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.Role = strings.ToLower(strings.TrimSpace(payload.Role))

	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", validationDetails(err))
	}

	result, err := h.service.Authenticate(requestContext(c), payload.Role, payload.Name, payload.Password)
	if err != nil {
		var authErr *service.AuthError
		switch {
		case errors.As(err, &authErr):
			return utils.Fail(c, fiber.StatusUnauthorized, "login failed", fiber.Map{"code": authErr.Code})
		case errors.Is(err, service.ErrInvalidRole):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to login")
		}
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(requestContext(c)); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("logout failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to logout")
	}
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) session(c *fiber.Ctx) error {
	current, err := h.service.Current(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to read session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to read session")
	}
	if current == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "no active session")
	}
	return utils.SendSuccess(c, "session retrieved", current)
}
