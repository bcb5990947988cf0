package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/service"
	"github.com/noah-isme/mikoro-portal/internal/utils"
)

// ProfileHandler lets the signed-in student read their records and edit their profile.
type ProfileHandler struct {
	records service.RecordService
	logger  zerolog.Logger
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(records service.RecordService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		records: records,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register wires self-service routes. The router group must require the student role.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Put("/profile", h.updateProfile)
	router.Get("/records", h.myRecords)
}

func (h *ProfileHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.ProfileInput
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.records.UpdateProfile(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return sendRecordError(c, h.logger, err, "update profile")
	}
	return utils.SendSuccess(c, "profile updated", student)
}

func (h *ProfileHandler) myRecords(c *fiber.Ctx) error {
	result, err := h.records.StudentRecords(requestContext(c), userIDFromContext(c))
	if err != nil {
		return sendRecordError(c, h.logger, err, "load records")
	}
	return utils.SendSuccess(c, "records retrieved", result)
}
