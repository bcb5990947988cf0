package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/middleware"
	"github.com/noah-isme/mikoro-portal/internal/service"
	"github.com/noah-isme/mikoro-portal/internal/utils"
)

// RecordHandler accepts the teacher's daily record entries.
type RecordHandler struct {
	records service.RecordService
	logger  zerolog.Logger
}

// NewRecordHandler constructs a record handler.
func NewRecordHandler(records service.RecordService, logger zerolog.Logger) *RecordHandler {
	return &RecordHandler{
		records: records,
		logger:  logger.With().Str("component", "record_handler").Logger(),
	}
}

// Register wires record routes. Every route is teacher-only.
func (h *RecordHandler) Register(router fiber.Router) {
	teacher := middleware.AuthOptions{Role: middleware.AuthRoleTeacher}

	router.Post("/attendance", middleware.WithAuth(h.attendance, teacher))
	router.Post("/violations", middleware.WithAuth(h.violation, teacher))
	router.Post("/achievements", middleware.WithAuth(h.achievement, teacher))
	router.Post("/grades", middleware.WithAuth(h.grade, teacher))
	router.Put("/credentials", middleware.WithAuth(h.credential, teacher))
}

func (h *RecordHandler) attendance(c *fiber.Ctx) error {
	var payload dto.AttendanceInput
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.records.RecordAttendance(requestContext(c), payload)
	if err != nil {
		return sendRecordError(c, h.logger, err, "record attendance")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attendance recorded", record)
}

func (h *RecordHandler) violation(c *fiber.Ctx) error {
	var payload dto.ViolationInput
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.records.RecordViolation(requestContext(c), payload)
	if err != nil {
		return sendRecordError(c, h.logger, err, "record violation")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "violation recorded", record)
}

func (h *RecordHandler) achievement(c *fiber.Ctx) error {
	var payload dto.AchievementInput
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.records.RecordAchievement(requestContext(c), payload)
	if err != nil {
		return sendRecordError(c, h.logger, err, "record achievement")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "achievement recorded", record)
}

func (h *RecordHandler) grade(c *fiber.Ctx) error {
	var payload dto.GradeInput
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.records.RecordGrade(requestContext(c), payload)
	if err != nil {
		return sendRecordError(c, h.logger, err, "record grade")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "grade recorded", record)
}

func (h *RecordHandler) credential(c *fiber.Ctx) error {
	var payload dto.CredentialInput
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.records.UpsertCredential(requestContext(c), payload); err != nil {
		return sendRecordError(c, h.logger, err, "update credential")
	}
	return utils.SendSuccess(c, "credential updated", nil)
}
