package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/middleware"
	"github.com/noah-isme/mikoro-portal/internal/models"
	"github.com/noah-isme/mikoro-portal/internal/service"
	"github.com/noah-isme/mikoro-portal/internal/utils"
)

// StudentHandler serves the student roster, per-student records and photos.
type StudentHandler struct {
	records service.RecordService
	photos  service.PhotoService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(records service.RecordService, photos service.PhotoService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		records: records,
		photos:  photos,
		logger:  logger.With().Str("component", "student_handler").Logger(),
		now:     time.Now,
	}
}

// Register wires student routes. Everything except the tally is teacher-only;
// a student may read the tally of their own record.
func (h *StudentHandler) Register(router fiber.Router) {
	teacher := middleware.AuthOptions{Role: middleware.AuthRoleTeacher}

	router.Get("", middleware.WithAuth(h.list, teacher))
	router.Post("", middleware.WithAuth(h.save, teacher))
	router.Post("/:id/photo", middleware.WithAuth(h.uploadPhoto, teacher))
	router.Get("/:id/records", middleware.WithAuth(h.studentRecords, teacher))
	router.Get("/:id/tally", middleware.WithAuth(h.tally, middleware.AuthOptions{RequireUser: true}))
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.records.ListStudents(requestContext(c))
	if err != nil {
		return sendRecordError(c, h.logger, err, "list students")
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) save(c *fiber.Ctx) error {
	var payload dto.StudentInput
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.records.SaveStudent(requestContext(c), payload)
	if err != nil {
		return sendRecordError(c, h.logger, err, "save student")
	}
	return utils.SendSuccess(c, "student saved", student)
}

func (h *StudentHandler) uploadPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}
	reader, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is unreadable")
	}
	defer reader.Close()

	student, err := h.photos.UploadStudentPhoto(requestContext(c), c.Params("id"), reader)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoUploadDisabled):
			return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
		case errors.Is(err, service.ErrPhotoTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrPhotoTypeNotAllowed):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return sendRecordError(c, h.logger, err, "upload photo")
		}
	}
	return utils.SendSuccess(c, "photo uploaded", student)
}

func (h *StudentHandler) studentRecords(c *fiber.Ctx) error {
	result, err := h.records.StudentRecords(requestContext(c), c.Params("id"))
	if err != nil {
		return sendRecordError(c, h.logger, err, "load student records")
	}
	return utils.SendSuccess(c, "student records retrieved", result)
}

func (h *StudentHandler) tally(c *fiber.Ctx) error {
	studentID := c.Params("id")
	if role, _ := middleware.SessionRole(c); role == models.RoleStudent && userIDFromContext(c) != studentID {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	now := h.now().UTC()
	year, err := parseQueryInt(c, "year")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid year")
	}
	if year == 0 {
		year = now.Year()
	}
	month, err := parseQueryInt(c, "month")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid month")
	}
	if month == 0 {
		month = int(now.Month())
	}

	result, err := h.records.MonthlyTally(requestContext(c), studentID, year, month)
	if err != nil {
		return sendRecordError(c, h.logger, err, "compute tally")
	}
	return utils.SendSuccess(c, "tally computed", result)
}
