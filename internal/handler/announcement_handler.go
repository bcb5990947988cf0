package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/middleware"
	"github.com/noah-isme/mikoro-portal/internal/service"
	"github.com/noah-isme/mikoro-portal/internal/utils"
)

const defaultAnnouncementLimit = 20

// AnnouncementHandler handles announcement endpoints.
type AnnouncementHandler struct {
	records service.RecordService
	logger  zerolog.Logger
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(records service.RecordService, logger zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		records: records,
		logger:  logger.With().Str("component", "announcement_handler").Logger(),
	}
}

// Register wires routes for announcements. Anyone may read; only teachers post.
func (h *AnnouncementHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.WithAuth(h.post, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
}

func (h *AnnouncementHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit == 0 {
		limit = defaultAnnouncementLimit
	}

	items, err := h.records.ListAnnouncements(requestContext(c), limit)
	if err != nil {
		return sendRecordError(c, h.logger, err, "list announcements")
	}
	return utils.OK(c, items, "announcements retrieved", fiber.Map{"limit": limit, "count": len(items)})
}

func (h *AnnouncementHandler) post(c *fiber.Ctx) error {
	var payload dto.AnnouncementInput
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	announcement, err := h.records.PostAnnouncement(requestContext(c), payload)
	if err != nil {
		return sendRecordError(c, h.logger, err, "post announcement")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "announcement posted", announcement)
}
