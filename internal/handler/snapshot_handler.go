package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/service"
	"github.com/noah-isme/mikoro-portal/internal/utils"
)

// SnapshotHandler dumps the whole persisted snapshot for teachers.
type SnapshotHandler struct {
	records service.RecordService
	logger  zerolog.Logger
}

// NewSnapshotHandler constructs a snapshot handler.
func NewSnapshotHandler(records service.RecordService, logger zerolog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		records: records,
		logger:  logger.With().Str("component", "snapshot_handler").Logger(),
	}
}

// Register wires the snapshot route. The router group must require the teacher role.
func (h *SnapshotHandler) Register(router fiber.Router) {
	router.Get("", h.get)
}

func (h *SnapshotHandler) get(c *fiber.Ctx) error {
	snapshot, err := h.records.Snapshot(requestContext(c))
	if err != nil {
		return sendRecordError(c, h.logger, err, "load snapshot")
	}
	return utils.SendSuccess(c, "snapshot retrieved", snapshot)
}
