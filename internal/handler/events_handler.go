package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/middleware"
	"github.com/noah-isme/mikoro-portal/internal/observability"
	"github.com/noah-isme/mikoro-portal/internal/service"
)

const (
	eventStreamBuffer = 32
	eventWriteTimeout = 5 * time.Second
)

// EventsHandler streams mutation events to websocket clients.
type EventsHandler struct {
	events service.EventBus
	logger zerolog.Logger
}

// NewEventsHandler constructs an event stream handler.
func NewEventsHandler(events service.EventBus, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		events: events,
		logger: logger.With().Str("component", "events_handler").Logger(),
	}
}

// Register binds the websocket upgrade under the provided router group.
func (h *EventsHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("correlation_id", middleware.GetCorrelationID(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.stream))
}

func (h *EventsHandler) stream(conn *websocket.Conn) {
	events, cancel := h.events.Subscribe(eventStreamBuffer)
	defer cancel()

	observability.EventStreamClients().Inc()
	defer observability.EventStreamClients().Dec()

	logger := h.logger.With().
		Interface("user_id", conn.Locals("user_id")).
		Interface("correlation_id", conn.Locals("correlation_id")).
		Logger()
	logger.Info().Msg("event stream connected")
	defer logger.Info().Msg("event stream disconnected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug().Err(err).Msg("failed to write event")
				return
			}
		}
	}
}
