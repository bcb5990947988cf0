package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/models"
	"github.com/noah-isme/mikoro-portal/internal/observability"
)

// EventType names a post-mutation event.
type EventType string

const (
	EventStudentSaved        EventType = "student.saved"
	EventAttendanceRecorded  EventType = "attendance.recorded"
	EventViolationRecorded   EventType = "violation.recorded"
	EventAchievementRecorded EventType = "achievement.recorded"
	EventGradeRecorded       EventType = "grade.recorded"
	EventAnnouncementPosted  EventType = "announcement.posted"
)

const defaultEventBuffer = 16

// Event is emitted after a mutation has been saved. Record holds the JSON of
// the appended or updated record.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurred_at"`
	Student    *models.Student `json:"student,omitempty"`
	Record     json.RawMessage `json:"record,omitempty"`
	Remote     bool            `json:"-"`
}

// EventBus fans mutation events out to in-process subscribers and, when a
// NATS connection is configured, to other portal processes. Delivery is
// best-effort: a full subscriber buffer drops the event.
type EventBus interface {
	Publish(ctx context.Context, eventType EventType, student *models.Student, record interface{})
	Subscribe(buffer int) (<-chan Event, func())
	Start(ctx context.Context)
}

type eventBus struct {
	nats          *nats.Conn
	subjectPrefix string
	logger        zerolog.Logger
	nodeID        string
	now           func() time.Time

	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewEventBus constructs the event bus. natsConn may be nil.
func NewEventBus(natsConn *nats.Conn, subjectPrefix string, logger zerolog.Logger) EventBus {
	prefix := strings.Trim(strings.ReplaceAll(subjectPrefix, ":", "."), ".")
	if prefix == "" {
		prefix = "mikoro"
	}
	return &eventBus{
		nats:          natsConn,
		subjectPrefix: prefix,
		logger:        logger.With().Str("component", "event_bus").Logger(),
		nodeID:        uuid.NewString(),
		now:           time.Now,
		subscribers:   make(map[chan Event]struct{}),
	}
}

func (b *eventBus) Publish(ctx context.Context, eventType EventType, student *models.Student, record interface{}) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Source:     b.nodeID,
		OccurredAt: b.now().UTC(),
		Student:    student,
	}
	if record != nil {
		payload, err := json.Marshal(record)
		if err != nil {
			b.logger.Warn().Err(err).Str("type", string(eventType)).Msg("failed to encode event record")
		} else {
			event.Record = payload
		}
	}

	b.broadcast(event)
	observability.EventsPublished().WithLabelValues(string(eventType)).Inc()

	if b.nats == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to encode event")
		return
	}
	if err := b.nats.Publish(b.subject(eventType), payload); err != nil {
		b.logger.Warn().Err(err).Str("type", string(eventType)).Msg("failed to publish event to nats")
	}
}

func (b *eventBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, ch)
			close(ch)
		})
	}
	return ch, cancel
}

// Start relays events published by other processes to local subscribers.
func (b *eventBus) Start(ctx context.Context) {
	if b.nats == nil {
		return
	}

	sub, err := b.nats.Subscribe(b.subjectPrefix+".events.>", func(msg *nats.Msg) {
		b.handleRemote(msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain nats event subscription")
		}
	}()
}

func (b *eventBus) handleRemote(payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.Warn().Err(err).Msg("invalid event payload")
		return
	}
	if event.Source == b.nodeID {
		return
	}
	event.Remote = true
	b.broadcast(event)
}

func (b *eventBus) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Debug().Str("type", string(event.Type)).Msg("dropping event for slow subscriber")
		}
	}
}

func (b *eventBus) subject(eventType EventType) string {
	return b.subjectPrefix + ".events." + string(eventType)
}
