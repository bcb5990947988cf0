package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/models"
	"github.com/noah-isme/mikoro-portal/internal/observability"
)

// LinkDispatcher hands a deep link to whatever opens it. The result is never
// awaited or retried by the portal.
type LinkDispatcher interface {
	Dispatch(ctx context.Context, link string) error
}

// LogLinkDispatcher is a basic dispatcher that logs the link.
type LogLinkDispatcher struct {
	logger zerolog.Logger
}

// NewLogLinkDispatcher constructs a logging dispatcher.
func NewLogLinkDispatcher(logger zerolog.Logger) *LogLinkDispatcher {
	return &LogLinkDispatcher{logger: logger.With().Str("component", "link_dispatcher").Logger()}
}

// Dispatch logs the link and returns nil.
func (l *LogLinkDispatcher) Dispatch(_ context.Context, link string) error {
	l.logger.Info().Str("link", link).Msg("parent notification link ready")
	return nil
}

// WALink builds a wa.me deep link. Every non-digit is removed from the phone
// number and the message is percent-encoded like JavaScript's encodeURIComponent.
func WALink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, encodeURIComponent(message))
}

var uriComponentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(value string) string {
	return uriComponentUnescapes.Replace(url.QueryEscape(value))
}

// ViolationMessage is the text sent to a student's parent after a violation.
func ViolationMessage(studentName string, violation models.Violation) string {
	return fmt.Sprintf(
		"Assalamualaikum, orang tua/wali %s. Terdapat pelanggaran: %s (skor %s) pada tanggal %s. Mohon perhatian.",
		studentName,
		violation.Type,
		strconv.FormatFloat(violation.Score, 'f', -1, 64),
		violation.Date,
	)
}

// ParentNotifier turns ViolationRecorded events into parent deep links.
type ParentNotifier struct {
	events     EventBus
	dispatcher LinkDispatcher
	logger     zerolog.Logger
}

// NewParentNotifier constructs the notifier.
func NewParentNotifier(events EventBus, dispatcher LinkDispatcher, logger zerolog.Logger) *ParentNotifier {
	return &ParentNotifier{
		events:     events,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "parent_notifier").Logger(),
	}
}

// Start subscribes to the event bus until ctx is cancelled.
func (n *ParentNotifier) Start(ctx context.Context) {
	ch, cancel := n.events.Subscribe(64)
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-ch:
				if !ok {
					return
				}
				n.Handle(ctx, event)
			}
		}
	}()
}

// Handle dispatches a link for local violation events whose student has a
// parent contact. It returns the link, or "" when nothing was sent.
func (n *ParentNotifier) Handle(ctx context.Context, event Event) string {
	if event.Type != EventViolationRecorded || event.Remote || event.Student == nil {
		return ""
	}
	if strings.TrimSpace(event.Student.ParentWA) == "" {
		return ""
	}

	var violation models.Violation
	if err := json.Unmarshal(event.Record, &violation); err != nil {
		n.logger.Warn().Err(err).Msg("violation event without readable record")
		return ""
	}

	link := WALink(event.Student.ParentWA, ViolationMessage(event.Student.Name, violation))
	if err := n.dispatcher.Dispatch(ctx, link); err != nil {
		n.logger.Warn().Err(err).Str("student_id", event.Student.ID).Msg("parent link dispatch failed")
	}
	observability.ParentLinksDispatched().Inc()
	return link
}
