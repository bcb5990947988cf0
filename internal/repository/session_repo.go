package repository

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/models"
)

// DefaultSessionKey is the storage key of the singleton session.
const DefaultSessionKey = "mi-koro-session"

// SessionRepository tracks the single authenticated principal. It is stored
// under its own key so clearing it never touches the snapshot.
type SessionRepository interface {
	SetSession(ctx context.Context, role models.Role, userID string) error
	GetSession(ctx context.Context) (*models.Session, error)
	ClearSession(ctx context.Context) error
}

type sessionRepository struct {
	store  KeyValueStore
	key    string
	logger zerolog.Logger
}

// NewSessionRepository builds the session manager over the given backend.
func NewSessionRepository(store KeyValueStore, key string, logger zerolog.Logger) SessionRepository {
	if key == "" {
		key = DefaultSessionKey
	}
	return &sessionRepository{
		store:  store,
		key:    key,
		logger: logger.With().Str("component", "session_repository").Logger(),
	}
}

func (r *sessionRepository) SetSession(ctx context.Context, role models.Role, userID string) error {
	if r.store == nil {
		return nil
	}
	payload, err := json.Marshal(models.Session{Role: role, UserID: userID})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key, payload)
}

// GetSession returns nil when no session is stored. Unreadable session bytes
// are treated as "no session"; unlike the snapshot they are not rewritten.
func (r *sessionRepository) GetSession(ctx context.Context) (*models.Session, error) {
	if r.store == nil {
		return nil, nil
	}

	raw, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if !found || len(raw) == 0 {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		r.logger.Debug().Err(err).Msg("ignoring unreadable session")
		return nil, nil
	}
	role, ok := models.ParseRole(string(session.Role))
	if !ok || strings.TrimSpace(session.UserID) == "" {
		r.logger.Debug().Str("role", string(session.Role)).Msg("ignoring incomplete session")
		return nil, nil
	}
	session.Role = role
	return &session, nil
}

func (r *sessionRepository) ClearSession(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.Delete(ctx, r.key)
}
