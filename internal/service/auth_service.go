package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/models"
	"github.com/noah-isme/mikoro-portal/internal/observability"
	"github.com/noah-isme/mikoro-portal/internal/repository"
)

var (
	// ErrInvalidRole indicates the login role is neither student nor teacher.
	ErrInvalidRole = errors.New("invalid role")
	// ErrPrincipalNotFound indicates no principal of the role has the given name.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrNoCredential indicates the principal has no password on record.
	ErrNoCredential = errors.New("no credential registered")
	// ErrBadPassword indicates the supplied password does not match.
	ErrBadPassword = errors.New("password mismatch")
)

// Auth failure codes returned to callers.
const (
	AuthCodePrincipalNotFound = "principal_not_found"
	AuthCodeNoCredential      = "no_credential"
	AuthCodeBadPassword       = "bad_password"
)

// AuthError is a recoverable login failure the caller may retry.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthService implements the login protocol against the snapshot credentials.
//
// Passwords are stored and compared in plaintext with ordinary string
// equality. There is no lockout and no rate limiting. A successful login
// replaces the single stored session, which is shared by every client.
type AuthService interface {
	Authenticate(ctx context.Context, role, name, password string) (dto.SessionResponse, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (*dto.SessionResponse, error)
}

type authService struct {
	snapshots repository.SnapshotRepository
	sessions  repository.SessionRepository
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAuthService constructs the authentication service.
func NewAuthService(snapshots repository.SnapshotRepository, sessions repository.SessionRepository, logger zerolog.Logger) AuthService {
	return &authService{
		snapshots: snapshots,
		sessions:  sessions,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/mikoro-portal/internal/service/auth"),
	}
}

func (s *authService) Authenticate(ctx context.Context, roleValue, name, password string) (dto.SessionResponse, error) {
	role, ok := models.ParseRole(roleValue)
	if !ok {
		return dto.SessionResponse{}, ErrInvalidRole
	}

	ctx, span := s.tracer.Start(ctx, "auth.authenticate", trace.WithAttributes(attribute.String("auth.role", string(role))))
	defer span.End()

	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.SessionResponse{}, err
	}

	userID, displayName, found := resolvePrincipal(snapshot, role, name)
	if !found {
		return dto.SessionResponse{}, s.fail(ctx, role, AuthCodePrincipalNotFound, ErrPrincipalNotFound)
	}

	credential, found := models.FindCredential(snapshot.Passwords, role, userID)
	if !found {
		return dto.SessionResponse{}, s.fail(ctx, role, AuthCodeNoCredential, ErrNoCredential)
	}
	if credential.Password != password {
		return dto.SessionResponse{}, s.fail(ctx, role, AuthCodeBadPassword, ErrBadPassword)
	}

	if err := s.sessions.SetSession(ctx, role, userID); err != nil {
		span.RecordError(err)
		return dto.SessionResponse{}, err
	}

	observability.AuthAttempts().WithLabelValues(string(role), "success").Inc()
	logger := contextLogger(ctx, s.logger)
	logger.Info().Str("role", string(role)).Str("user_id", userID).Msg("principal authenticated")

	return dto.SessionResponse{Role: string(role), UserID: userID, Name: displayName}, nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.sessions.ClearSession(ctx)
}

// Current returns the authenticated principal, or nil when there is no
// session or the session refers to a principal that no longer exists.
func (s *authService) Current(ctx context.Context) (*dto.SessionResponse, error) {
	session, err := s.sessions.GetSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}

	var name string
	switch session.Role {
	case models.RoleStudent:
		student, ok := models.FindStudent(snapshot.Students, session.UserID)
		if !ok {
			return nil, nil
		}
		name = student.Name
	case models.RoleTeacher:
		teacher, ok := models.FindTeacher(snapshot.Teachers, session.UserID)
		if !ok {
			return nil, nil
		}
		name = teacher.Name
	}

	return &dto.SessionResponse{Role: string(session.Role), UserID: session.UserID, Name: name}, nil
}

func (s *authService) fail(ctx context.Context, role models.Role, code string, err error) error {
	observability.AuthAttempts().WithLabelValues(string(role), code).Inc()
	logger := contextLogger(ctx, s.logger)
	logger.Info().Str("role", string(role)).Str("code", code).Msg("login rejected")
	return &AuthError{Code: code, Err: err}
}

func resolvePrincipal(snapshot models.Snapshot, role models.Role, name string) (string, string, bool) {
	switch role {
	case models.RoleStudent:
		if student, ok := models.FindStudentByName(snapshot.Students, name); ok {
			return student.ID, student.Name, true
		}
	case models.RoleTeacher:
		if teacher, ok := models.FindTeacherByName(snapshot.Teachers, name); ok {
			return teacher.ID, teacher.Name, true
		}
	}
	return "", "", false
}
