package service

import (
	"context"
	"errors"
	"html"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/models"
	"github.com/noah-isme/mikoro-portal/internal/repository"
)

// recentLimit bounds the per-student record lists shown on dashboards.
const recentLimit = 20

var (
	// ErrStudentNotFound indicates the referenced student is not in the snapshot.
	ErrStudentNotFound = errors.New("student not found")
	// ErrTeacherNotFound indicates the referenced teacher is not in the snapshot.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrEmptyText indicates a free-text field was empty after sanitisation.
	ErrEmptyText = errors.New("text empty after sanitization")
	// ErrInvalidMonth indicates a tally month outside 1-12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	// ErrInvalidScore indicates a score that is NaN or infinite.
	ErrInvalidScore = errors.New("score must be a finite number")
)

// maxSanitizePasses bounds how many unescape rounds a value may need before
// it is accepted.
const maxSanitizePasses = 4

// RecordService derives new snapshots for every domain mutation and serves
// the read-side projections used by dashboards.
//
// Mutations from this process never interleave, but nothing coordinates with
// other processes sharing the same storage: the last save wins.
type RecordService interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	SaveStudent(ctx context.Context, input dto.StudentInput) (models.Student, error)
	UpdateProfile(ctx context.Context, studentID string, input dto.ProfileInput) (models.Student, error)
	UpsertCredential(ctx context.Context, input dto.CredentialInput) error
	RecordAttendance(ctx context.Context, input dto.AttendanceInput) (models.AttendanceRecord, error)
	RecordViolation(ctx context.Context, input dto.ViolationInput) (models.Violation, error)
	RecordAchievement(ctx context.Context, input dto.AchievementInput) (models.Achievement, error)
	RecordGrade(ctx context.Context, input dto.GradeInput) (models.Grade, error)
	PostAnnouncement(ctx context.Context, input dto.AnnouncementInput) (models.Announcement, error)
	ListAnnouncements(ctx context.Context, limit int) ([]models.Announcement, error)
	StudentRecords(ctx context.Context, studentID string) (dto.StudentRecordsResponse, error)
	MonthlyTally(ctx context.Context, studentID string, year, month int) (dto.TallyResponse, error)
}

type recordService struct {
	snapshots repository.SnapshotRepository
	events    EventBus
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string

	mu sync.Mutex
}

// NewRecordService constructs the record service. events may be nil.
func NewRecordService(snapshots repository.SnapshotRepository, events EventBus, validate *validator.Validate, logger zerolog.Logger) RecordService {
	return &recordService{
		snapshots: snapshots,
		events:    events,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "record_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/mikoro-portal/internal/service/records"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *recordService) Snapshot(ctx context.Context) (models.Snapshot, error) {
	return s.snapshots.Load(ctx)
}

func (s *recordService) ListStudents(ctx context.Context) ([]models.Student, error) {
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Students, nil
}

func (s *recordService) SaveStudent(ctx context.Context, input dto.StudentInput) (models.Student, error) {
	input.Normalize()
	if err := s.validator.Struct(input); err != nil {
		return models.Student{}, err
	}

	var saved models.Student
	_, err := s.mutate(ctx, "records.save_student", func(next *models.Snapshot) error {
		id := input.ID
		if id == "" {
			id = s.newID()
		} else if _, exists := models.FindStudent(next.Students, id); !exists {
			id = s.newID()
		}

		saved = models.Student{
			ID:         id,
			Name:       input.Name,
			NISN:       input.NISN,
			BirthPlace: input.BirthPlace,
			BirthDate:  input.BirthDate,
			WaliKelas:  input.WaliKelas,
			PhotoURL:   input.PhotoURL,
			ParentWA:   input.ParentWA,
		}
		next.Students = models.UpsertStudent(next.Students, saved)
		if input.Password != "" {
			next.Passwords = models.UpsertCredential(next.Passwords, models.Credential{
				Role:     models.RoleStudent,
				UserID:   id,
				Password: input.Password,
			})
		}
		return nil
	})
	if err != nil {
		return models.Student{}, err
	}

	logger := contextLogger(ctx, s.logger)
	logger.Info().Str("student_id", saved.ID).Msg("student saved")
	s.publish(ctx, EventStudentSaved, &saved, saved)
	return saved, nil
}

func (s *recordService) UpdateProfile(ctx context.Context, studentID string, input dto.ProfileInput) (models.Student, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.Student{}, err
	}

	var updated models.Student
	_, err := s.mutate(ctx, "records.update_profile", func(next *models.Snapshot) error {
		current, ok := models.FindStudent(next.Students, studentID)
		if !ok {
			return ErrStudentNotFound
		}
		updated = current
		updated.Name = keepIfEmpty(input.Name, current.Name)
		updated.NISN = keepIfEmpty(input.NISN, current.NISN)
		updated.BirthPlace = keepIfEmpty(input.BirthPlace, current.BirthPlace)
		updated.BirthDate = keepIfEmpty(input.BirthDate, current.BirthDate)
		updated.WaliKelas = keepIfEmpty(input.WaliKelas, current.WaliKelas)
		updated.PhotoURL = keepIfEmpty(input.PhotoURL, current.PhotoURL)
		next.Students = models.UpsertStudent(next.Students, updated)
		return nil
	})
	if err != nil {
		return models.Student{}, err
	}

	s.publish(ctx, EventStudentSaved, &updated, updated)
	return updated, nil
}

func (s *recordService) UpsertCredential(ctx context.Context, input dto.CredentialInput) error {
	if err := s.validator.Struct(input); err != nil {
		return err
	}
	role, ok := models.ParseRole(input.Role)
	if !ok {
		return ErrInvalidRole
	}

	_, err := s.mutate(ctx, "records.upsert_credential", func(next *models.Snapshot) error {
		switch role {
		case models.RoleStudent:
			if _, ok := models.FindStudent(next.Students, input.UserID); !ok {
				return ErrStudentNotFound
			}
		case models.RoleTeacher:
			if _, ok := models.FindTeacher(next.Teachers, input.UserID); !ok {
				return ErrTeacherNotFound
			}
		}
		next.Passwords = models.UpsertCredential(next.Passwords, models.Credential{
			Role:     role,
			UserID:   input.UserID,
			Password: input.Password,
		})
		return nil
	})
	return err
}

func (s *recordService) RecordAttendance(ctx context.Context, input dto.AttendanceInput) (models.AttendanceRecord, error) {
	input.ApplyDefaults(s.today())
	if err := s.validator.Struct(input); err != nil {
		return models.AttendanceRecord{}, err
	}

	record := models.AttendanceRecord{
		ID:        s.newID(),
		StudentID: input.StudentID,
		Date:      input.Date,
		Status:    models.AttendanceStatus(input.Status),
	}
	student, err := s.appendFor(ctx, "records.attendance", input.StudentID, func(next *models.Snapshot) {
		next.Attendance = append(next.Attendance, record)
	})
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	s.publish(ctx, EventAttendanceRecorded, &student, record)
	return record, nil
}

func (s *recordService) RecordViolation(ctx context.Context, input dto.ViolationInput) (models.Violation, error) {
	input.ApplyDefaults()
	input.Type = s.sanitize(input.Type)
	if !finite(input.Score) {
		return models.Violation{}, ErrInvalidScore
	}
	if err := s.validator.Struct(input); err != nil {
		if input.Type == "" {
			return models.Violation{}, ErrEmptyText
		}
		return models.Violation{}, err
	}

	record := models.Violation{
		ID:        s.newID(),
		StudentID: input.StudentID,
		Type:      input.Type,
		Score:     input.Score,
		Date:      s.today().Format(dto.DateLayout),
	}
	student, err := s.appendFor(ctx, "records.violation", input.StudentID, func(next *models.Snapshot) {
		next.Violations = append(next.Violations, record)
	})
	if err != nil {
		return models.Violation{}, err
	}

	logger := contextLogger(ctx, s.logger)
	logger.Info().Str("student_id", record.StudentID).Float64("score", record.Score).Msg("violation recorded")
	s.publish(ctx, EventViolationRecorded, &student, record)
	return record, nil
}

func (s *recordService) RecordAchievement(ctx context.Context, input dto.AchievementInput) (models.Achievement, error) {
	input.ApplyDefaults(s.today())
	input.Title = s.sanitize(input.Title)
	if err := s.validator.Struct(input); err != nil {
		if input.Title == "" {
			return models.Achievement{}, ErrEmptyText
		}
		return models.Achievement{}, err
	}

	record := models.Achievement{
		ID:        s.newID(),
		StudentID: input.StudentID,
		Title:     input.Title,
		Date:      input.Date,
	}
	student, err := s.appendFor(ctx, "records.achievement", input.StudentID, func(next *models.Snapshot) {
		next.Achievements = append(next.Achievements, record)
	})
	if err != nil {
		return models.Achievement{}, err
	}

	s.publish(ctx, EventAchievementRecorded, &student, record)
	return record, nil
}

func (s *recordService) RecordGrade(ctx context.Context, input dto.GradeInput) (models.Grade, error) {
	input.ApplyDefaults(s.today())
	if !finite(input.Score) {
		return models.Grade{}, ErrInvalidScore
	}
	if err := s.validator.Struct(input); err != nil {
		return models.Grade{}, err
	}

	record := models.Grade{
		ID:        s.newID(),
		StudentID: input.StudentID,
		Subject:   input.Subject,
		Score:     input.Score,
		Date:      input.Date,
	}
	student, err := s.appendFor(ctx, "records.grade", input.StudentID, func(next *models.Snapshot) {
		next.Grades = append(next.Grades, record)
	})
	if err != nil {
		return models.Grade{}, err
	}

	s.publish(ctx, EventGradeRecorded, &student, record)
	return record, nil
}

func (s *recordService) PostAnnouncement(ctx context.Context, input dto.AnnouncementInput) (models.Announcement, error) {
	input.Message = s.sanitize(input.Message)
	if err := s.validator.Struct(input); err != nil {
		if input.Message == "" {
			return models.Announcement{}, ErrEmptyText
		}
		return models.Announcement{}, err
	}

	record := models.Announcement{
		ID:      s.newID(),
		Message: input.Message,
		Date:    s.today().Format(dto.DateTimeLayout),
	}
	_, err := s.mutate(ctx, "records.announcement", func(next *models.Snapshot) error {
		next.Announcements = append([]models.Announcement{record}, next.Announcements...)
		return nil
	})
	if err != nil {
		return models.Announcement{}, err
	}

	s.publish(ctx, EventAnnouncementPosted, nil, record)
	return record, nil
}

// ListAnnouncements returns the newest announcements first; limit <= 0 returns all.
func (s *recordService) ListAnnouncements(ctx context.Context, limit int) ([]models.Announcement, error) {
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	items := snapshot.Announcements
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *recordService) StudentRecords(ctx context.Context, studentID string) (dto.StudentRecordsResponse, error) {
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return dto.StudentRecordsResponse{}, err
	}
	student, ok := models.FindStudent(snapshot.Students, studentID)
	if !ok {
		return dto.StudentRecordsResponse{}, ErrStudentNotFound
	}

	announcements := snapshot.Announcements
	if len(announcements) > recentLimit {
		announcements = announcements[:recentLimit]
	}

	now := s.today()
	return dto.StudentRecordsResponse{
		Student: student,
		Attendance: models.RecentForStudent(snapshot.Attendance, recentLimit, func(r models.AttendanceRecord) bool {
			return r.StudentID == studentID
		}),
		Violations: models.RecentForStudent(snapshot.Violations, recentLimit, func(r models.Violation) bool {
			return r.StudentID == studentID
		}),
		Achievements: models.RecentForStudent(snapshot.Achievements, recentLimit, func(r models.Achievement) bool {
			return r.StudentID == studentID
		}),
		Grades: models.RecentForStudent(snapshot.Grades, recentLimit, func(r models.Grade) bool {
			return r.StudentID == studentID
		}),
		Announcements: announcements,
		CurrentMonth:  models.TallyMonth(snapshot.Attendance, studentID, now.Year(), int(now.Month())),
	}, nil
}

func (s *recordService) MonthlyTally(ctx context.Context, studentID string, year, month int) (dto.TallyResponse, error) {
	if month < 1 || month > 12 {
		return dto.TallyResponse{}, ErrInvalidMonth
	}
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return dto.TallyResponse{}, err
	}
	if _, ok := models.FindStudent(snapshot.Students, studentID); !ok {
		return dto.TallyResponse{}, ErrStudentNotFound
	}

	return dto.TallyResponse{
		StudentID: studentID,
		Month:     models.TallyMonth(snapshot.Attendance, studentID, year, month),
		History:   models.TallyByMonth(snapshot.Attendance, studentID),
	}, nil
}

// appendFor runs an append mutation after checking the student exists and
// returns that student for the follow-up event.
func (s *recordService) appendFor(ctx context.Context, operation, studentID string, apply func(next *models.Snapshot)) (models.Student, error) {
	var student models.Student
	_, err := s.mutate(ctx, operation, func(next *models.Snapshot) error {
		found, ok := models.FindStudent(next.Students, studentID)
		if !ok {
			return ErrStudentNotFound
		}
		student = found
		apply(next)
		return nil
	})
	return student, err
}

// mutate loads the current snapshot, applies fn to a copy and saves the
// copy as a whole. Nothing is written when fn fails.
func (s *recordService) mutate(ctx context.Context, operation string, fn func(next *models.Snapshot) error) (models.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, operation)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.snapshots.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return models.Snapshot{}, err
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		span.RecordError(err)
		return models.Snapshot{}, err
	}

	if err := s.snapshots.Save(ctx, next); err != nil {
		span.RecordError(err)
		return models.Snapshot{}, err
	}
	span.SetAttributes(attribute.Int("records.students", len(next.Students)))
	return next, nil
}

func (s *recordService) publish(ctx context.Context, eventType EventType, student *models.Student, record interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, eventType, student, record)
}

// today is the current instant in UTC; every stored date uses the UTC day.
func (s *recordService) today() time.Time {
	return s.now().UTC()
}

// sanitize strips markup and stores plain text. Entity-escaped markup is
// unescaped and stripped again until the value no longer changes, so no
// round of unescaping can produce a tag.
func (s *recordService) sanitize(value string) string {
	current := value
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.sanitizer.Sanitize(current))
		if next == current {
			return strings.TrimSpace(next)
		}
		current = next
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(current))
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func keepIfEmpty(value, current string) string {
	if strings.TrimSpace(value) == "" {
		return current
	}
	return strings.TrimSpace(value)
}
