package dto

import (
	"strings"
	"time"

	"github.com/noah-isme/mikoro-portal/internal/models"
)

const (
	// DateLayout is the calendar-day format used by every dated record.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the minute-precision format used by announcements.
	DateTimeLayout = "2006-01-02 15:04"
)

// StudentInput creates or updates a student. An empty ID creates a new
// student; an empty Password leaves the student's credential untouched.
type StudentInput struct {
	ID         string `json:"id" validate:"omitempty,max=64"`
	Name       string `json:"name" validate:"required,max=120"`
	NISN       string `json:"nisn" validate:"omitempty,max=20"`
	BirthPlace string `json:"birthPlace" validate:"omitempty,max=80"`
	BirthDate  string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	WaliKelas  string `json:"waliKelas" validate:"omitempty,max=80"`
	PhotoURL   string `json:"photoUrl" validate:"omitempty,url"`
	ParentWA   string `json:"parentWa" validate:"omitempty,max=32"`
	Password   string `json:"password" validate:"omitempty,max=128"`
}

// Normalize trims surrounding whitespace from every field except the password.
func (in *StudentInput) Normalize() {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.NISN = strings.TrimSpace(in.NISN)
	in.BirthPlace = strings.TrimSpace(in.BirthPlace)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.WaliKelas = strings.TrimSpace(in.WaliKelas)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
	in.ParentWA = strings.TrimSpace(in.ParentWA)
}

// ProfileInput is a student's self-service edit. Empty fields keep the stored value.
type ProfileInput struct {
	Name       string `json:"name" validate:"omitempty,max=120"`
	NISN       string `json:"nisn" validate:"omitempty,max=20"`
	BirthPlace string `json:"birthPlace" validate:"omitempty,max=80"`
	BirthDate  string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	WaliKelas  string `json:"waliKelas" validate:"omitempty,max=80"`
	PhotoURL   string `json:"photoUrl" validate:"omitempty,url"`
}

// AttendanceInput records a daily attendance status. Defaults: Status
// "present", Date today (UTC).
type AttendanceInput struct {
	StudentID string `json:"studentId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=present excused sick absent"`
}

// ApplyDefaults fills omitted fields.
func (in *AttendanceInput) ApplyDefaults(now time.Time) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.Status == "" {
		in.Status = string(models.AttendancePresent)
	}
	if strings.TrimSpace(in.Date) == "" {
		in.Date = now.Format(DateLayout)
	}
}

// ViolationInput records a violation. Defaults: Score 0. The date is always
// the UTC day the violation is recorded.
type ViolationInput struct {
	StudentID string  `json:"studentId" validate:"required"`
	Type      string  `json:"type" validate:"required,max=200"`
	Score     float64 `json:"score" validate:"gte=0"`
}

// ApplyDefaults trims identifiers.
func (in *ViolationInput) ApplyDefaults() {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Type = strings.TrimSpace(in.Type)
}

// AchievementInput records an achievement. Defaults: Date today.
type AchievementInput struct {
	StudentID string `json:"studentId" validate:"required"`
	Title     string `json:"title" validate:"required,max=200"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ApplyDefaults fills omitted fields.
func (in *AchievementInput) ApplyDefaults(now time.Time) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Title = strings.TrimSpace(in.Title)
	if strings.TrimSpace(in.Date) == "" {
		in.Date = now.Format(DateLayout)
	}
}

// GradeInput records a daily grade. Defaults: Score 0, Date today. The score
// is not range checked but must be finite.
type GradeInput struct {
	StudentID string  `json:"studentId" validate:"required"`
	Subject   string  `json:"subject" validate:"required,max=80"`
	Score     float64 `json:"score"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// ApplyDefaults fills omitted fields.
func (in *GradeInput) ApplyDefaults(now time.Time) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Subject = strings.TrimSpace(in.Subject)
	if strings.TrimSpace(in.Date) == "" {
		in.Date = now.Format(DateLayout)
	}
}

// AnnouncementInput posts a school-wide message stamped with the current time.
type AnnouncementInput struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// CredentialInput sets a principal's password.
type CredentialInput struct {
	Role     string `json:"role" validate:"required,oneof=student teacher"`
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required,max=128"`
}

// StudentRecordsResponse is the per-student view: recent records newest first.
type StudentRecordsResponse struct {
	Student       models.Student            `json:"student"`
	Attendance    []models.AttendanceRecord `json:"attendance"`
	Violations    []models.Violation        `json:"violations"`
	Achievements  []models.Achievement      `json:"achievements"`
	Grades        []models.Grade            `json:"grades"`
	Announcements []models.Announcement     `json:"announcements"`
	CurrentMonth  models.AttendanceTally    `json:"currentMonth"`
}

// TallyResponse carries the tally of one month plus every month on record.
type TallyResponse struct {
	StudentID string                   `json:"studentId"`
	Month     models.AttendanceTally   `json:"month"`
	History   []models.AttendanceTally `json:"history"`
}
