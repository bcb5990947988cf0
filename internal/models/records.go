package models

// AttendanceStatus is the outcome of a daily attendance check.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceExcused AttendanceStatus = "excused"
	AttendanceSick    AttendanceStatus = "sick"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// AttendanceStatuses lists every status in display order.
var AttendanceStatuses = []AttendanceStatus{AttendancePresent, AttendanceExcused, AttendanceSick, AttendanceAbsent}

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceExcused, AttendanceSick, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord marks a student's status on a calendar day (YYYY-MM-DD).
// Several records for the same student and day are allowed.
type AttendanceRecord struct {
	ID        string           `json:"id"`
	StudentID string           `json:"studentId"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
}

// Violation is a behavioural infraction with a penalty score.
type Violation struct {
	ID        string  `json:"id"`
	StudentID string  `json:"studentId"`
	Type      string  `json:"type"`
	Score     float64 `json:"score"`
	Date      string  `json:"date"`
}

// Achievement is a recognition earned by a student.
type Achievement struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Title     string `json:"title"`
	Date      string `json:"date"`
}

// Grade is a daily subject score, nominally 0-100.
type Grade struct {
	ID        string  `json:"id"`
	StudentID string  `json:"studentId"`
	Subject   string  `json:"subject"`
	Score     float64 `json:"score"`
	Date      string  `json:"date"`
}

// Announcement is a school-wide message; Date uses "YYYY-MM-DD HH:MM".
type Announcement struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

// RecentForStudent returns up to limit items matching the student, newest first.
// Items are assumed to be stored oldest first.
func RecentForStudent[T any](items []T, limit int, match func(T) bool) []T {
	filtered := make([]T, 0)
	for _, item := range items {
		if match(item) {
			filtered = append(filtered, item)
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	reversed := make([]T, len(filtered))
	for i, item := range filtered {
		reversed[len(filtered)-1-i] = item
	}
	return reversed
}
