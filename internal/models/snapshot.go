package models

// Snapshot is the complete persisted state of the portal. Every collection is
// always present; Normalize turns nil collections into empty ones so that the
// encoded document never carries null arrays.
type Snapshot struct {
	Students      []Student          `json:"students"`
	Teachers      []Teacher          `json:"teachers"`
	Attendance    []AttendanceRecord `json:"attendance"`
	Violations    []Violation        `json:"violations"`
	Achievements  []Achievement      `json:"achievements"`
	Grades        []Grade            `json:"grades"`
	Announcements []Announcement     `json:"announcements"`
	Passwords     []Credential       `json:"passwords"`
}

// Normalize returns a copy of the snapshot with nil collections replaced by empty slices.
func (s Snapshot) Normalize() Snapshot {
	if s.Students == nil {
		s.Students = []Student{}
	}
	if s.Teachers == nil {
		s.Teachers = []Teacher{}
	}
	if s.Attendance == nil {
		s.Attendance = []AttendanceRecord{}
	}
	if s.Violations == nil {
		s.Violations = []Violation{}
	}
	if s.Achievements == nil {
		s.Achievements = []Achievement{}
	}
	if s.Grades == nil {
		s.Grades = []Grade{}
	}
	if s.Announcements == nil {
		s.Announcements = []Announcement{}
	}
	if s.Passwords == nil {
		s.Passwords = []Credential{}
	}
	return s
}

// Clone returns a deep copy so callers can derive a new snapshot without
// aliasing the collections of the old one.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Students:      append([]Student{}, s.Students...),
		Teachers:      append([]Teacher{}, s.Teachers...),
		Attendance:    append([]AttendanceRecord{}, s.Attendance...),
		Violations:    append([]Violation{}, s.Violations...),
		Achievements:  append([]Achievement{}, s.Achievements...),
		Grades:        append([]Grade{}, s.Grades...),
		Announcements: append([]Announcement{}, s.Announcements...),
		Passwords:     append([]Credential{}, s.Passwords...),
	}
}

// Fixture returns the seed snapshot written on first use.
func Fixture() Snapshot {
	return Snapshot{
		Students: []Student{
			{
				ID:         "stu-001",
				Name:       "Budi Santoso",
				NISN:       "1234567890",
				BirthPlace: "Gresik",
				BirthDate:  "2014-08-12",
				WaliKelas:  "Ust. Ahmad",
				PhotoURL:   "",
				ParentWA:   "6281234567890",
			},
		},
		Teachers: []Teacher{
			{
				ID:        "t-001",
				Name:      "Guru Admin",
				WaliKelas: "Kelas 6",
				PhotoURL:  "",
			},
		},
		Attendance:    []AttendanceRecord{},
		Violations:    []Violation{},
		Achievements:  []Achievement{},
		Grades:        []Grade{},
		Announcements: []Announcement{},
		Passwords: []Credential{
			{Role: RoleTeacher, UserID: "t-001", Password: "admin123"},
			{Role: RoleStudent, UserID: "stu-001", Password: "budi123"},
		},
	}
}
