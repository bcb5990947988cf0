package models

import "strings"

// Role identifies which principal collection a credential or session refers to.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// ParseRole normalises a role string, reporting false for unknown values.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleTeacher:
		return RoleTeacher, true
	default:
		return "", false
	}
}

// Student is a learner enrolled at the school.
type Student struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NISN       string `json:"nisn"`
	BirthPlace string `json:"birthPlace"`
	BirthDate  string `json:"birthDate"`
	WaliKelas  string `json:"waliKelas"`
	PhotoURL   string `json:"photoUrl"`
	ParentWA   string `json:"parentWa"`
}

// Teacher is a staff member allowed to record student data.
type Teacher struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	WaliKelas string `json:"waliKelas"`
	PhotoURL  string `json:"photoUrl"`
}

// Credential maps a principal to its plaintext password.
type Credential struct {
	Role     Role   `json:"role"`
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// Session is the single authenticated principal of a client.
type Session struct {
	Role   Role   `json:"role"`
	UserID string `json:"userId"`
}

// FindStudentByName returns the first student whose name matches case-insensitively.
func FindStudentByName(students []Student, name string) (Student, bool) {
	for _, student := range students {
		if strings.EqualFold(student.Name, name) {
			return student, true
		}
	}
	return Student{}, false
}

// FindTeacherByName returns the first teacher whose name matches case-insensitively.
func FindTeacherByName(teachers []Teacher, name string) (Teacher, bool) {
	for _, teacher := range teachers {
		if strings.EqualFold(teacher.Name, name) {
			return teacher, true
		}
	}
	return Teacher{}, false
}

// FindStudent looks a student up by id.
func FindStudent(students []Student, id string) (Student, bool) {
	for _, student := range students {
		if student.ID == id {
			return student, true
		}
	}
	return Student{}, false
}

// FindTeacher looks a teacher up by id.
func FindTeacher(teachers []Teacher, id string) (Teacher, bool) {
	for _, teacher := range teachers {
		if teacher.ID == id {
			return teacher, true
		}
	}
	return Teacher{}, false
}

// FindCredential returns the credential registered for (role, userID).
func FindCredential(credentials []Credential, role Role, userID string) (Credential, bool) {
	for _, credential := range credentials {
		if credential.Role == role && credential.UserID == userID {
			return credential, true
		}
	}
	return Credential{}, false
}

// UpsertStudent replaces the student with the same id in place, or appends it.
// The input slice is never modified.
func UpsertStudent(students []Student, student Student) []Student {
	next := make([]Student, 0, len(students)+1)
	replaced := false
	for _, existing := range students {
		if !replaced && existing.ID == student.ID {
			next = append(next, student)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, student)
	}
	return next
}

// UpsertCredential replaces the credential for (role, userID) in place, or appends it.
func UpsertCredential(credentials []Credential, credential Credential) []Credential {
	next := make([]Credential, 0, len(credentials)+1)
	replaced := false
	for _, existing := range credentials {
		if !replaced && existing.Role == credential.Role && existing.UserID == credential.UserID {
			next = append(next, credential)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, credential)
	}
	return next
}
