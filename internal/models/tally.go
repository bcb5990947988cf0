package models

import (
	"fmt"
	"sort"
	"strings"
)

// AttendanceTally counts a student's attendance records per status for one month.
type AttendanceTally struct {
	Month   string `json:"month"`
	Present int    `json:"present"`
	Excused int    `json:"excused"`
	Sick    int    `json:"sick"`
	Absent  int    `json:"absent"`
}

// Total is the number of records counted in the tally.
func (t AttendanceTally) Total() int {
	return t.Present + t.Excused + t.Sick + t.Absent
}

func (t *AttendanceTally) add(status AttendanceStatus) {
	switch status {
	case AttendancePresent:
		t.Present++
	case AttendanceExcused:
		t.Excused++
	case AttendanceSick:
		t.Sick++
	case AttendanceAbsent:
		t.Absent++
	}
}

// MonthKey formats a year and 1-based month as "YYYY-MM".
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// TallyMonth counts the student's records whose date falls in the given month.
// Duplicate records for the same day are all counted.
func TallyMonth(records []AttendanceRecord, studentID string, year, month int) AttendanceTally {
	key := MonthKey(year, month)
	tally := AttendanceTally{Month: key}
	for _, record := range records {
		if record.StudentID != studentID || !strings.HasPrefix(record.Date, key) {
			continue
		}
		tally.add(record.Status)
	}
	return tally
}

// TallyByMonth groups every record of the student by "YYYY-MM", oldest month first.
// Records whose date is shorter than a month key are skipped.
func TallyByMonth(records []AttendanceRecord, studentID string) []AttendanceTally {
	byMonth := make(map[string]*AttendanceTally)
	for _, record := range records {
		if record.StudentID != studentID || len(record.Date) < 7 {
			continue
		}
		key := record.Date[:7]
		tally, ok := byMonth[key]
		if !ok {
			tally = &AttendanceTally{Month: key}
			byMonth[key] = tally
		}
		tally.add(record.Status)
	}

	months := make([]string, 0, len(byMonth))
	for key := range byMonth {
		months = append(months, key)
	}
	sort.Strings(months)

	result := make([]AttendanceTally, 0, len(months))
	for _, key := range months {
		result = append(result, *byMonth[key])
	}
	return result
}
