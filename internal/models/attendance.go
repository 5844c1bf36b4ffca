package models

import "time"

// AttendanceStatus for one student in one period.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

// Valid reports whether the status is a known value.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent || s == AttendanceLate
}

// AttendanceRecord marks one student for one (class, date, period). Re-marking
// the same key replaces the prior status.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Date      time.Time        `db:"date" json:"date"`
	Period    int              `db:"period" json:"period"`
	Subject   string           `db:"subject" json:"subject"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceSummary aggregates one student's record over a date range.
type AttendanceSummary struct {
	StudentID  string  `db:"student_id" json:"student_id"`
	RollNumber string  `db:"roll_number" json:"roll_number"`
	Name       string  `db:"name" json:"name"`
	Present    int     `db:"present" json:"present"`
	Absent     int     `db:"absent" json:"absent"`
	Late       int     `db:"late" json:"late"`
	Percentage float64 `json:"percentage"`
}
