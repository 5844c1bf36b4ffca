package models

import "time"

// Setting keys persisted by the settings repository.
const (
	SettingSchoolName   = "school_name"
	SettingAcademicYear = "academic_year"
	SettingTimeSlots    = "time_slots"
)

// Setting is one key/value row.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TimeSlot maps a period number to its display time range. The ordered slot
// sequence defines the grid columns; editing it never rewrites stored cells.
type TimeSlot struct {
	Period    int    `json:"period"`
	TimeRange string `json:"time_range"`
}

// SchoolSettings is the assembled settings view.
type SchoolSettings struct {
	SchoolName   string     `json:"school_name"`
	AcademicYear string     `json:"academic_year"`
	TimeSlots    []TimeSlot `json:"time_slots"`
}
