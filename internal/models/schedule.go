package models

import "time"

// Days is the canonical ordered day-of-week key set used by schedules.
var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// IsDay reports whether the key is one of the canonical day symbols.
func IsDay(key string) bool {
	for _, d := range Days {
		if d == key {
			return true
		}
	}
	return false
}

// ScheduleCell is the persisted form of one (day, period) cell.
// CounterpartCode is a weak reference by code or name: for a CLASS owner it
// names a teacher, for a TEACHER owner it names a class. It is resolved
// against the registry at read time, never stored as a link.
type ScheduleCell struct {
	EntityID        string    `db:"entity_id" json:"entity_id"`
	Day             string    `db:"day" json:"day"`
	Period          int       `db:"period" json:"period"`
	Subject         string    `db:"subject" json:"subject"`
	Room            string    `db:"room" json:"room"`
	CounterpartCode string    `db:"counterpart_code" json:"counterpart_code"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ResolvedEntry is a cell enriched with the display name behind its code.
type ResolvedEntry struct {
	Subject        string `json:"subject"`
	Room           string `json:"room,omitempty"`
	TeacherOrClass string `json:"teacher_or_class,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
}

// TimetableGrid is the assembled weekly view for one profile: only configured
// slots appear as columns, whatever periods may exist in storage.
type TimetableGrid struct {
	EntityID   string                           `json:"entity_id"`
	EntityName string                           `json:"entity_name"`
	EntityType EntityType                       `json:"entity_type"`
	Days       []string                         `json:"days"`
	Slots      []TimeSlot                       `json:"slots"`
	Cells      map[string]map[int]ResolvedEntry `json:"cells"`
}
