package models

import "time"

// Student is a roster entry. ClassID is a weak reference to a CLASS profile;
// a dangling ClassID after a class deletion means "unassigned".
type Student struct {
	ID         string    `db:"id" json:"id"`
	RollNumber string    `db:"roll_number" json:"roll_number"`
	Name       string    `db:"name" json:"name"`
	ClassID    string    `db:"class_id" json:"class_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail adds the resolved class name when the reference still holds.
type StudentDetail struct {
	Student
	ClassName *string `db:"class_name" json:"class_name,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	ClassID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// BulkAddResult reports how many lines of a bulk paste became students.
type BulkAddResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}
