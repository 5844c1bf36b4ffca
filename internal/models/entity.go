package models

import "time"

// EntityType discriminates registry profiles.
type EntityType string

const (
	EntityTypeClass   EntityType = "CLASS"
	EntityTypeTeacher EntityType = "TEACHER"
)

// Valid reports whether the type is one of the known profile kinds.
func (t EntityType) Valid() bool {
	return t == EntityTypeClass || t == EntityTypeTeacher
}

// EntityProfile represents a class or teacher profile in the registry.
// ShortCode is the uppercase identifier used for cross-referencing inside
// schedule cells and AI import mappings.
type EntityProfile struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	ShortCode string     `db:"short_code" json:"short_code"`
	Type      EntityType `db:"type" json:"type"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// EntityFilter defines filter criteria for listing profiles.
type EntityFilter struct {
	Type      EntityType
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
