package models

import "time"

// ImportStatus is the state of an AI import session. An absent session is the
// idle state; the stored statuses cover the in-flight and settled variants.
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "PROCESSING"
	ImportStatusReview     ImportStatus = "REVIEW"
	ImportStatusError      ImportStatus = "ERROR"
)

// DetectedType says whether extracted profiles are classes or teachers.
type DetectedType string

const (
	DetectedClassWise   DetectedType = "CLASS_WISE"
	DetectedTeacherWise DetectedType = "TEACHER_WISE"
)

// ExtractedEntry is one normalized slot from the AI output. Code is the raw
// cross-reference exactly as extracted; resolution happens at finalize.
type ExtractedEntry struct {
	Subject string `json:"subject"`
	Room    string `json:"room,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ExtractedProfile is one named schedule from the AI output. Period keys stay
// in their original string form.
type ExtractedProfile struct {
	Name     string                               `json:"name"`
	Schedule map[string]map[string]ExtractedEntry `json:"schedule"`
}

// AiImportResult is the normalized extraction outcome held for review.
type AiImportResult struct {
	DetectedType    DetectedType       `json:"detected_type"`
	Profiles        []ExtractedProfile `json:"profiles"`
	UnknownCodes    []string           `json:"unknown_codes"`
	RawTextResponse string             `json:"raw_text_response,omitempty"`
}

// ImportSession is the transient review state between a completed extraction
// and finalize/cancel. RequestID guards against stale results: a result only
// applies while the session still awaits that exact request.
type ImportSession struct {
	ID               string          `json:"id"`
	RequestID        string          `json:"request_id"`
	Status           ImportStatus    `json:"status"`
	Result           *AiImportResult `json:"result,omitempty"`
	UnresolvedOwners []string        `json:"unresolved_owners,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	SourceFile       string          `json:"source_file,omitempty"`
	SourceMIME       string          `json:"source_mime,omitempty"`
	DroppedSlots     int             `json:"dropped_slots"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// FinalizeSummary reports what a finalize merged.
type FinalizeSummary struct {
	ProfilesMerged  int `json:"profiles_merged"`
	ProfilesDropped int `json:"profiles_dropped"`
	CellsWritten    int `json:"cells_written"`
}
