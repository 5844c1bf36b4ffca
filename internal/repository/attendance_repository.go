package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

// AttendanceRepository persists per-period attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// UpsertBatch records one period's marks transactionally. Re-marking a
// (class, student, date, period) key replaces the prior status.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	const query = `INSERT INTO attendance_records (id, class_id, student_id, date, period, subject, status, created_at, updated_at)
VALUES (:id, :class_id, :student_id, :date, :period, :subject, :status, :created_at, :updated_at)
ON CONFLICT (class_id, student_id, date, period)
DO UPDATE SET subject = EXCLUDED.subject, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = now
		}
		records[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert attendance record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance tx: %w", err)
	}
	return nil
}

// ListByPeriod returns the marks for one (class, date, period).
func (r *AttendanceRepository) ListByPeriod(ctx context.Context, classID string, date time.Time, period int) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, class_id, student_id, date, period, subject, status, created_at, updated_at
FROM attendance_records WHERE class_id = $1 AND date = $2 AND period = $3 ORDER BY student_id ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, classID, date, period); err != nil {
		return nil, fmt.Errorf("list attendance by period: %w", err)
	}
	return records, nil
}

// Summarize aggregates per-student counts for a class over a date range.
func (r *AttendanceRepository) Summarize(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceSummary, error) {
	const query = `SELECT s.id AS student_id, s.roll_number, s.name,
       COALESCE(SUM(CASE WHEN a.status = 'PRESENT' THEN 1 ELSE 0 END), 0) AS present,
       COALESCE(SUM(CASE WHEN a.status = 'ABSENT' THEN 1 ELSE 0 END), 0) AS absent,
       COALESCE(SUM(CASE WHEN a.status = 'LATE' THEN 1 ELSE 0 END), 0) AS late
FROM students s
LEFT JOIN attendance_records a ON a.student_id = s.id AND a.class_id = $1 AND a.date BETWEEN $2 AND $3
WHERE s.class_id = $1
GROUP BY s.id, s.roll_number, s.name
ORDER BY s.roll_number ASC`
	var summaries []models.AttendanceSummary
	if err := r.db.SelectContext(ctx, &summaries, query, classID, from, to); err != nil {
		return nil, fmt.Errorf("summarize attendance: %w", err)
	}
	return summaries, nil
}
