package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

// ScheduleRepository persists schedule cells, one row per (entity, day, period).
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByEntity returns all cells for one profile ordered by day/period.
func (r *ScheduleRepository) ListByEntity(ctx context.Context, entityID string) ([]models.ScheduleCell, error) {
	const query = `SELECT entity_id, day, period, subject, room, counterpart_code, created_at, updated_at
FROM schedule_cells WHERE entity_id = $1 ORDER BY day ASC, period ASC`
	var cells []models.ScheduleCell
	if err := r.db.SelectContext(ctx, &cells, query, entityID); err != nil {
		return nil, fmt.Errorf("list schedule cells: %w", err)
	}
	return cells, nil
}

// ListByDay returns every profile's cells for one day (dashboard snapshot).
func (r *ScheduleRepository) ListByDay(ctx context.Context, day string) ([]models.ScheduleCell, error) {
	const query = `SELECT entity_id, day, period, subject, room, counterpart_code, created_at, updated_at
FROM schedule_cells WHERE day = $1 ORDER BY entity_id ASC, period ASC`
	var cells []models.ScheduleCell
	if err := r.db.SelectContext(ctx, &cells, query, day); err != nil {
		return nil, fmt.Errorf("list schedule cells by day: %w", err)
	}
	return cells, nil
}

// UpsertCell sets one cell, replacing any existing entry wholesale.
func (r *ScheduleRepository) UpsertCell(ctx context.Context, cell *models.ScheduleCell) error {
	now := time.Now().UTC()
	if cell.CreatedAt.IsZero() {
		cell.CreatedAt = now
	}
	cell.UpdatedAt = now

	const query = `INSERT INTO schedule_cells (entity_id, day, period, subject, room, counterpart_code, created_at, updated_at)
VALUES (:entity_id, :day, :period, :subject, :room, :counterpart_code, :created_at, :updated_at)
ON CONFLICT (entity_id, day, period)
DO UPDATE SET subject = EXCLUDED.subject, room = EXCLUDED.room,
              counterpart_code = EXCLUDED.counterpart_code, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, cell); err != nil {
		return fmt.Errorf("upsert schedule cell: %w", err)
	}
	return nil
}

// DeleteCell clears one cell. Clearing an empty cell is a no-op.
func (r *ScheduleRepository) DeleteCell(ctx context.Context, entityID, day string, period int) error {
	const query = `DELETE FROM schedule_cells WHERE entity_id = $1 AND day = $2 AND period = $3`
	if _, err := r.db.ExecContext(ctx, query, entityID, day, period); err != nil {
		return fmt.Errorf("delete schedule cell: %w", err)
	}
	return nil
}

// BulkUpsert writes a batch of cells inside one transaction (import finalize).
func (r *ScheduleRepository) BulkUpsert(ctx context.Context, cells []models.ScheduleCell) error {
	if len(cells) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk cell tx: %w", err)
	}
	const query = `INSERT INTO schedule_cells (entity_id, day, period, subject, room, counterpart_code, created_at, updated_at)
VALUES (:entity_id, :day, :period, :subject, :room, :counterpart_code, :created_at, :updated_at)
ON CONFLICT (entity_id, day, period)
DO UPDATE SET subject = EXCLUDED.subject, room = EXCLUDED.room,
              counterpart_code = EXCLUDED.counterpart_code, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range cells {
		if cells[i].CreatedAt.IsZero() {
			cells[i].CreatedAt = now
		}
		cells[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, cells[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert schedule cell: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk cell tx: %w", err)
	}
	return nil
}
