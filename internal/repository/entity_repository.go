package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

// EntityRepository provides persistence for class/teacher profiles.
type EntityRepository struct {
	db *sqlx.DB
}

// NewEntityRepository creates a new entity repository.
func NewEntityRepository(db *sqlx.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

// List returns profiles with optional filtering and pagination.
func (r *EntityRepository) List(ctx context.Context, filter models.EntityFilter) ([]models.EntityProfile, int, error) {
	base := "FROM entities WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR short_code ILIKE $%d)", len(args)+1, len(args)+2))
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"short_code": true,
		"type":       true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, short_code, type, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var entities []models.EntityProfile
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list entities: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count entities: %w", err)
	}

	return entities, total, nil
}

// FindByID loads a profile by id.
func (r *EntityRepository) FindByID(ctx context.Context, id string) (*models.EntityProfile, error) {
	const query = `SELECT id, name, short_code, type, created_at, updated_at FROM entities WHERE id = $1`
	var entity models.EntityProfile
	if err := r.db.GetContext(ctx, &entity, query, id); err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindByCodeOrName resolves a token against short_code or name,
// case-insensitively, scoped to a profile type. Used by grid resolution and
// import reconciliation.
func (r *EntityRepository) FindByCodeOrName(ctx context.Context, entityType models.EntityType, token string) (*models.EntityProfile, error) {
	const query = `SELECT id, name, short_code, type, created_at, updated_at FROM entities
WHERE type = $1 AND (LOWER(short_code) = LOWER($2) OR LOWER(name) = LOWER($2)) LIMIT 1`
	var entity models.EntityProfile
	if err := r.db.GetContext(ctx, &entity, query, entityType, token); err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindAnyByCodeOrName resolves a token against any profile regardless of type.
func (r *EntityRepository) FindAnyByCodeOrName(ctx context.Context, token string) (*models.EntityProfile, error) {
	const query = `SELECT id, name, short_code, type, created_at, updated_at FROM entities
WHERE LOWER(short_code) = LOWER($1) OR LOWER(name) = LOWER($1) LIMIT 1`
	var entity models.EntityProfile
	if err := r.db.GetContext(ctx, &entity, query, token); err != nil {
		return nil, err
	}
	return &entity, nil
}

// CountByType returns the number of registered profiles of one type.
func (r *EntityRepository) CountByType(ctx context.Context, entityType models.EntityType) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM entities WHERE type = $1`, entityType); err != nil {
		return 0, fmt.Errorf("count entities by type: %w", err)
	}
	return count, nil
}

// ExistsByCode reports whether a short code is already taken by another profile
// of the same type.
func (r *EntityRepository) ExistsByCode(ctx context.Context, entityType models.EntityType, code, excludeID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM entities WHERE type = $1 AND LOWER(short_code) = LOWER($2) AND id <> $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, entityType, code, excludeID); err != nil {
		return false, fmt.Errorf("check entity code: %w", err)
	}
	return count > 0, nil
}

// Create stores a new profile.
func (r *EntityRepository) Create(ctx context.Context, entity *models.EntityProfile) error {
	if entity.ID == "" {
		entity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	entity.UpdatedAt = now

	const query = `INSERT INTO entities (id, name, short_code, type, created_at, updated_at)
VALUES (:id, :name, :short_code, :type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entity); err != nil {
		return fmt.Errorf("create entity: %w", err)
	}
	return nil
}

// Update persists name/short_code changes.
func (r *EntityRepository) Update(ctx context.Context, entity *models.EntityProfile) error {
	entity.UpdatedAt = time.Now().UTC()
	const query = `UPDATE entities SET name = :name, short_code = :short_code, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, entity)
	if err != nil {
		return fmt.Errorf("update entity: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("update entity %s: no rows affected", entity.ID)
	}
	return nil
}

// Delete removes a profile and its schedule cells. Students keep their
// class_id; readers treat a dangling reference as unassigned.
func (r *EntityRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete entity tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_cells WHERE entity_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete entity cells: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete entity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete entity tx: %w", err)
	}
	return nil
}
