package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type scheduleRepository interface {
	ListByEntity(ctx context.Context, entityID string) ([]models.ScheduleCell, error)
	UpsertCell(ctx context.Context, cell *models.ScheduleCell) error
	DeleteCell(ctx context.Context, entityID, day string, period int) error
	BulkUpsert(ctx context.Context, cells []models.ScheduleCell) error
}

type slotSource interface {
	TimeSlots(ctx context.Context) ([]models.TimeSlot, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SetCellRequest writes one (day, period) cell for a profile.
type SetCellRequest struct {
	Day            string `json:"day" validate:"required"`
	Period         int    `json:"period" validate:"required,min=1"`
	Subject        string `json:"subject" validate:"required"`
	Room           string `json:"room"`
	TeacherOrClass string `json:"teacher_or_class"`
}

// ScheduleService manages weekly schedules and assembles timetable grids.
type ScheduleService struct {
	repo      scheduleRepository
	entities  entityRepository
	slots     slotSource
	cache     cacheStore
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, entities entityRepository, slots slotSource, cache cacheStore, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ScheduleService{
		repo:      repo,
		entities:  entities,
		slots:     slots,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// SetCell replaces the content of one cell wholesale. Setting an occupied cell
// overwrites it; there is no merge.
func (s *ScheduleService) SetCell(ctx context.Context, entityID string, req SetCellRequest) (*models.ScheduleCell, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule cell payload")
	}
	if !models.IsDay(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be one of Mon..Sun")
	}
	if _, err := s.entities.FindByID(ctx, entityID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entity not found")
	}

	cell := &models.ScheduleCell{
		EntityID:        entityID,
		Day:             req.Day,
		Period:          req.Period,
		Subject:         strings.TrimSpace(req.Subject),
		Room:            strings.TrimSpace(req.Room),
		CounterpartCode: strings.TrimSpace(req.TeacherOrClass),
	}
	if err := s.repo.UpsertCell(ctx, cell); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule cell")
	}

	s.invalidate(ctx)
	return cell, nil
}

// ClearCell removes one cell. Clearing an already empty cell is a no-op.
func (s *ScheduleService) ClearCell(ctx context.Context, entityID, day string, period int) error {
	if !models.IsDay(day) {
		return appErrors.Clone(appErrors.ErrValidation, "day must be one of Mon..Sun")
	}
	if period < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "period must be at least 1")
	}
	if _, err := s.entities.FindByID(ctx, entityID); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "entity not found")
	}
	if err := s.repo.DeleteCell(ctx, entityID, day, period); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear schedule cell")
	}
	s.invalidate(ctx)
	return nil
}

// Grid assembles the weekly timetable for one profile. Only configured time
// slots become columns; stored cells outside the slot sequence stay persisted
// but do not render. Counterpart codes resolve to display names at read time.
func (s *ScheduleService) Grid(ctx context.Context, entityID string) (*models.TimetableGrid, error) {
	cacheKey := "grid:" + entityID
	if s.cache != nil {
		var cached models.TimetableGrid
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	entity, err := s.entities.FindByID(ctx, entityID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entity not found")
	}

	slots, err := s.slots.TimeSlots(ctx)
	if err != nil {
		return nil, err
	}
	rendered := make(map[int]bool, len(slots))
	for _, slot := range slots {
		rendered[slot.Period] = true
	}

	cells, err := s.repo.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	grid := &models.TimetableGrid{
		EntityID:   entity.ID,
		EntityName: entity.Name,
		EntityType: entity.Type,
		Days:       models.Days,
		Slots:      slots,
		Cells:      make(map[string]map[int]models.ResolvedEntry),
	}

	counterType := models.EntityTypeTeacher
	if entity.Type == models.EntityTypeTeacher {
		counterType = models.EntityTypeClass
	}
	resolved := make(map[string]string)

	for _, cell := range cells {
		if !models.IsDay(cell.Day) || !rendered[cell.Period] {
			continue
		}
		if grid.Cells[cell.Day] == nil {
			grid.Cells[cell.Day] = make(map[int]models.ResolvedEntry)
		}
		entry := models.ResolvedEntry{
			Subject:        cell.Subject,
			Room:           cell.Room,
			TeacherOrClass: cell.CounterpartCode,
		}
		if cell.CounterpartCode != "" {
			entry.DisplayName = s.resolveCounterpart(ctx, counterType, cell.CounterpartCode, resolved)
		}
		grid.Cells[cell.Day][cell.Period] = entry
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, grid, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache timetable grid", zap.String("entity_id", entityID), zap.Error(err))
		}
	}
	return grid, nil
}

// resolveCounterpart turns a stored code into a display name, first against
// the opposite profile type, then against any profile. Unresolvable codes
// display verbatim.
func (s *ScheduleService) resolveCounterpart(ctx context.Context, counterType models.EntityType, code string, memo map[string]string) string {
	key := strings.ToLower(code)
	if name, ok := memo[key]; ok {
		return name
	}
	name := code
	if entity, err := s.entities.FindByCodeOrName(ctx, counterType, code); err == nil {
		name = entity.Name
	} else if entity, err := s.entities.FindAnyByCodeOrName(ctx, code); err == nil {
		name = entity.Name
	}
	memo[key] = name
	return name
}

func (s *ScheduleService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "grid:*"); err != nil {
		s.logger.Warn("failed to invalidate grid cache", zap.Error(err))
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
