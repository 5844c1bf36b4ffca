package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type settingsRepository interface {
	ListAll(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// UpdateSettingsRequest carries partial settings changes. A nil field leaves
// the stored value untouched; empty strings are legitimate values.
type UpdateSettingsRequest struct {
	SchoolName   *string           `json:"school_name,omitempty"`
	AcademicYear *string           `json:"academic_year,omitempty"`
	TimeSlots    []models.TimeSlot `json:"time_slots,omitempty"`
}

// SettingsService manages school-wide configuration.
type SettingsService struct {
	repo   settingsRepository
	cache  gridInvalidator
	logger *zap.Logger
}

// NewSettingsService instantiates SettingsService.
func NewSettingsService(repo settingsRepository, cache gridInvalidator, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

// defaultTimeSlots is the nine-period day used until an administrator edits
// the slot sequence.
func defaultTimeSlots() []models.TimeSlot {
	ranges := []string{
		"08:00 - 08:45",
		"08:45 - 09:30",
		"09:30 - 10:15",
		"10:30 - 11:15",
		"11:15 - 12:00",
		"12:45 - 13:30",
		"13:30 - 14:15",
		"14:15 - 15:00",
		"15:00 - 15:45",
	}
	slots := make([]models.TimeSlot, len(ranges))
	for i, r := range ranges {
		slots[i] = models.TimeSlot{Period: i + 1, TimeRange: r}
	}
	return slots
}

// Get assembles the current settings, falling back to defaults for keys that
// were never stored.
func (s *SettingsService) Get(ctx context.Context) (*models.SchoolSettings, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}

	settings := &models.SchoolSettings{TimeSlots: defaultTimeSlots()}
	for _, row := range rows {
		switch row.Key {
		case models.SettingSchoolName:
			settings.SchoolName = row.Value
		case models.SettingAcademicYear:
			settings.AcademicYear = row.Value
		case models.SettingTimeSlots:
			var slots []models.TimeSlot
			if err := json.Unmarshal([]byte(row.Value), &slots); err != nil {
				s.logger.Warn("stored time slots are unreadable, using defaults", zap.Error(err))
				continue
			}
			if len(slots) > 0 {
				settings.TimeSlots = slots
			}
		}
	}
	return settings, nil
}

// TimeSlots returns the configured slot sequence (grid columns).
func (s *SettingsService) TimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	row, err := s.repo.Get(ctx, models.SettingTimeSlots)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultTimeSlots(), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	var slots []models.TimeSlot
	if err := json.Unmarshal([]byte(row.Value), &slots); err != nil || len(slots) == 0 {
		return defaultTimeSlots(), nil
	}
	return slots, nil
}

// Update persists the provided fields. Editing time slots changes how grids
// render but never rewrites stored cells.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*models.SchoolSettings, error) {
	if req.SchoolName != nil {
		if err := s.repo.Upsert(ctx, &models.Setting{Key: models.SettingSchoolName, Value: strings.TrimSpace(*req.SchoolName)}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save school name")
		}
	}
	if req.AcademicYear != nil {
		if err := s.repo.Upsert(ctx, &models.Setting{Key: models.SettingAcademicYear, Value: strings.TrimSpace(*req.AcademicYear)}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save academic year")
		}
	}
	if req.TimeSlots != nil {
		slots, err := normalizeTimeSlots(req.TimeSlots)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(slots)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode time slots")
		}
		if err := s.repo.Upsert(ctx, &models.Setting{Key: models.SettingTimeSlots, Value: string(payload)}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save time slots")
		}
		if s.cache != nil {
			if err := s.cache.DeleteByPattern(ctx, "grid:*"); err != nil {
				s.logger.Warn("failed to invalidate grid cache", zap.Error(err))
			}
		}
	}
	return s.Get(ctx)
}

func normalizeTimeSlots(slots []models.TimeSlot) ([]models.TimeSlot, error) {
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one time slot is required")
	}
	seen := make(map[int]bool, len(slots))
	out := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Period < 1 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid period %d: periods start at 1", slot.Period))
		}
		if seen[slot.Period] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate period %d in time slots", slot.Period))
		}
		seen[slot.Period] = true
		out = append(out, models.TimeSlot{Period: slot.Period, TimeRange: strings.TrimSpace(slot.TimeRange)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}
