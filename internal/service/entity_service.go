package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type entityRepository interface {
	List(ctx context.Context, filter models.EntityFilter) ([]models.EntityProfile, int, error)
	FindByID(ctx context.Context, id string) (*models.EntityProfile, error)
	FindByCodeOrName(ctx context.Context, entityType models.EntityType, token string) (*models.EntityProfile, error)
	FindAnyByCodeOrName(ctx context.Context, token string) (*models.EntityProfile, error)
	ExistsByCode(ctx context.Context, entityType models.EntityType, code, excludeID string) (bool, error)
	Create(ctx context.Context, entity *models.EntityProfile) error
	Update(ctx context.Context, entity *models.EntityProfile) error
	Delete(ctx context.Context, id string) error
}

type gridInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateEntityRequest describes payload for registering a profile.
type CreateEntityRequest struct {
	Name      string            `json:"name" validate:"required"`
	ShortCode string            `json:"short_code"`
	Type      models.EntityType `json:"type" validate:"required,oneof=CLASS TEACHER"`
}

// UpdateEntityRequest merges provided fields into an existing profile.
type UpdateEntityRequest struct {
	Name      *string `json:"name,omitempty"`
	ShortCode *string `json:"short_code,omitempty"`
}

// EntityService manages the class/teacher registry.
type EntityService struct {
	repo      entityRepository
	cache     gridInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEntityService instantiates EntityService.
func NewEntityService(repo entityRepository, cache gridInvalidator, validate *validator.Validate, logger *zap.Logger) *EntityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns profiles with pagination metadata.
func (s *EntityService) List(ctx context.Context, filter models.EntityFilter) ([]models.EntityProfile, *models.Pagination, error) {
	entities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entities")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return entities, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one profile.
func (s *EntityService) Get(ctx context.Context, id string) (*models.EntityProfile, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entity")
	}
	return entity, nil
}

// Create registers a new profile with an empty schedule. A missing short code
// defaults to the first three characters of the name.
func (s *EntityService) Create(ctx context.Context, req CreateEntityRequest) (*models.EntityProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entity payload")
	}

	name := strings.TrimSpace(req.Name)
	code := strings.ToUpper(strings.TrimSpace(req.ShortCode))
	if code == "" {
		code = strings.ToUpper(name)
		if len(code) > 3 {
			code = code[:3]
		}
	}

	taken, err := s.repo.ExistsByCode(ctx, req.Type, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check entity code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "short code already in use")
	}

	entity := models.EntityProfile{Name: name, ShortCode: code, Type: req.Type}
	if err := s.repo.Create(ctx, &entity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create entity")
	}

	s.invalidateGrids(ctx)
	return &entity, nil
}

// Update merges name/short code changes into a profile.
func (s *EntityService) Update(ctx context.Context, id string, req UpdateEntityRequest) (*models.EntityProfile, error) {
	entity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		entity.Name = strings.TrimSpace(*req.Name)
	}
	if req.ShortCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.ShortCode))
		if code != "" && code != entity.ShortCode {
			taken, err := s.repo.ExistsByCode(ctx, entity.Type, code, entity.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check entity code")
			}
			if taken {
				return nil, appErrors.Clone(appErrors.ErrConflict, "short code already in use")
			}
			entity.ShortCode = code
		}
	}

	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entity")
	}

	// Renames change how codes resolve everywhere, so all grids go stale.
	s.invalidateGrids(ctx)
	return entity, nil
}

// Delete removes a profile and its schedule. Students referencing a deleted
// class keep their class_id; readers treat the dangling value as unassigned.
func (s *EntityService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete entity")
	}
	s.invalidateGrids(ctx)
	return nil
}

func (s *EntityService) invalidateGrids(ctx context.Context) {
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
