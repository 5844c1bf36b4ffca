package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type entityCounter interface {
	CountByType(ctx context.Context, entityType models.EntityType) (int, error)
}

type studentCounter interface {
	Count(ctx context.Context) (int, error)
}

// DashboardSummary is the landing-page snapshot.
type DashboardSummary struct {
	SchoolName    string                `json:"school_name"`
	AcademicYear  string                `json:"academic_year"`
	ClassCount    int                   `json:"class_count"`
	TeacherCount  int                   `json:"teacher_count"`
	StudentCount  int                   `json:"student_count"`
	Today         string                `json:"today"`
	PeriodsPerDay int                   `json:"periods_per_day"`
	TodaySchedule []models.ScheduleCell `json:"today_schedule"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// DashboardService assembles and caches the landing-page summary.
type DashboardService struct {
	entities entityCounter
	students studentCounter
	schedule dayScheduleReader
	settings settingsReader
	cache    cacheStore
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService instantiates DashboardService.
func NewDashboardService(entities entityCounter, students studentCounter, schedule dayScheduleReader, settings settingsReader, cache cacheStore, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		entities: entities,
		students: students,
		schedule: schedule,
		settings: settings,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Summary returns the dashboard snapshot, served from cache when fresh.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	const cacheKey = "dashboard:summary"
	if s.cache != nil {
		var cached DashboardSummary
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Today == todayKey() {
			return &cached, nil
		}
	}

	summary := &DashboardSummary{Today: todayKey(), GeneratedAt: time.Now().UTC()}

	var err error
	if summary.ClassCount, err = s.entities.CountByType(ctx, models.EntityTypeClass); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	if summary.TeacherCount, err = s.entities.CountByType(ctx, models.EntityTypeTeacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	if summary.StudentCount, err = s.students.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}

	if settings, err := s.settings.Get(ctx); err == nil {
		summary.SchoolName = settings.SchoolName
		summary.AcademicYear = settings.AcademicYear
		summary.PeriodsPerDay = len(settings.TimeSlots)
	}

	cells, err := s.schedule.ListByDay(ctx, summary.Today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's schedule")
	}
	summary.TodaySchedule = cells

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard summary", zap.Error(err))
		}
	}
	return summary, nil
}

// todayKey maps the current weekday onto the canonical day symbols.
func todayKey() string {
	switch time.Now().Weekday() {
	case time.Monday:
		return "Mon"
	case time.Tuesday:
		return "Tue"
	case time.Wednesday:
		return "Wed"
	case time.Thursday:
		return "Thu"
	case time.Friday:
		return "Fri"
	case time.Saturday:
		return "Sat"
	default:
		return "Sun"
	}
}
