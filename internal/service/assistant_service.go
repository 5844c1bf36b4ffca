package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

const assistantSystemInstruction = `You are the friendly assistant of a school timetable dashboard.
Answer the administrator's question using only the provided school context.
Keep answers short and conversational. If the context does not contain the
answer, say so instead of guessing.`

// assistantFallback is returned when generation fails; the assistant is a
// convenience surface and never propagates upstream errors to the caller.
const assistantFallback = "Sorry, I could not process that right now. Please try again in a moment."

type textGenerator interface {
	GenerateText(ctx context.Context, systemInstruction, prompt string, thinkingBudget int) (string, error)
}

type dayScheduleReader interface {
	ListByDay(ctx context.Context, day string) ([]models.ScheduleCell, error)
}

type settingsReader interface {
	Get(ctx context.Context) (*models.SchoolSettings, error)
}

type entityLister interface {
	List(ctx context.Context, filter models.EntityFilter) ([]models.EntityProfile, int, error)
}

// AssistantService answers free-form questions about the school, grounded in
// the registry, settings, and today's schedule.
type AssistantService struct {
	generator textGenerator
	settings  settingsReader
	entities  entityLister
	schedule  dayScheduleReader
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAssistantService instantiates AssistantService.
func NewAssistantService(generator textGenerator, settings settingsReader, entities entityLister, schedule dayScheduleReader, metrics *MetricsService, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{
		generator: generator,
		settings:  settings,
		entities:  entities,
		schedule:  schedule,
		metrics:   metrics,
		logger:    logger,
	}
}

type assistantContext struct {
	School    *models.SchoolSettings `json:"school,omitempty"`
	Classes   []string               `json:"classes,omitempty"`
	Teachers  []string               `json:"teachers,omitempty"`
	Today     string                 `json:"today"`
	TodayPlan []models.ScheduleCell  `json:"today_schedule,omitempty"`
}

// Ask answers one question. A generation failure yields a friendly retry
// message, not an error.
func (s *AssistantService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "question is required")
	}

	prompt := s.buildPrompt(ctx, question)
	answer, err := s.generator.GenerateText(ctx, assistantSystemInstruction, prompt, 0)
	if err != nil {
		s.metrics.CountAIRequest("assistant", "error")
		s.logger.Warn("assistant generation failed", zap.Error(err))
		return assistantFallback, nil
	}
	s.metrics.CountAIRequest("assistant", "ok")
	return strings.TrimSpace(answer), nil
}

// buildPrompt assembles the question plus a compact JSON snapshot of the
// school. Context gathering is best-effort: a failed lookup just leaves the
// section out.
func (s *AssistantService) buildPrompt(ctx context.Context, question string) string {
	snapshot := assistantContext{Today: todayKey()}

	if settings, err := s.settings.Get(ctx); err == nil {
		snapshot.School = settings
	}
	if entities, _, err := s.entities.List(ctx, models.EntityFilter{PageSize: 100}); err == nil {
		for _, e := range entities {
			switch e.Type {
			case models.EntityTypeClass:
				snapshot.Classes = append(snapshot.Classes, e.Name)
			case models.EntityTypeTeacher:
				snapshot.Teachers = append(snapshot.Teachers, e.Name)
			}
		}
	}
	if cells, err := s.schedule.ListByDay(ctx, snapshot.Today); err == nil {
		snapshot.TodayPlan = cells
	}

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		encoded = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("School context:\n")
	b.Write(encoded)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
