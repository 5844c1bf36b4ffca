package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/genai"
	"github.com/noah-isme/timetable-admin-api/pkg/jobs"
)

// JobTypeExtraction identifies queued extraction work.
const JobTypeExtraction = "timetable_extraction"

type sessionStore interface {
	Get(ctx context.Context) (*models.ImportSession, error)
	Save(ctx context.Context, session *models.ImportSession) error
	Delete(ctx context.Context) error
}

type timetableExtractor interface {
	ExtractTimetable(ctx context.Context, input genai.ExtractionInput) (*models.AiImportResult, int, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type uploadStore interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

// extractionJob is the queued payload. The queue is in-process, so the input
// travels with the job instead of being rehydrated from storage.
type extractionJob struct {
	SessionID string
	RequestID string
	Input     genai.ExtractionInput
}

// FinalizeImportRequest carries the administrator's reconciliation choices.
// Mappings is keyed two ways: an unresolved profile name maps to an existing
// entity id (empty value drops that profile), and an unknown counterpart code
// maps to the display name stored in its place.
type FinalizeImportRequest struct {
	Mappings map[string]string `json:"mappings"`
}

// ImportService drives the AI import flow: start, background extraction,
// review, finalize or cancel. At most one session exists at a time.
type ImportService struct {
	sessions  sessionStore
	entities  entityRepository
	schedule  scheduleRepository
	extractor timetableExtractor
	queue     jobEnqueuer
	uploads   uploadStore
	cache     gridInvalidator
	metrics   *MetricsService
	cfg       config.ImportsConfig
	logger    *zap.Logger
}

// NewImportService instantiates ImportService.
func NewImportService(
	sessions sessionStore,
	entities entityRepository,
	schedule scheduleRepository,
	extractor timetableExtractor,
	uploads uploadStore,
	cache gridInvalidator,
	metrics *MetricsService,
	cfg config.ImportsConfig,
	logger *zap.Logger,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		sessions:  sessions,
		entities:  entities,
		schedule:  schedule,
		extractor: extractor,
		uploads:   uploads,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
	}
}

// SetQueue wires the extraction queue. Set after construction because the
// queue handler is this service's HandleExtraction.
func (s *ImportService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// StartText begins an import session from pasted timetable text.
func (s *ImportService) StartText(ctx context.Context, text string) (*models.ImportSession, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable text is required")
	}
	return s.start(ctx, genai.ExtractionInput{Text: text}, "", "")
}

// StartDocument begins an import session from an uploaded document. The file
// is kept on disk for the lifetime of the session so the administrator can
// re-inspect the source during review.
func (s *ImportService) StartDocument(ctx context.Context, filename, mimeType string, data []byte) (*models.ImportSession, error) {
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "uploaded file is empty")
	}
	if s.cfg.MaxFileSizeBytes > 0 && int64(len(data)) > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, "")
	}
	if !s.mimeAllowed(mimeType) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedUpload, fmt.Sprintf("file type %s is not allowed", mimeType))
	}

	stored := ""
	if s.uploads != nil {
		name := uuid.NewString() + filepath.Ext(filename)
		saved, err := s.uploads.Save(name, data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded file")
		}
		stored = saved
	}

	input := genai.ExtractionInput{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}
	return s.start(ctx, input, stored, mimeType)
}

func (s *ImportService) start(ctx context.Context, input genai.ExtractionInput, sourceFile, sourceMIME string) (*models.ImportSession, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "imports are disabled")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "import queue is not running")
	}

	// Starting over an extraction still in flight would orphan its result
	// guard, so that one state is rejected. REVIEW and ERROR sessions are
	// simply replaced.
	if existing, err := s.sessions.Get(ctx); err == nil && existing.Status == models.ImportStatusProcessing {
		return nil, appErrors.Clone(appErrors.ErrImportState, "an import is already being processed")
	}

	now := time.Now().UTC()
	session := &models.ImportSession{
		ID:         uuid.NewString(),
		RequestID:  uuid.NewString(),
		Status:     models.ImportStatusProcessing,
		SourceFile: sourceFile,
		SourceMIME: sourceMIME,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save import session")
	}

	job := jobs.Job{
		ID:      session.RequestID,
		Type:    JobTypeExtraction,
		Payload: extractionJob{SessionID: session.ID, RequestID: session.RequestID, Input: input},
	}
	if err := s.queue.Enqueue(job); err != nil {
		_ = s.sessions.Delete(ctx)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue extraction")
	}

	return session, nil
}

// Get returns the active session, or nil when the flow is idle.
func (s *ImportService) Get(ctx context.Context) (*models.ImportSession, error) {
	session, err := s.sessions.Get(ctx)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import session")
	}
	return session, nil
}

// Cancel discards the session without touching the schedule store.
func (s *ImportService) Cancel(ctx context.Context) error {
	session, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return appErrors.Clone(appErrors.ErrImportState, "no import session to cancel")
	}
	s.cleanupSource(session)
	if err := s.sessions.Delete(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to discard import session")
	}
	s.metrics.CountImportSession("cancelled")
	return nil
}

// HandleExtraction is the queue handler. It always returns nil: an extraction
// is attempted exactly once, and failures land in the session as ERROR rather
// than triggering a retry.
func (s *ImportService) HandleExtraction(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(extractionJob)
	if !ok {
		s.logger.Error("extraction job carries unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	result, dropped, err := s.extractor.ExtractTimetable(ctx, payload.Input)

	session, loadErr := s.sessions.Get(ctx)
	if loadErr != nil {
		s.logger.Warn("extraction finished but session is gone, discarding result",
			zap.String("request_id", payload.RequestID), zap.Error(loadErr))
		return nil
	}
	if session.ID != payload.SessionID || session.RequestID != payload.RequestID || session.Status != models.ImportStatusProcessing {
		s.logger.Info("discarding stale extraction result",
			zap.String("request_id", payload.RequestID), zap.String("session_request_id", session.RequestID))
		return nil
	}

	if err != nil {
		s.metrics.CountAIRequest("extraction", "error")
		s.metrics.CountImportSession("error")
		session.Status = models.ImportStatusError
		session.ErrorMessage = appErrors.FromError(err).Message
		if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
			s.logger.Error("failed to record extraction failure", zap.Error(saveErr))
		}
		return nil
	}

	s.metrics.CountAIRequest("extraction", "ok")
	s.metrics.CountDroppedSlots(dropped)

	session.Status = models.ImportStatusReview
	session.Result = result
	session.DroppedSlots = dropped
	session.ErrorMessage = ""
	session.UnresolvedOwners = s.unresolvedOwners(ctx, result)
	session.Result.UnknownCodes = s.unknownCodes(ctx, result)

	if dropped > 0 {
		s.logger.Info("normalization discarded slots", zap.Int("dropped", dropped))
	}
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		s.logger.Error("failed to save extraction result", zap.Error(saveErr))
	}
	return nil
}

// Finalize merges the reviewed result into the schedule store. The merge is
// authoritative per cell: imported entries overwrite whatever occupied their
// (day, period); untouched cells survive.
func (s *ImportService) Finalize(ctx context.Context, req FinalizeImportRequest) (*models.FinalizeSummary, error) {
	session, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Status != models.ImportStatusReview || session.Result == nil {
		return nil, appErrors.Clone(appErrors.ErrImportState, "no import session is awaiting review")
	}

	ownerType := models.EntityTypeClass
	if session.Result.DetectedType == models.DetectedTeacherWise {
		ownerType = models.EntityTypeTeacher
	}

	summary := &models.FinalizeSummary{}
	var cells []models.ScheduleCell
	for _, profile := range session.Result.Profiles {
		owner, err := s.resolveOwner(ctx, ownerType, profile.Name, req.Mappings)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			summary.ProfilesDropped++
			s.logger.Info("dropping unmapped profile", zap.String("name", profile.Name))
			continue
		}
		summary.ProfilesMerged++

		for day, periods := range profile.Schedule {
			for periodKey, entry := range periods {
				period, err := strconv.Atoi(strings.TrimSpace(periodKey))
				if err != nil || period < 1 {
					s.logger.Warn("skipping slot with unusable period key",
						zap.String("profile", profile.Name), zap.String("period", periodKey))
					continue
				}
				counterpart := strings.TrimSpace(entry.Code)
				if mapped, ok := req.Mappings[counterpart]; ok {
					counterpart = strings.TrimSpace(mapped)
				}
				cells = append(cells, models.ScheduleCell{
					EntityID:        owner.ID,
					Day:             day,
					Period:          period,
					Subject:         entry.Subject,
					Room:            entry.Room,
					CounterpartCode: counterpart,
				})
			}
		}
	}

	if err := s.schedule.BulkUpsert(ctx, cells); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to merge imported schedule")
	}
	summary.CellsWritten = len(cells)

	s.metrics.CountCellWrites(len(cells))
	s.metrics.CountImportSession("finalized")

	s.cleanupSource(session)
	if err := s.sessions.Delete(ctx); err != nil {
		s.logger.Warn("failed to discard finalized session", zap.Error(err))
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "grid:*"); err != nil {
			s.logger.Warn("failed to invalidate grid cache", zap.Error(err))
		}
	}
	return summary, nil
}

// resolveOwner finds the registry profile an extracted schedule belongs to.
// An explicit mapping wins; otherwise the profile name resolves weakly against
// short codes and names. A nil result with nil error means "drop this profile".
func (s *ImportService) resolveOwner(ctx context.Context, ownerType models.EntityType, name string, mappings map[string]string) (*models.EntityProfile, error) {
	if id, ok := mappings[name]; ok {
		if id == "" {
			return nil, nil
		}
		owner, err := s.entities.FindByID(ctx, id)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mapping for %q points at an unknown entity", name))
		}
		if owner.Type != ownerType {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mapping for %q points at a %s profile, expected %s", name, owner.Type, ownerType))
		}
		return owner, nil
	}
	owner, err := s.entities.FindByCodeOrName(ctx, ownerType, name)
	if err != nil {
		return nil, nil
	}
	return owner, nil
}

// unresolvedOwners lists extracted profile names that need an explicit mapping
// before finalize can place their schedules.
func (s *ImportService) unresolvedOwners(ctx context.Context, result *models.AiImportResult) []string {
	ownerType := models.EntityTypeClass
	if result.DetectedType == models.DetectedTeacherWise {
		ownerType = models.EntityTypeTeacher
	}
	var unresolved []string
	for _, profile := range result.Profiles {
		if _, err := s.entities.FindByCodeOrName(ctx, ownerType, profile.Name); err != nil {
			unresolved = append(unresolved, profile.Name)
		}
	}
	return unresolved
}

// unknownCodes recomputes the unknown counterpart codes from the entries
// themselves rather than trusting the model's own list. A code is unknown
// only when it matches no registered profile of any type.
func (s *ImportService) unknownCodes(ctx context.Context, result *models.AiImportResult) []string {
	seen := make(map[string]bool)
	unknown := make([]string, 0)
	for _, profile := range result.Profiles {
		for _, periods := range profile.Schedule {
			for _, entry := range periods {
				code := strings.TrimSpace(entry.Code)
				if code == "" || seen[strings.ToLower(code)] {
					continue
				}
				seen[strings.ToLower(code)] = true
				if _, err := s.entities.FindAnyByCodeOrName(ctx, code); err != nil {
					unknown = append(unknown, code)
				}
			}
		}
	}
	sort.Strings(unknown)
	return unknown
}

func (s *ImportService) mimeAllowed(mimeType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}

func (s *ImportService) cleanupSource(session *models.ImportSession) {
	if s.uploads == nil || session.SourceFile == "" {
		return
	}
	if err := s.uploads.Delete(session.SourceFile); err != nil {
		s.logger.Warn("failed to delete import source file", zap.String("file", session.SourceFile), zap.Error(err))
	}
}
