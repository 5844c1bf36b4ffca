package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/export"
)

type attendanceRepository interface {
	UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error
	ListByPeriod(ctx context.Context, classID string, date time.Time, period int) ([]models.AttendanceRecord, error)
	Summarize(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceSummary, error)
}

// AttendanceMark is one student's status within a marking request.
type AttendanceMark struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
}

// MarkAttendanceRequest records one period's roll call for a class.
type MarkAttendanceRequest struct {
	ClassID string           `json:"class_id" validate:"required"`
	Date    string           `json:"date" validate:"required"`
	Period  int              `json:"period" validate:"required,min=1"`
	Subject string           `json:"subject"`
	Marks   []AttendanceMark `json:"marks" validate:"required,min=1,dive"`
}

// AttendanceService records and reports per-period attendance.
type AttendanceService struct {
	repo      attendanceRepository
	classes   classResolver
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService instantiates AttendanceService.
func NewAttendanceService(repo attendanceRepository, classes classResolver, csv *export.CSVExporter, pdf *export.PDFExporter, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, classes: classes, csv: csv, pdf: pdf, validator: validate, logger: logger}
}

// Mark records one period's roll call. Re-marking the same period replaces the
// earlier statuses.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	records := make([]models.AttendanceRecord, 0, len(req.Marks))
	for _, mark := range req.Marks {
		if !mark.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", mark.Status))
		}
		records = append(records, models.AttendanceRecord{
			ClassID:   req.ClassID,
			StudentID: mark.StudentID,
			Date:      date,
			Period:    req.Period,
			Subject:   req.Subject,
			Status:    mark.Status,
		})
	}

	if err := s.repo.UpsertBatch(ctx, records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	return nil
}

// Sheet returns the recorded marks for one (class, date, period).
func (s *AttendanceService) Sheet(ctx context.Context, classID, dateStr string, period int) ([]models.AttendanceRecord, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	if period < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period must be at least 1")
	}
	records, err := s.repo.ListByPeriod(ctx, classID, date, period)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return records, nil
}

// Summary aggregates per-student attendance for a class over a date range and
// computes a percentage treating LATE as attended.
func (s *AttendanceService) Summary(ctx context.Context, classID, fromStr, toStr string) ([]models.AttendanceSummary, error) {
	from, err := parseDate(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(toStr)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range end precedes its start")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	summaries, err := s.repo.Summarize(ctx, classID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize attendance")
	}
	for i := range summaries {
		total := summaries[i].Present + summaries[i].Absent + summaries[i].Late
		if total > 0 {
			summaries[i].Percentage = float64(summaries[i].Present+summaries[i].Late) / float64(total) * 100
		}
	}
	return summaries, nil
}

// ExportSummaryCSV renders the summary as a CSV download.
func (s *AttendanceService) ExportSummaryCSV(ctx context.Context, classID, fromStr, toStr string) ([]byte, error) {
	summaries, err := s.Summary(ctx, classID, fromStr, toStr)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(summaryDataset(summaries))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance csv")
	}
	return data, nil
}

// ExportSummaryPDF renders the summary as a PDF download.
func (s *AttendanceService) ExportSummaryPDF(ctx context.Context, classID, fromStr, toStr string) ([]byte, error) {
	summaries, err := s.Summary(ctx, classID, fromStr, toStr)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	title := fmt.Sprintf("Attendance %s (%s to %s)", class.Name, fromStr, toStr)
	data, err := s.pdf.Render(summaryDataset(summaries), title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance pdf")
	}
	return data, nil
}

func summaryDataset(summaries []models.AttendanceSummary) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Roll Number", "Name", "Present", "Absent", "Late", "Percentage"},
	}
	for _, s := range summaries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Roll Number": s.RollNumber,
			"Name":        s.Name,
			"Present":     strconv.Itoa(s.Present),
			"Absent":      strconv.Itoa(s.Absent),
			"Late":        strconv.Itoa(s.Late),
			"Percentage":  fmt.Sprintf("%.1f", s.Percentage),
		})
	}
	return dataset
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return date, nil
}
