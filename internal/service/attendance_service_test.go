package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/export"
)

func newAttendanceFixture(repo *mockAttendanceRepo, entities ...*models.EntityProfile) *AttendanceService {
	return NewAttendanceService(repo, newMockEntityRepo(entities...), export.NewCSVExporter(), export.NewPDFExporter(), nil, nil)
}

func TestAttendanceMarkAndRemark(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	repo := newMockAttendanceRepo()
	svc := newAttendanceFixture(repo, tenA)

	req := MarkAttendanceRequest{
		ClassID: "c1",
		Date:    "2026-08-24",
		Period:  1,
		Subject: "MATH",
		Marks: []AttendanceMark{
			{StudentID: "s1", Status: models.AttendancePresent},
			{StudentID: "s2", Status: models.AttendanceAbsent},
		},
	}
	require.NoError(t, svc.Mark(context.Background(), req))

	// Re-marking replaces, never duplicates.
	req.Marks[1].Status = models.AttendanceLate
	require.NoError(t, svc.Mark(context.Background(), req))

	records, err := svc.Sheet(context.Background(), "c1", "2026-08-24", 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	statuses := map[string]models.AttendanceStatus{}
	for _, r := range records {
		statuses[r.StudentID] = r.Status
	}
	assert.Equal(t, models.AttendancePresent, statuses["s1"])
	assert.Equal(t, models.AttendanceLate, statuses["s2"])
}

func TestAttendanceMarkRejectsUnknownStatus(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	svc := newAttendanceFixture(newMockAttendanceRepo(), tenA)

	err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ClassID: "c1",
		Date:    "2026-08-24",
		Period:  1,
		Marks:   []AttendanceMark{{StudentID: "s1", Status: "MAYBE"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceMarkRejectsBadDate(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	svc := newAttendanceFixture(newMockAttendanceRepo(), tenA)

	err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ClassID: "c1",
		Date:    "24-08-2026",
		Period:  1,
		Marks:   []AttendanceMark{{StudentID: "s1", Status: models.AttendancePresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceSummaryPercentage(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	repo := newMockAttendanceRepo()
	repo.summaries = []models.AttendanceSummary{
		{StudentID: "s1", RollNumber: "1001", Name: "John", Present: 8, Absent: 1, Late: 1},
		{StudentID: "s2", RollNumber: "1002", Name: "Jane"},
	}
	svc := newAttendanceFixture(repo, tenA)

	summaries, err := svc.Summary(context.Background(), "c1", "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	// LATE counts as attended.
	assert.InDelta(t, 90.0, summaries[0].Percentage, 0.01)
	assert.Zero(t, summaries[1].Percentage)
}

func TestAttendanceSummaryRejectsInvertedRange(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	svc := newAttendanceFixture(newMockAttendanceRepo(), tenA)

	_, err := svc.Summary(context.Background(), "c1", "2026-08-31", "2026-08-01")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceExportCSV(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	repo := newMockAttendanceRepo()
	repo.summaries = []models.AttendanceSummary{
		{StudentID: "s1", RollNumber: "1001", Name: "John", Present: 9, Absent: 1},
	}
	svc := newAttendanceFixture(repo, tenA)

	data, err := svc.ExportSummaryCSV(context.Background(), "c1", "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "Roll Number,Name,Present,Absent,Late,Percentage"))
	assert.Contains(t, content, "1001,John,9,1,0,90.0")
}
