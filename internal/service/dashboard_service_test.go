package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

func TestDashboardSummaryCounts(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	tenB := &models.EntityProfile{ID: "c2", Name: "10B", ShortCode: "10B", Type: models.EntityTypeClass}
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	entities := newMockEntityRepo(tenA, tenB, jane)

	students := newMockStudentRepo()
	require.NoError(t, students.Create(context.Background(), &models.Student{RollNumber: "1001", Name: "John", ClassID: "c1"}))

	schedule := newMockScheduleRepo()
	settings := NewSettingsService(newMockSettingsRepo(), nil, nil)

	svc := NewDashboardService(entities, students, schedule, settings, nil, 0, nil)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ClassCount)
	assert.Equal(t, 1, summary.TeacherCount)
	assert.Equal(t, 1, summary.StudentCount)
	assert.Equal(t, 9, summary.PeriodsPerDay)
	assert.Equal(t, todayKey(), summary.Today)
}
