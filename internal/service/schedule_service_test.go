package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type fixedSlots []models.TimeSlot

func (f fixedSlots) TimeSlots(_ context.Context) ([]models.TimeSlot, error) {
	return f, nil
}

func newScheduleFixture(slots []models.TimeSlot, entities ...*models.EntityProfile) (*ScheduleService, *mockScheduleRepo) {
	repo := newMockScheduleRepo()
	svc := NewScheduleService(repo, newMockEntityRepo(entities...), fixedSlots(slots), nil, 0, nil, nil)
	return svc, repo
}

func twoSlots() []models.TimeSlot {
	return []models.TimeSlot{
		{Period: 1, TimeRange: "08:00 - 08:45"},
		{Period: 2, TimeRange: "08:45 - 09:30"},
	}
}

func TestScheduleSetCellOverwrites(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	svc, repo := newScheduleFixture(twoSlots(), tenA)

	_, err := svc.SetCell(context.Background(), "c1", SetCellRequest{Day: "Mon", Period: 1, Subject: "Math", TeacherOrClass: "JD"})
	require.NoError(t, err)
	_, err = svc.SetCell(context.Background(), "c1", SetCellRequest{Day: "Mon", Period: 1, Subject: "Biology", Room: "Lab 2"})
	require.NoError(t, err)

	require.Len(t, repo.cells, 1)
	cell := repo.cells[cellKey("c1", "Mon", 1)]
	assert.Equal(t, "Biology", cell.Subject)
	assert.Equal(t, "Lab 2", cell.Room)
	assert.Empty(t, cell.CounterpartCode)
}

func TestScheduleSetCellRejectsUnknownDay(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	svc, _ := newScheduleFixture(twoSlots(), tenA)

	_, err := svc.SetCell(context.Background(), "c1", SetCellRequest{Day: "Mond", Period: 1, Subject: "Math"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleClearCell(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	svc, repo := newScheduleFixture(twoSlots(), tenA)

	_, err := svc.SetCell(context.Background(), "c1", SetCellRequest{Day: "Mon", Period: 1, Subject: "Math"})
	require.NoError(t, err)
	require.NoError(t, svc.ClearCell(context.Background(), "c1", "Mon", 1))
	assert.Empty(t, repo.cells)

	// Clearing an already empty cell is a no-op.
	require.NoError(t, svc.ClearCell(context.Background(), "c1", "Mon", 1))
}

func TestScheduleGridResolvesCounterparts(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	svc, repo := newScheduleFixture(twoSlots(), tenA, jane)

	require.NoError(t, repo.BulkUpsert(context.Background(), []models.ScheduleCell{
		{EntityID: "c1", Day: "Mon", Period: 1, Subject: "MATH", CounterpartCode: "JD"},
		{EntityID: "c1", Day: "Mon", Period: 2, Subject: "BIO", CounterpartCode: "ZZ"},
	}))

	grid, err := svc.Grid(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "10A", grid.EntityName)
	assert.Equal(t, models.Days, grid.Days)

	mon := grid.Cells["Mon"]
	require.NotNil(t, mon)
	assert.Equal(t, "Jane Doe", mon[1].DisplayName)
	// A code that resolves to nothing displays verbatim.
	assert.Equal(t, "ZZ", mon[2].DisplayName)
}

func TestScheduleGridResolvesCounterpartAcrossTypes(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	tenB := &models.EntityProfile{ID: "c2", Name: "Class Ten B", ShortCode: "10B", Type: models.EntityTypeClass}
	svc, repo := newScheduleFixture(twoSlots(), tenA, tenB)

	// The counterpart of a class grid is usually a teacher, but a code that
	// only matches another class still resolves to that class's name.
	require.NoError(t, repo.BulkUpsert(context.Background(), []models.ScheduleCell{
		{EntityID: "c1", Day: "Mon", Period: 1, Subject: "JOINT", CounterpartCode: "10B"},
	}))

	grid, err := svc.Grid(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, grid.Cells["Mon"])
	assert.Equal(t, "Class Ten B", grid.Cells["Mon"][1].DisplayName)
}

func TestScheduleGridSkipsUnconfiguredPeriods(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	svc, repo := newScheduleFixture(twoSlots(), tenA)

	// Period 7 stays persisted but has no column in a two-slot day.
	require.NoError(t, repo.BulkUpsert(context.Background(), []models.ScheduleCell{
		{EntityID: "c1", Day: "Mon", Period: 1, Subject: "MATH"},
		{EntityID: "c1", Day: "Mon", Period: 7, Subject: "GHOST"},
	}))

	grid, err := svc.Grid(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, grid.Cells["Mon"])
	assert.Contains(t, grid.Cells["Mon"], 1)
	assert.NotContains(t, grid.Cells["Mon"], 7)
	require.Len(t, repo.cells, 2)
}

func TestScheduleGridUnknownEntity(t *testing.T) {
	svc, _ := newScheduleFixture(twoSlots())

	_, err := svc.Grid(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
