package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestSettingsGetDefaults(t *testing.T) {
	svc := NewSettingsService(newMockSettingsRepo(), nil, nil)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, settings.SchoolName)
	assert.Len(t, settings.TimeSlots, 9)
	assert.Equal(t, 1, settings.TimeSlots[0].Period)
}

func TestSettingsUpdateRoundTrip(t *testing.T) {
	repo := newMockSettingsRepo()
	svc := NewSettingsService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), UpdateSettingsRequest{
		SchoolName:   strPtr("Springfield High"),
		AcademicYear: strPtr("2026/2027"),
		TimeSlots: []models.TimeSlot{
			{Period: 2, TimeRange: "09:00 - 09:45"},
			{Period: 1, TimeRange: "08:00 - 08:45"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Springfield High", updated.SchoolName)
	assert.Equal(t, "2026/2027", updated.AcademicYear)
	// Slots come back sorted by period.
	require.Len(t, updated.TimeSlots, 2)
	assert.Equal(t, 1, updated.TimeSlots[0].Period)
	assert.Equal(t, 2, updated.TimeSlots[1].Period)

	slots, err := svc.TimeSlots(context.Background())
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestSettingsUpdateRejectsBadSlots(t *testing.T) {
	svc := NewSettingsService(newMockSettingsRepo(), nil, nil)

	_, err := svc.Update(context.Background(), UpdateSettingsRequest{
		TimeSlots: []models.TimeSlot{{Period: 1}, {Period: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), UpdateSettingsRequest{
		TimeSlots: []models.TimeSlot{{Period: 0}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingsPartialUpdateKeepsOtherValues(t *testing.T) {
	repo := newMockSettingsRepo()
	svc := NewSettingsService(repo, nil, nil)

	_, err := svc.Update(context.Background(), UpdateSettingsRequest{SchoolName: strPtr("Springfield High")})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), UpdateSettingsRequest{AcademicYear: strPtr("2026/2027")})
	require.NoError(t, err)
	assert.Equal(t, "Springfield High", updated.SchoolName)
	assert.Equal(t, "2026/2027", updated.AcademicYear)
}
