package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScheduleDayAliases(t *testing.T) {
	for _, key := range []string{"Monday", "mon", "MON"} {
		raw := map[string]map[string]rawSlot{
			key: {"1": {Subject: "math", Room: "S1", Code: "JD"}},
		}
		normalized, dropped := normalizeSchedule(raw)
		require.Contains(t, normalized, "Mon", "input %q", key)
		assert.Zero(t, dropped)
		entry := normalized["Mon"]["1"]
		assert.Equal(t, "MATH", entry.Subject)
		assert.Equal(t, "S1", entry.Room)
		assert.Equal(t, "JD", entry.Code)
	}
}

func TestNormalizeScheduleUnknownDayDropped(t *testing.T) {
	raw := map[string]map[string]rawSlot{
		"Mond": {"1": {Subject: "MATH"}, "2": {Subject: "BIO"}},
	}
	normalized, dropped := normalizeSchedule(raw)
	assert.Empty(t, normalized)
	assert.Equal(t, 2, dropped)
}

func TestNormalizeScheduleSubjectRequired(t *testing.T) {
	raw := map[string]map[string]rawSlot{
		"Tue": {
			"1": {Room: "S1", Code: "JD"},
			"2": {Subject: "physics", Code: "SMT"},
		},
	}
	normalized, dropped := normalizeSchedule(raw)
	require.Contains(t, normalized, "Tue")
	assert.Equal(t, 1, dropped)
	_, hasFirst := normalized["Tue"]["1"]
	assert.False(t, hasFirst)
	assert.Equal(t, "PHYSICS", normalized["Tue"]["2"].Subject)
}

func TestNormalizeSchedulePeriodKeysPassThrough(t *testing.T) {
	raw := map[string]map[string]rawSlot{
		"wednesday": {"07": {Subject: "ART"}},
	}
	normalized, _ := normalizeSchedule(raw)
	_, ok := normalized["Wed"]["07"]
	assert.True(t, ok)
}

func TestNormalizeScheduleNil(t *testing.T) {
	normalized, dropped := normalizeSchedule(nil)
	assert.NotNil(t, normalized)
	assert.Empty(t, normalized)
	assert.Zero(t, dropped)
}
