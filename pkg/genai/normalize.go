package genai

import (
	"strings"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

// dayAliases maps full names and 3-letter abbreviations (case-insensitive via
// lowercased lookup) onto the canonical day keys.
var dayAliases = map[string]string{
	"monday": "Mon", "mon": "Mon",
	"tuesday": "Tue", "tue": "Tue",
	"wednesday": "Wed", "wed": "Wed",
	"thursday": "Thu", "thu": "Thu",
	"friday": "Fri", "fri": "Fri",
	"saturday": "Sat", "sat": "Sat",
	"sunday": "Sun", "sun": "Sun",
}

// normalizeSchedule canonicalizes day keys, uppercases subjects and drops
// slots without a subject. Unrecognized day keys are excluded entirely; period
// keys pass through untouched. Returns the cleaned schedule and how many
// slots were dropped.
func normalizeSchedule(raw map[string]map[string]rawSlot) (map[string]map[string]models.ExtractedEntry, int) {
	normalized := make(map[string]map[string]models.ExtractedEntry)
	if raw == nil {
		return normalized, 0
	}

	dropped := 0
	for rawDay, periods := range raw {
		day, ok := dayAliases[strings.ToLower(strings.TrimSpace(rawDay))]
		if !ok {
			for range periods {
				dropped++
			}
			continue
		}
		normalized[day] = make(map[string]models.ExtractedEntry)
		for period, slot := range periods {
			subject := strings.TrimSpace(slot.Subject)
			if subject == "" {
				// room/code without a subject is not a valid entry
				dropped++
				continue
			}
			normalized[day][period] = models.ExtractedEntry{
				Subject: strings.ToUpper(subject),
				Room:    slot.Room,
				Code:    slot.Code,
			}
		}
	}

	return normalized, dropped
}
