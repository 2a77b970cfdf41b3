/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package booking

import (
	"time"

	"github.com/agendoai/aviao-sub000/internal/models"
)

// maxSuggestions caps the alternatives returned with a rejection.
const maxSuggestions = 3

// Suggest scans the classified grid in ascending order and collects up to
// three available slot starts at or after threshold. When that yields fewer
// than three, it falls back to the first available slots after the raw
// conflict's end, ignoring the buffer requirement; such a list is marked
// degraded so callers can warn the user.
func Suggest(slots []models.TimeSlot, threshold, conflictEnd time.Time) ([]time.Time, bool) {
	primary := collect(slots, threshold)
	if len(primary) == maxSuggestions {
		return primary, false
	}

	fallback := collect(slots, conflictEnd)
	if len(fallback) <= len(primary) {
		return primary, false
	}

	degraded := false
	for _, s := range fallback {
		if s.Before(threshold) {
			degraded = true
			break
		}
	}
	return fallback, degraded
}

func collect(slots []models.TimeSlot, from time.Time) []time.Time {
	out := make([]time.Time, 0, maxSuggestions)
	for _, s := range slots {
		if s.Status != models.SlotAvailable || s.Start.Before(from) {
			continue
		}
		out = append(out, s.Start)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
