/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package availability computes a day's occupancy state for one aircraft:
// a fixed-granularity slot grid, the exclusion zones derived from existing
// missions, and the classified status of every slot. All computations are
// pure functions of their inputs; the Service only adds snapshot fetching.
package availability

import (
	"time"

	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/models"
)

// DayWindow returns the half-open operating window [start, end) for a date
// in the date's location.
func DayWindow(date time.Time, sched config.Scheduling) (time.Time, time.Time) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return midnight.Add(sched.DayStart), midnight.Add(sched.DayEnd)
}

// GenerateGrid produces the ordered, contiguous candidate slots covering the
// operating window exactly. Every slot starts out Available.
func GenerateGrid(date time.Time, sched config.Scheduling) []models.TimeSlot {
	start, end := DayWindow(date, sched)

	count := int(end.Sub(start) / sched.SlotInterval)
	slots := make([]models.TimeSlot, 0, count)
	for cursor := start; cursor.Before(end); cursor = cursor.Add(sched.SlotInterval) {
		slots = append(slots, models.TimeSlot{
			Start:  cursor,
			End:    cursor.Add(sched.SlotInterval),
			Status: models.SlotAvailable,
		})
	}
	return slots
}
