/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package availability

import (
	"sort"
	"time"

	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/models"
)

// BuildBufferZones derives the exclusion zones for every mission whose
// padded interval touches [dayStart, dayEnd). Each mission contributes its
// own interval plus a pre-flight and a post-flight buffer. Zones from
// adjacent missions are deliberately kept separate rather than coalesced:
// the validator and the suggestion search need to know which mission caused
// a conflict.
func BuildBufferZones(missions []models.Mission, dayStart, dayEnd time.Time, sched config.Scheduling) []models.BufferZone {
	zones := make([]models.BufferZone, 0, 3*len(missions))

	for _, m := range missions {
		if !m.Status.Occupies() {
			continue
		}
		if m.Return.Before(m.Departure) || m.Return.Equal(m.Departure) {
			continue
		}

		// Pad by the buffers so missions spilling across midnight from
		// neighbouring days still block this day's edges.
		paddedStart := m.Departure.Add(-sched.PreFlightBuffer)
		paddedEnd := m.Return.Add(sched.MaintenanceBuffer)
		if !paddedStart.Before(dayEnd) || !paddedEnd.After(dayStart) {
			continue
		}

		zones = append(zones,
			models.BufferZone{
				MissionID: m.ID,
				Kind:      models.BlockMissionInProgress,
				Start:     m.Departure,
				End:       m.Return,
			},
			models.BufferZone{
				MissionID: m.ID,
				Kind:      models.BlockPreFlight,
				Start:     paddedStart,
				End:       m.Departure,
			},
			models.BufferZone{
				MissionID: m.ID,
				Kind:      models.BlockPostFlight,
				Start:     m.Return,
				End:       paddedEnd,
			},
		)
	}

	sort.Slice(zones, func(i, j int) bool {
		return zones[i].Start.Before(zones[j].Start)
	})

	return zones
}
