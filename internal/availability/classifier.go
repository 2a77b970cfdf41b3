/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package availability

import (
	"time"

	"github.com/agendoai/aviao-sub000/internal/models"
)

// Classify stamps every generated slot with its occupancy status. Rule
// order is fixed: admin closure wins over everything, then mission
// intervals, then pre-flight buffers, then post-flight buffers. The
// reported block kind is presentation only; overlapping buffers from
// different missions all stay in the zone set for the validator.
func Classify(slots []models.TimeSlot, windows []models.AdminAvailabilityWindow, zones []models.BufferZone) []models.TimeSlot {
	out := make([]models.TimeSlot, len(slots))
	copy(out, slots)

	for i := range out {
		classifySlot(&out[i], windows, zones)
	}

	annotateNextAvailable(out)
	return out
}

func classifySlot(slot *models.TimeSlot, windows []models.AdminAvailabilityWindow, zones []models.BufferZone) {
	if !openWindowCovers(*slot, windows) {
		slot.Status = models.SlotBlocked
		slot.BlockKind = models.BlockClosed
		slot.Reason = "aircraft not released for scheduling in this period"
		return
	}

	if zone, ok := firstOverlapping(*slot, zones, models.BlockMissionInProgress); ok {
		slot.Status = models.SlotBooked
		slot.BlockKind = models.BlockMissionInProgress
		slot.MissionID = zone.MissionID
		slot.Reason = "mission in progress"
		return
	}

	if zone, ok := firstOverlapping(*slot, zones, models.BlockPreFlight); ok {
		slot.Status = models.SlotBlocked
		slot.BlockKind = models.BlockPreFlight
		slot.MissionID = zone.MissionID
		slot.Reason = "pre-flight preparation for the next mission"
		return
	}

	if zone, ok := firstOverlapping(*slot, zones, models.BlockPostFlight); ok {
		slot.Status = models.SlotBlocked
		slot.BlockKind = models.BlockPostFlight
		slot.MissionID = zone.MissionID
		slot.Reason = "post-flight maintenance"
		return
	}

	slot.Status = models.SlotAvailable
	slot.BlockKind = models.BlockNone
}

// openWindowCovers reports whether some open admin window fully contains the
// slot and no blocked window touches it.
func openWindowCovers(slot models.TimeSlot, windows []models.AdminAvailabilityWindow) bool {
	covered := false
	for _, w := range windows {
		switch w.Status {
		case models.WindowBlocked:
			if w.Start.Before(slot.End) && w.End.After(slot.Start) {
				return false
			}
		case models.WindowOpen:
			if !slot.Start.Before(w.Start) && !slot.End.After(w.End) {
				covered = true
			}
		}
	}
	return covered
}

func firstOverlapping(slot models.TimeSlot, zones []models.BufferZone, kind models.BlockKind) (models.BufferZone, bool) {
	for _, z := range zones {
		if z.Kind == kind && z.Overlaps(slot.Start, slot.End) {
			return z, true
		}
	}
	return models.BufferZone{}, false
}

// annotateNextAvailable points every non-available slot at the earliest
// subsequent available slot, scanning once from the end.
func annotateNextAvailable(slots []models.TimeSlot) {
	var next *time.Time
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i].Status == models.SlotAvailable {
			start := slots[i].Start
			next = &start
			continue
		}
		slots[i].NextAvailable = next
	}
}
