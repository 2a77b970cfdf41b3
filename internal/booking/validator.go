/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package booking validates proposed mission departure and return instants
// against a day's computed occupancy state, and searches for alternative
// times when a proposal is rejected. Validation is pure: two calls over the
// same snapshot always yield the same result, and nothing here ever writes
// mission data.
package booking

import (
	"fmt"
	"time"

	"github.com/agendoai/aviao-sub000/internal/availability"
	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/models"
)

// Validate applies the ordered rule set for the proposal's selection mode.
//
// Departure selection: point status gate, then the backward-gap rule.
// Return selection: point status gate, then the ordering gate, then the
// path-collision scan, then the forward-gap rule. The point gate always
// runs first: a proposal landing on an occupied slot is rejected on the
// slot's own state before any interval rule is consulted.
func Validate(day availability.Day, p models.MissionProposal, sched config.Scheduling) models.ValidationResult {
	slot, ok := slotContaining(day.Slots, p.Proposed)
	if !ok {
		return models.ValidationResult{
			Accepted: false,
			Code:     models.ReasonInvalidInterval,
			Reason:   "proposed time is outside the operating window",
		}
	}

	if p.Mode == models.SelectReturn {
		return validateReturn(day, p, slot, sched)
	}
	return validateDeparture(day, p, slot, sched)
}

func validateDeparture(day availability.Day, p models.MissionProposal, slot models.TimeSlot, sched config.Scheduling) models.ValidationResult {
	if res, rejected := statusGate(slot); rejected {
		return res
	}

	// Backward gap: every zone overlapping the preparation window
	// [proposed - buffer, proposed) pushes the departure out past its own
	// end plus a full buffer. The latest-ending conflict decides.
	windowStart := p.Proposed.Add(-sched.PreFlightBuffer)
	var conflict *models.BufferZone
	for i, z := range day.Zones {
		if !z.Overlaps(windowStart, p.Proposed) {
			continue
		}
		if conflict == nil || z.End.After(conflict.End) {
			conflict = &day.Zones[i]
		}
	}

	if conflict != nil && p.Proposed.Before(conflict.End.Add(sched.PreFlightBuffer)) {
		threshold := conflict.End.Add(sched.PreFlightBuffer)
		suggestions, degraded := Suggest(day.Slots, threshold, conflict.End)
		return models.ValidationResult{
			Accepted:     false,
			Code:         models.ReasonInsufficientGap,
			BlockKind:    conflict.Kind,
			Reason:       fmt.Sprintf("needs %s of preparation clear of the previous mission; free from %s", sched.PreFlightBuffer, threshold.Format("15:04")),
			RequiredFrom: &threshold,
			Suggestions:  suggestions,
			Degraded:     degraded,
		}
	}

	return models.ValidationResult{Accepted: true}
}

func validateReturn(day availability.Day, p models.MissionProposal, slot models.TimeSlot, sched config.Scheduling) models.ValidationResult {
	if p.Counterpart == nil {
		return models.ValidationResult{
			Accepted: false,
			Code:     models.ReasonInvalidInterval,
			Reason:   "return selection without a departure instant",
		}
	}
	departure := *p.Counterpart

	if res, rejected := statusGate(slot); rejected {
		return res
	}

	// Ordering gate.
	if !p.Proposed.After(departure) {
		return models.ValidationResult{
			Accepted: false,
			Code:     models.ReasonInvalidInterval,
			Reason:   "return must come after departure",
		}
	}

	// Path collision: a return may not be chosen "through" an intervening
	// mission, even when the instant itself looks free.
	if collision, ok := pathCollision(day, departure, p.Proposed); ok {
		threshold := collision.End
		suggestions, degraded := Suggest(day.Slots, threshold, collision.End)
		return models.ValidationResult{
			Accepted:     false,
			Code:         models.ReasonPathCollision,
			BlockKind:    models.BlockMissionInProgress,
			Reason:       "another mission is scheduled between the chosen departure and the proposed return",
			RequiredFrom: &threshold,
			Suggestions:  suggestions,
			Degraded:     degraded,
		}
	}

	// Forward gap: the return's own maintenance must clear the next
	// mission's preparation window.
	if next, ok := nextPreFlight(day.Zones, p.Proposed); ok {
		threshold := next.Start.Add(-sched.PreFlightBuffer)
		if !p.Proposed.Before(threshold) {
			suggestions, degraded := Suggest(day.Slots, threshold, next.End)
			return models.ValidationResult{
				Accepted:     false,
				Code:         models.ReasonInsufficientGap,
				BlockKind:    models.BlockPreFlight,
				Reason:       fmt.Sprintf("too close to the next mission's preparation window starting %s", next.Start.Format("15:04")),
				RequiredFrom: &threshold,
				Suggestions:  suggestions,
				Degraded:     degraded,
			}
		}
	}

	return models.ValidationResult{Accepted: true}
}

// statusGate rejects proposals landing on a slot that is already booked,
// buffered, or administratively closed. Closures are terminal: no
// suggestions are offered through them.
func statusGate(slot models.TimeSlot) (models.ValidationResult, bool) {
	switch slot.Status {
	case models.SlotAvailable:
		return models.ValidationResult{}, false
	case models.SlotBooked:
		return models.ValidationResult{
			Accepted:  false,
			Code:      models.ReasonStatusBlocked,
			BlockKind: models.BlockMissionInProgress,
			Reason:    "the aircraft already has a mission in progress at this time",
		}, true
	case models.SlotBlocked:
		if slot.BlockKind == models.BlockClosed {
			return models.ValidationResult{
				Accepted:  false,
				Code:      models.ReasonNoOpenWindow,
				BlockKind: models.BlockClosed,
				Reason:    "the aircraft is not released for scheduling at this time",
			}, true
		}
		return models.ValidationResult{
			Accepted:  false,
			Code:      models.ReasonStatusBlocked,
			BlockKind: slot.BlockKind,
			Reason:    slot.Reason,
		}, true
	default:
		return models.ValidationResult{
			Accepted: false,
			Code:     models.ReasonInvalidInterval,
			Reason:   "slot state cannot be evaluated",
		}, true
	}
}

// pathCollision scans every slot whose start lies in [departure, proposed]
// and reports the latest-ending mission interval found there.
func pathCollision(day availability.Day, departure, proposed time.Time) (models.BufferZone, bool) {
	var conflictID string
	for _, s := range day.Slots {
		if s.Start.Before(departure) || s.Start.After(proposed) {
			continue
		}
		if s.Status == models.SlotBooked && s.BlockKind == models.BlockMissionInProgress {
			conflictID = s.MissionID
		}
	}
	if conflictID == "" {
		return models.BufferZone{}, false
	}

	for _, z := range day.Zones {
		if z.Kind == models.BlockMissionInProgress && z.MissionID == conflictID {
			return z, true
		}
	}
	// Mission spilled in from outside the day's zone span; fall back to a
	// zone built from the slot boundaries.
	return models.BufferZone{MissionID: conflictID, Kind: models.BlockMissionInProgress, Start: departure, End: proposed}, true
}

// nextPreFlight finds the nearest pre-flight zone starting after the
// proposed instant, i.e. the preparation window of the next scheduled
// mission.
func nextPreFlight(zones []models.BufferZone, proposed time.Time) (models.BufferZone, bool) {
	var next models.BufferZone
	found := false
	for _, z := range zones {
		if z.Kind != models.BlockPreFlight || !z.Start.After(proposed) {
			continue
		}
		if !found || z.Start.Before(next.Start) {
			next = z
			found = true
		}
	}
	return next, found
}

func slotContaining(slots []models.TimeSlot, t time.Time) (models.TimeSlot, bool) {
	for _, s := range slots {
		if s.Contains(t) {
			return s, true
		}
	}
	return models.TimeSlot{}, false
}
