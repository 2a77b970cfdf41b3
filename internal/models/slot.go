/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// SlotStatus is the classified state of one candidate interval. Slots are
// transient: computed per query, never persisted.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotBlocked   SlotStatus = "blocked"
	SlotInvalid   SlotStatus = "invalid"
)

// BlockKind says why a blocked or booked slot is unusable.
type BlockKind string

const (
	BlockNone              BlockKind = ""
	BlockPreFlight         BlockKind = "pre_flight"
	BlockPostFlight        BlockKind = "post_flight"
	BlockMissionInProgress BlockKind = "mission_in_progress"
	// BlockClosed marks slots outside every open admin window. A hard
	// closure: the validator never suggests times through it.
	BlockClosed BlockKind = "closed"
)

// TimeSlot is a half-open [Start, End) candidate interval at fixed
// granularity.
type TimeSlot struct {
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	Status        SlotStatus `json:"status"`
	BlockKind     BlockKind  `json:"block_kind,omitempty"`
	MissionID     string     `json:"mission_id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	NextAvailable *time.Time `json:"next_available,omitempty"`
}

// Contains reports whether the instant falls inside the slot.
func (s TimeSlot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// BufferZone is a derived exclusion interval around a mission. Zones are
// never merged across missions; the validator needs to know which mission
// caused a conflict.
type BufferZone struct {
	MissionID string    `json:"mission_id"`
	Kind      BlockKind `json:"kind"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// Overlaps reports whether the zone intersects the half-open [start, end).
func (z BufferZone) Overlaps(start, end time.Time) bool {
	return z.Start.Before(end) && z.End.After(start)
}

// SelectionMode distinguishes the two validator entry points.
type SelectionMode string

const (
	SelectDeparture SelectionMode = "departure"
	SelectReturn    SelectionMode = "return"
)

// MissionProposal is a candidate departure or return instant to validate.
type MissionProposal struct {
	AircraftID string        `json:"aircraft_id"`
	Date       time.Time     `json:"date"`
	Proposed   time.Time     `json:"proposed"`
	Mode       SelectionMode `json:"mode"`
	// Counterpart carries the already chosen departure when Mode is
	// SelectReturn.
	Counterpart *time.Time `json:"counterpart,omitempty"`
}

// ReasonCode is the closed set of rejection causes.
type ReasonCode string

const (
	ReasonInvalidInterval ReasonCode = "invalid_interval"
	ReasonStatusBlocked   ReasonCode = "status_blocked"
	ReasonPathCollision   ReasonCode = "path_collision"
	ReasonInsufficientGap ReasonCode = "insufficient_gap"
	ReasonNoOpenWindow    ReasonCode = "no_open_window"
)

// ValidationResult is the validator's verdict on a proposal. Suggestions
// hold at most three instants, ascending. Degraded marks best-effort
// suggestions that ignore the buffer requirement.
type ValidationResult struct {
	Accepted     bool        `json:"accepted"`
	Code         ReasonCode  `json:"code,omitempty"`
	BlockKind    BlockKind   `json:"block_kind,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	RequiredFrom *time.Time  `json:"required_from,omitempty"`
	Suggestions  []time.Time `json:"suggestions,omitempty"`
	Degraded     bool        `json:"degraded,omitempty"`
}
