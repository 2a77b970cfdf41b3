/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package booking

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agendoai/aviao-sub000/internal/availability"
	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/models"
	"github.com/agendoai/aviao-sub000/internal/telemetry"
)

// Service runs proposals through the validator over a freshly fetched
// snapshot. Acceptance here is advisory: the mission write path must
// re-validate inside its transaction before commit.
type Service struct {
	avail  *availability.Service
	sched  config.Scheduling
	logger zerolog.Logger
}

// NewService creates a booking validation service.
func NewService(avail *availability.Service, sched config.Scheduling, logger zerolog.Logger) *Service {
	return &Service{
		avail:  avail,
		sched:  sched,
		logger: logger.With().Str("component", "booking_validator").Logger(),
	}
}

// Validate fetches the day's occupancy state and applies the rule set to
// the proposal.
func (s *Service) Validate(ctx context.Context, p models.MissionProposal) (models.ValidationResult, error) {
	day, err := s.avail.DaySlots(ctx, p.AircraftID, p.Date)
	if err != nil {
		return models.ValidationResult{}, err
	}

	res := Validate(day, p, s.sched)

	outcome := "accepted"
	if !res.Accepted {
		outcome = string(res.Code)
	}
	telemetry.ValidationsTotal.WithLabelValues(string(p.Mode), outcome).Inc()
	if res.Degraded {
		telemetry.SuggestionsDegradedTotal.Inc()
	}

	s.logger.Debug().
		Str("aircraft_id", p.AircraftID).
		Time("proposed", p.Proposed).
		Str("mode", string(p.Mode)).
		Str("outcome", outcome).
		Int("suggestions", len(res.Suggestions)).
		Msg("proposal validated")

	return res, nil
}

// ValidateMission checks both endpoints of a mission the way the booking
// flow does: departure first, then the return against the departure, then
// the full interval against every other mission on the aircraft. The day
// grids only see their own date, so the span check is what catches an
// existing mission sitting entirely on an intermediate day of a multi-day
// request. Used as the authoritative re-validation before a mission row is
// committed.
func (s *Service) ValidateMission(ctx context.Context, m models.Mission) (models.ValidationResult, error) {
	dep, err := s.Validate(ctx, models.MissionProposal{
		AircraftID: m.AircraftID,
		Date:       m.Departure,
		Proposed:   m.Departure,
		Mode:       models.SelectDeparture,
	})
	if err != nil || !dep.Accepted {
		return dep, err
	}

	departure := m.Departure
	ret, err := s.Validate(ctx, models.MissionProposal{
		AircraftID:  m.AircraftID,
		Date:        m.Return,
		Proposed:    m.Return,
		Mode:        models.SelectReturn,
		Counterpart: &departure,
	})
	if err != nil || !ret.Accepted {
		return ret, err
	}

	conflicts, err := s.avail.MissionsOverlapping(ctx, m.AircraftID, m.Departure, m.Return)
	if err != nil {
		return models.ValidationResult{}, err
	}
	if len(conflicts) > 0 {
		last := conflicts[len(conflicts)-1]
		threshold := last.Return.Add(s.sched.MaintenanceBuffer + s.sched.PreFlightBuffer)
		telemetry.ValidationsTotal.WithLabelValues("mission", string(models.ReasonPathCollision)).Inc()

		s.logger.Debug().
			Str("aircraft_id", m.AircraftID).
			Time("departure", m.Departure).
			Time("return", m.Return).
			Str("conflict_mission_id", last.ID).
			Msg("mission interval collides with an existing mission")

		return models.ValidationResult{
			Accepted:     false,
			Code:         models.ReasonPathCollision,
			BlockKind:    models.BlockMissionInProgress,
			Reason:       "another mission occupies part of the requested interval",
			RequiredFrom: &threshold,
		}, nil
	}

	return ret, nil
}
