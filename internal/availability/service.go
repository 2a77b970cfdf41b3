/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/models"
)

// Snapshot is the read-only view of one aircraft's timeline around a day.
// The engine never mutates missions; concurrent writers are resolved by the
// persistence layer at commit time, not here.
type Snapshot struct {
	AircraftID string
	Missions   []models.Mission
	Windows    []models.AdminAvailabilityWindow
}

// Day is the fully computed occupancy state for one aircraft and date.
type Day struct {
	AircraftID string              `json:"aircraft_id"`
	Date       time.Time           `json:"date"`
	Start      time.Time           `json:"start"`
	End        time.Time           `json:"end"`
	Slots      []models.TimeSlot   `json:"slots"`
	Zones      []models.BufferZone `json:"zones,omitempty"`
}

// BuildDay classifies a snapshot into a day's grid. Pure; deterministic for
// a given snapshot.
func BuildDay(snap Snapshot, date time.Time, sched config.Scheduling) Day {
	dayStart, dayEnd := DayWindow(date, sched)
	zones := BuildBufferZones(snap.Missions, dayStart, dayEnd, sched)
	slots := Classify(GenerateGrid(date, sched), snap.Windows, zones)

	return Day{
		AircraftID: snap.AircraftID,
		Date:       date,
		Start:      dayStart,
		End:        dayEnd,
		Slots:      slots,
		Zones:      zones,
	}
}

// Service fetches snapshots from the booking and admin stores and runs the
// pure grid computation over them.
type Service struct {
	db     *gorm.DB
	sched  config.Scheduling
	logger zerolog.Logger
}

// NewService creates an availability service.
func NewService(db *gorm.DB, sched config.Scheduling, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		sched:  sched,
		logger: logger.With().Str("component", "availability").Logger(),
	}
}

// Snapshot loads every mission and admin window that can influence the
// given day. The mission fetch is widened by the buffers so cross-midnight
// spill from neighbouring days is caught.
func (s *Service) Snapshot(ctx context.Context, aircraftID string, date time.Time) (Snapshot, error) {
	dayStart, dayEnd := DayWindow(date, s.sched)

	// A mission influences the day when its padded interval
	// [departure - pre-flight, return + maintenance) touches the window.
	fetchEnd := dayEnd.Add(s.sched.PreFlightBuffer)
	fetchStart := dayStart.Add(-s.sched.MaintenanceBuffer)

	var missions []models.Mission
	err := s.db.WithContext(ctx).
		Where("aircraft_id = ? AND departure_at < ? AND return_at > ? AND status <> ?",
			aircraftID, fetchEnd, fetchStart, models.MissionCancelled).
		Order("departure_at asc").
		Find(&missions).Error
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch missions: %w", err)
	}

	var windows []models.AdminAvailabilityWindow
	err = s.db.WithContext(ctx).
		Where("aircraft_id = ? AND start_at < ? AND end_at > ?", aircraftID, dayEnd, dayStart).
		Order("start_at asc").
		Find(&windows).Error
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch admin windows: %w", err)
	}

	return Snapshot{AircraftID: aircraftID, Missions: missions, Windows: windows}, nil
}

// MissionsOverlapping returns every non-cancelled mission whose buffered
// interval collides with the buffered interval of a mission spanning
// [departure, ret]. Each side carries its own pre-flight and maintenance
// pads, so two missions conflict when the padded intervals touch at all.
// Unlike Snapshot this is not clipped to a day: it is the span check for
// missions that cross one or more midnights.
func (s *Service) MissionsOverlapping(ctx context.Context, aircraftID string, departure, ret time.Time) ([]models.Mission, error) {
	pad := s.sched.PreFlightBuffer + s.sched.MaintenanceBuffer

	var missions []models.Mission
	err := s.db.WithContext(ctx).
		Where("aircraft_id = ? AND departure_at < ? AND return_at > ? AND status <> ?",
			aircraftID, ret.Add(pad), departure.Add(-pad), models.MissionCancelled).
		Order("return_at asc").
		Find(&missions).Error
	if err != nil {
		return nil, fmt.Errorf("fetch overlapping missions: %w", err)
	}
	return missions, nil
}

// DaySlots returns the classified grid for an aircraft and date.
func (s *Service) DaySlots(ctx context.Context, aircraftID string, date time.Time) (Day, error) {
	snap, err := s.Snapshot(ctx, aircraftID, date)
	if err != nil {
		return Day{}, err
	}

	day := BuildDay(snap, date, s.sched)
	s.logger.Debug().
		Str("aircraft_id", aircraftID).
		Time("date", date).
		Int("slots", len(day.Slots)).
		Int("zones", len(day.Zones)).
		Msg("day grid computed")
	return day, nil
}
