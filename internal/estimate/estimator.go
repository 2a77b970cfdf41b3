/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package estimate converts a mission's route into flight time, overnight
// stays and a cost breakdown. Reference lookups (coordinates, cruise
// speeds, fees) carry compiled-in fallbacks so a broken external source
// degrades the estimate instead of failing it; a missing aircraft record is
// the one fatal case.
package estimate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/models"
	"github.com/agendoai/aviao-sub000/internal/telemetry"
)

// ErrUnknownAircraft blocks an estimate entirely: without speed and rate
// data there is nothing sensible to compute.
var ErrUnknownAircraft = errors.New("unknown aircraft")

// LegCost is the computed contribution of one flown segment.
type LegCost struct {
	FromICAO    string  `json:"from_icao"`
	ToICAO      string  `json:"to_icao"`
	DistanceNM  float64 `json:"distance_nm"`
	FlightHours float64 `json:"flight_hours"`
	Fees        float64 `json:"fees"`
}

// CostBreakdown is the full estimate for a round trip.
type CostBreakdown struct {
	Legs           []LegCost `json:"legs"`
	DistanceNM     float64   `json:"distance_nm"`
	FlightHours    float64   `json:"flight_hours"`
	FlightCost     float64   `json:"flight_cost"`
	OvernightStays int       `json:"overnight_stays"`
	OvernightCost  float64   `json:"overnight_cost"`
	FeeTotal       float64   `json:"fee_total"`
	Total          float64   `json:"total"`
	// UsedFallbacks lists lookups served from compiled-in defaults.
	UsedFallbacks []string `json:"used_fallbacks,omitempty"`
}

// Request describes the mission to estimate. Zero rates fall back to the
// aircraft's own schedule.
type Request struct {
	AircraftID    string              `json:"aircraft_id"`
	Legs          []models.MissionLeg `json:"legs"`
	Departure     time.Time           `json:"departure"`
	Return        time.Time           `json:"return"`
	HourlyRate    float64             `json:"hourly_rate,omitempty"`
	OvernightRate float64             `json:"overnight_rate,omitempty"`
}

// FlightHours converts one leg's great-circle distance into padded flight
// time.
func FlightHours(distanceNM, cruiseKt, padding float64) float64 {
	return distanceNM / cruiseKt * padding
}

// OvernightStays classifies billable nights. Returns on a later calendar
// date bill one night per full 24 hours away; a same-date return bills a
// single night only when the clock wrapped past midnight into the early
// morning.
func OvernightStays(departure, ret time.Time, earlyMorningCut time.Duration) int {
	ret = ret.In(departure.Location())

	depY, depM, depD := departure.Date()
	retY, retM, retD := ret.Date()

	sameDate := depY == retY && depM == retM && depD == retD
	if !sameDate {
		if ret.Before(departure) {
			return 0
		}
		return int(ret.Sub(departure).Hours() / 24)
	}

	depClock := clockOffset(departure)
	retClock := clockOffset(ret)
	if retClock < depClock && retClock < earlyMorningCut {
		return 1
	}
	return 0
}

func clockOffset(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

// Service computes mission estimates from stored aircraft data and the
// reference tables.
type Service struct {
	db       *gorm.DB
	sched    config.Scheduling
	airports CoordinateSource
	speeds   map[string]float64
	fees     FeeLookup
	logger   zerolog.Logger
}

// NewService creates an estimator. airports and fees may be external
// sources; pass the Default tables to run self-contained.
func NewService(db *gorm.DB, sched config.Scheduling, airports CoordinateSource, fees FeeLookup, logger zerolog.Logger) *Service {
	return &Service{
		db:       db,
		sched:    sched,
		airports: airports,
		speeds:   DefaultCruiseSpeeds(),
		fees:     fees,
		logger:   logger.With().Str("component", "estimator").Logger(),
	}
}

// EstimateMission loads the aircraft and prices the requested route.
func (s *Service) EstimateMission(ctx context.Context, req Request) (CostBreakdown, error) {
	var aircraft models.Aircraft
	err := s.db.WithContext(ctx).First(&aircraft, "id = ?", req.AircraftID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CostBreakdown{}, fmt.Errorf("%w: %s", ErrUnknownAircraft, req.AircraftID)
	}
	if err != nil {
		return CostBreakdown{}, fmt.Errorf("fetch aircraft: %w", err)
	}

	return s.EstimateForAircraft(aircraft, req)
}

// EstimateForAircraft prices the route for an already loaded aircraft.
func (s *Service) EstimateForAircraft(aircraft models.Aircraft, req Request) (CostBreakdown, error) {
	if len(req.Legs) == 0 {
		return CostBreakdown{}, errors.New("mission has no legs")
	}

	breakdown := CostBreakdown{}

	speed := s.cruiseSpeed(aircraft, &breakdown)

	originBase := aircraft.BaseICAO
	if originBase == "" {
		originBase = req.Legs[0].FromICAO
	}

	for _, leg := range req.Legs {
		from, err := s.coordinates(leg.FromICAO, &breakdown)
		if err != nil {
			return CostBreakdown{}, err
		}
		to, err := s.coordinates(leg.ToICAO, &breakdown)
		if err != nil {
			return CostBreakdown{}, err
		}

		dist := DistanceNM(from, to)
		hours := FlightHours(dist, speed, s.sched.RoutingPadding)

		legCost := LegCost{
			FromICAO:    leg.FromICAO,
			ToICAO:      leg.ToICAO,
			DistanceNM:  dist,
			FlightHours: hours,
		}

		// Per-leg fees accrue at each destination except the origin base.
		if leg.ToICAO != originBase {
			legCost.Fees = s.destinationFees(leg.ToICAO, &breakdown)
		}

		breakdown.Legs = append(breakdown.Legs, legCost)
		breakdown.DistanceNM += dist
		breakdown.FlightHours += hours
		breakdown.FeeTotal += legCost.Fees
	}

	hourlyRate := req.HourlyRate
	if hourlyRate == 0 {
		hourlyRate = aircraft.HourlyRate
	}
	overnightRate := req.OvernightRate
	if overnightRate == 0 {
		overnightRate = aircraft.OvernightRate
	}

	breakdown.FlightCost = breakdown.FlightHours * hourlyRate
	breakdown.OvernightStays = OvernightStays(req.Departure, req.Return, s.sched.EarlyMorningCut)
	breakdown.OvernightCost = float64(breakdown.OvernightStays) * overnightRate
	breakdown.Total = breakdown.FlightCost + breakdown.OvernightCost + breakdown.FeeTotal

	return breakdown, nil
}

func (s *Service) cruiseSpeed(aircraft models.Aircraft, breakdown *CostBreakdown) float64 {
	if aircraft.CruiseKnots > 0 {
		return aircraft.CruiseKnots
	}
	if speed, ok := s.speeds[aircraft.Model]; ok {
		return speed
	}

	s.logger.Warn().
		Str("aircraft_id", aircraft.ID).
		Str("model", aircraft.Model).
		Float64("fallback_kt", s.sched.DefaultCruiseKt).
		Msg("no cruise speed on record, using fallback")
	telemetry.EstimateFallbacksTotal.WithLabelValues("cruise_speed").Inc()
	breakdown.UsedFallbacks = append(breakdown.UsedFallbacks, "cruise_speed")
	return s.sched.DefaultCruiseKt
}

func (s *Service) coordinates(icao string, breakdown *CostBreakdown) (Coord, error) {
	c, err := s.airports.Coordinates(icao)
	if err == nil {
		return c, nil
	}

	// External source failed; the compiled-in table is the documented
	// fallback.
	if fallback, fbErr := DefaultAirportTable().Coordinates(icao); fbErr == nil {
		s.logger.Warn().Err(err).Str("icao", icao).Msg("coordinate lookup unavailable, using default table")
		telemetry.EstimateFallbacksTotal.WithLabelValues("coordinates").Inc()
		breakdown.UsedFallbacks = append(breakdown.UsedFallbacks, "coordinates:"+icao)
		return fallback, nil
	}

	return Coord{}, fmt.Errorf("coordinates for %s: %w", icao, err)
}

func (s *Service) destinationFees(icao string, breakdown *CostBreakdown) float64 {
	fees, err := s.fees.Fees(icao)
	if err != nil {
		s.logger.Warn().Err(err).Str("icao", icao).Msg("fee lookup unavailable, omitting destination fees")
		telemetry.EstimateFallbacksTotal.WithLabelValues("fees").Inc()
		breakdown.UsedFallbacks = append(breakdown.UsedFallbacks, "fees:"+icao)
		return 0
	}
	return fees.Total()
}
