/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agendoai/aviao-sub000/internal/availability"
	"github.com/agendoai/aviao-sub000/internal/models"
)

// handleSlots returns the classified grid for one aircraft and date.
// GET /api/v1/aircraft/{aircraftID}/slots?date=2026-03-10
func (a *API) handleSlots(w http.ResponseWriter, r *http.Request) {
	day, ok := a.dayGrid(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, day)
}

type daySummary struct {
	AircraftID     string     `json:"aircraft_id"`
	Date           string     `json:"date"`
	TotalSlots     int        `json:"total_slots"`
	Available      int        `json:"available"`
	Booked         int        `json:"booked"`
	Blocked        int        `json:"blocked"`
	FirstAvailable *time.Time `json:"first_available,omitempty"`
	LastAvailable  *time.Time `json:"last_available,omitempty"`
}

// handleDaySummary condenses a day grid into per-status counts, for fleet
// overview screens that do not need the slot list.
func (a *API) handleDaySummary(w http.ResponseWriter, r *http.Request) {
	day, ok := a.dayGrid(w, r)
	if !ok {
		return
	}

	summary := daySummary{
		AircraftID: day.AircraftID,
		Date:       day.Date.Format("2006-01-02"),
		TotalSlots: len(day.Slots),
	}
	for i := range day.Slots {
		slot := day.Slots[i]
		switch slot.Status {
		case models.SlotAvailable:
			summary.Available++
			if summary.FirstAvailable == nil {
				start := slot.Start
				summary.FirstAvailable = &start
			}
			last := slot.Start
			summary.LastAvailable = &last
		case models.SlotBooked:
			summary.Booked++
		default:
			summary.Blocked++
		}
	}

	writeJSON(w, http.StatusOK, summary)
}

// dayGrid resolves the aircraft and date from the request and returns the
// classified day, served from cache when possible. Writes the error
// response itself on failure.
func (a *API) dayGrid(w http.ResponseWriter, r *http.Request) (*availability.Day, bool) {
	aircraftID := chi.URLParam(r, "aircraftID")

	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		writeError(w, http.StatusBadRequest, "date_required")
		return nil, false
	}
	date, err := parseDate(rawDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return nil, false
	}

	if a.cache != nil {
		if day, ok := a.cache.GetDayGrid(r.Context(), aircraftID, date); ok {
			return day, true
		}
	}

	day, err := a.avail.DaySlots(r.Context(), aircraftID, date)
	if err != nil {
		a.logger.Error().Err(err).Str("aircraft_id", aircraftID).Msg("day grid failed")
		writeError(w, http.StatusInternalServerError, "grid_error")
		return nil, false
	}

	if a.cache != nil {
		_ = a.cache.SetDayGrid(r.Context(), &day)
	}
	return &day, true
}
