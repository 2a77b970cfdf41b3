/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agendoai/aviao-sub000/internal/events"
	"github.com/agendoai/aviao-sub000/internal/models"
)

type aircraftRequest struct {
	Registration  string  `json:"registration"`
	Model         string  `json:"model"`
	BaseICAO      string  `json:"base_icao"`
	Seats         int     `json:"seats"`
	CruiseKnots   float64 `json:"cruise_knots"`
	HourlyRate    float64 `json:"hourly_rate"`
	OvernightRate float64 `json:"overnight_rate"`
}

func (a *API) handleAircraftList(w http.ResponseWriter, r *http.Request) {
	if a.cache != nil {
		if fleet, ok := a.cache.GetAircraftList(r.Context()); ok {
			writeJSON(w, http.StatusOK, fleet)
			return
		}
	}

	var fleet []models.Aircraft
	if err := a.db.WithContext(r.Context()).Order("registration asc").Find(&fleet).Error; err != nil {
		a.logger.Error().Err(err).Msg("list aircraft failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.cache != nil {
		_ = a.cache.SetAircraftList(r.Context(), fleet)
	}
	writeJSON(w, http.StatusOK, fleet)
}

func (a *API) handleAircraftCreate(w http.ResponseWriter, r *http.Request) {
	var req aircraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Registration == "" {
		writeError(w, http.StatusBadRequest, "registration_required")
		return
	}

	aircraft := models.Aircraft{
		ID:            uuid.NewString(),
		Registration:  req.Registration,
		Model:         req.Model,
		BaseICAO:      req.BaseICAO,
		Seats:         req.Seats,
		CruiseKnots:   req.CruiseKnots,
		HourlyRate:    req.HourlyRate,
		OvernightRate: req.OvernightRate,
	}

	if err := a.db.WithContext(r.Context()).Create(&aircraft).Error; err != nil {
		a.logger.Error().Err(err).Msg("create aircraft failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.invalidateGrids(r, aircraft.ID)
	a.publish(events.EventAircraftCreated, events.Payload{"aircraft_id": aircraft.ID})

	a.logger.Info().Str("aircraft_id", aircraft.ID).Str("registration", aircraft.Registration).Msg("aircraft created")
	writeJSON(w, http.StatusCreated, aircraft)
}

func (a *API) handleAircraftGet(w http.ResponseWriter, r *http.Request) {
	aircraftID := chi.URLParam(r, "aircraftID")

	if a.cache != nil {
		if aircraft, ok := a.cache.GetAircraft(r.Context(), aircraftID); ok {
			writeJSON(w, http.StatusOK, aircraft)
			return
		}
	}

	var aircraft models.Aircraft
	result := a.db.WithContext(r.Context()).First(&aircraft, "id = ?", aircraftID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if result.Error != nil {
		a.logger.Error().Err(result.Error).Msg("get aircraft failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.cache != nil {
		_ = a.cache.SetAircraft(r.Context(), &aircraft)
	}
	writeJSON(w, http.StatusOK, aircraft)
}

func (a *API) handleAircraftUpdate(w http.ResponseWriter, r *http.Request) {
	aircraftID := chi.URLParam(r, "aircraftID")

	var aircraft models.Aircraft
	result := a.db.WithContext(r.Context()).First(&aircraft, "id = ?", aircraftID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req aircraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if req.Registration != "" {
		aircraft.Registration = req.Registration
	}
	if req.Model != "" {
		aircraft.Model = req.Model
	}
	if req.BaseICAO != "" {
		aircraft.BaseICAO = req.BaseICAO
	}
	if req.Seats > 0 {
		aircraft.Seats = req.Seats
	}
	if req.CruiseKnots > 0 {
		aircraft.CruiseKnots = req.CruiseKnots
	}
	if req.HourlyRate > 0 {
		aircraft.HourlyRate = req.HourlyRate
	}
	if req.OvernightRate > 0 {
		aircraft.OvernightRate = req.OvernightRate
	}

	if err := a.db.WithContext(r.Context()).Save(&aircraft).Error; err != nil {
		a.logger.Error().Err(err).Msg("update aircraft failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.cache != nil {
		_ = a.cache.InvalidateAircraft(r.Context(), aircraftID)
	}
	a.publish(events.EventAircraftUpdated, events.Payload{"aircraft_id": aircraftID})

	writeJSON(w, http.StatusOK, aircraft)
}

func (a *API) handleAircraftDelete(w http.ResponseWriter, r *http.Request) {
	aircraftID := chi.URLParam(r, "aircraftID")

	// Aircraft with upcoming missions cannot be removed.
	var active int64
	err := a.db.WithContext(r.Context()).Model(&models.Mission{}).
		Where("aircraft_id = ? AND status IN ?", aircraftID,
			[]models.MissionStatus{models.MissionPending, models.MissionConfirmed}).
		Count(&active).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if active > 0 {
		writeError(w, http.StatusConflict, "aircraft_has_missions")
		return
	}

	result := a.db.WithContext(r.Context()).Delete(&models.Aircraft{}, "id = ?", aircraftID)
	if result.Error != nil {
		a.logger.Error().Err(result.Error).Msg("delete aircraft failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	if a.cache != nil {
		_ = a.cache.InvalidateAircraft(r.Context(), aircraftID)
	}
	a.publish(events.EventAircraftDeleted, events.Payload{"aircraft_id": aircraftID})

	w.WriteHeader(http.StatusNoContent)
}
