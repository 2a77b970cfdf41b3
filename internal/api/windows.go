/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agendoai/aviao-sub000/internal/events"
	"github.com/agendoai/aviao-sub000/internal/models"
)

type windowRequest struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
	Note   string    `json:"note"`
}

func (req *windowRequest) status() (models.WindowStatus, bool) {
	switch models.WindowStatus(req.Status) {
	case models.WindowOpen:
		return models.WindowOpen, true
	case models.WindowBlocked:
		return models.WindowBlocked, true
	case "":
		return models.WindowOpen, true
	}
	return "", false
}

func (a *API) handleWindowsList(w http.ResponseWriter, r *http.Request) {
	aircraftID := chi.URLParam(r, "aircraftID")

	var windows []models.AdminAvailabilityWindow
	err := a.db.WithContext(r.Context()).
		Where("aircraft_id = ?", aircraftID).
		Order("start_at asc").
		Find(&windows).Error
	if err != nil {
		a.logger.Error().Err(err).Msg("list windows failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, windows)
}

func (a *API) handleWindowCreate(w http.ResponseWriter, r *http.Request) {
	aircraftID := chi.URLParam(r, "aircraftID")

	var req windowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !req.End.After(req.Start) {
		writeError(w, http.StatusBadRequest, "invalid_interval")
		return
	}
	status, ok := req.status()
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	window := models.AdminAvailabilityWindow{
		ID:         uuid.NewString(),
		AircraftID: aircraftID,
		Start:      req.Start,
		End:        req.End,
		Status:     status,
		Note:       req.Note,
	}

	if err := a.db.WithContext(r.Context()).Create(&window).Error; err != nil {
		a.logger.Error().Err(err).Msg("create window failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.invalidateGrids(r, aircraftID)
	a.publish(events.EventWindowCreated, events.Payload{
		"window_id":   window.ID,
		"aircraft_id": aircraftID,
	})

	writeJSON(w, http.StatusCreated, window)
}

func (a *API) handleWindowUpdate(w http.ResponseWriter, r *http.Request) {
	aircraftID := chi.URLParam(r, "aircraftID")
	windowID := chi.URLParam(r, "windowID")

	var window models.AdminAvailabilityWindow
	result := a.db.WithContext(r.Context()).
		First(&window, "id = ? AND aircraft_id = ?", windowID, aircraftID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req windowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if !req.Start.IsZero() {
		window.Start = req.Start
	}
	if !req.End.IsZero() {
		window.End = req.End
	}
	if !window.End.After(window.Start) {
		writeError(w, http.StatusBadRequest, "invalid_interval")
		return
	}
	if req.Status != "" {
		status, ok := req.status()
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_status")
			return
		}
		window.Status = status
	}
	if req.Note != "" {
		window.Note = req.Note
	}

	if err := a.db.WithContext(r.Context()).Save(&window).Error; err != nil {
		a.logger.Error().Err(err).Msg("update window failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.invalidateGrids(r, aircraftID)
	a.publish(events.EventWindowUpdated, events.Payload{
		"window_id":   window.ID,
		"aircraft_id": aircraftID,
	})

	writeJSON(w, http.StatusOK, window)
}

func (a *API) handleWindowDelete(w http.ResponseWriter, r *http.Request) {
	aircraftID := chi.URLParam(r, "aircraftID")
	windowID := chi.URLParam(r, "windowID")

	result := a.db.WithContext(r.Context()).
		Delete(&models.AdminAvailabilityWindow{}, "id = ? AND aircraft_id = ?", windowID, aircraftID)
	if result.Error != nil {
		a.logger.Error().Err(result.Error).Msg("delete window failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	a.invalidateGrids(r, aircraftID)
	a.publish(events.EventWindowDeleted, events.Payload{
		"window_id":   windowID,
		"aircraft_id": aircraftID,
	})

	w.WriteHeader(http.StatusNoContent)
}
