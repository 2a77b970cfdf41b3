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

	"github.com/agendoai/aviao-sub000/internal/availability"
	"github.com/agendoai/aviao-sub000/internal/booking"
	"github.com/agendoai/aviao-sub000/internal/events"
	"github.com/agendoai/aviao-sub000/internal/models"
)

type validateRequest struct {
	AircraftID  string     `json:"aircraft_id"`
	Date        string     `json:"date"`
	Proposed    time.Time  `json:"proposed"`
	Mode        string     `json:"mode"`
	Counterpart *time.Time `json:"counterpart,omitempty"`
}

func (req *validateRequest) toProposal() (models.MissionProposal, error) {
	if req.AircraftID == "" {
		return models.MissionProposal{}, errors.New("aircraft_id_required")
	}
	if req.Proposed.IsZero() {
		return models.MissionProposal{}, errors.New("proposed_required")
	}

	mode := models.SelectionMode(req.Mode)
	switch mode {
	case models.SelectDeparture:
	case models.SelectReturn:
		if req.Counterpart == nil {
			return models.MissionProposal{}, errors.New("counterpart_required")
		}
	default:
		return models.MissionProposal{}, errors.New("invalid_mode")
	}

	date := req.Proposed
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return models.MissionProposal{}, errors.New("invalid_date")
		}
		date = parsed
	}

	return models.MissionProposal{
		AircraftID:  req.AircraftID,
		Date:        date,
		Proposed:    req.Proposed,
		Mode:        mode,
		Counterpart: req.Counterpart,
	}, nil
}

// handleValidate runs one proposed instant through the rule set.
// POST /api/v1/bookings/validate
func (a *API) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	proposal, err := req.toProposal()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.booking.Validate(r.Context(), proposal)
	if err != nil {
		a.logger.Error().Err(err).Str("aircraft_id", proposal.AircraftID).Msg("validation failed")
		writeError(w, http.StatusInternalServerError, "validation_error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type missionRequest struct {
	AircraftID  string             `json:"aircraft_id"`
	OwnerUserID string             `json:"owner_user_id"`
	Departure   time.Time          `json:"departure"`
	Return      time.Time          `json:"return"`
	OriginICAO  string             `json:"origin_icao"`
	Legs        models.MissionLegs `json:"legs"`
	Notes       string             `json:"notes"`
}

// handleMissionCreate books a mission. Validation runs again inside the
// transaction so two clients racing for the same interval cannot both
// commit against a stale grid.
func (a *API) handleMissionCreate(w http.ResponseWriter, r *http.Request) {
	var req missionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.AircraftID == "" {
		writeError(w, http.StatusBadRequest, "aircraft_id_required")
		return
	}
	if req.Departure.IsZero() || req.Return.IsZero() {
		writeError(w, http.StatusBadRequest, "departure_and_return_required")
		return
	}

	mission := models.Mission{
		ID:          uuid.NewString(),
		AircraftID:  req.AircraftID,
		OwnerUserID: req.OwnerUserID,
		Departure:   req.Departure,
		Return:      req.Return,
		OriginICAO:  req.OriginICAO,
		Legs:        req.Legs,
		Notes:       req.Notes,
		Status:      models.MissionPending,
	}

	var verdict models.ValidationResult
	err := a.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		txBooking := booking.NewService(availability.NewService(tx, a.sched, a.logger), a.sched, a.logger)

		res, err := txBooking.ValidateMission(r.Context(), mission)
		if err != nil {
			return err
		}
		verdict = res
		if !res.Accepted {
			return errMissionRejected
		}

		return tx.Create(&mission).Error
	})

	if errors.Is(err, errMissionRejected) {
		writeJSON(w, http.StatusConflict, verdict)
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Str("aircraft_id", mission.AircraftID).Msg("create mission failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.invalidateGrids(r, mission.AircraftID)
	a.publish(events.EventMissionCreated, events.Payload{
		"mission_id":  mission.ID,
		"aircraft_id": mission.AircraftID,
		"departure":   mission.Departure,
		"return":      mission.Return,
	})

	a.logger.Info().
		Str("mission_id", mission.ID).
		Str("aircraft_id", mission.AircraftID).
		Time("departure", mission.Departure).
		Time("return", mission.Return).
		Msg("mission booked")

	writeJSON(w, http.StatusCreated, mission)
}

var errMissionRejected = errors.New("mission rejected")

func (a *API) handleMissionsList(w http.ResponseWriter, r *http.Request) {
	q := a.db.WithContext(r.Context()).Order("departure_at asc")

	if aircraftID := r.URL.Query().Get("aircraft_id"); aircraftID != "" {
		q = q.Where("aircraft_id = ?", aircraftID)
	}
	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		date, err := parseDate(rawDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		q = q.Where("departure_at < ? AND return_at > ?", date.AddDate(0, 0, 1), date)
	}

	var missions []models.Mission
	if err := q.Find(&missions).Error; err != nil {
		a.logger.Error().Err(err).Msg("list missions failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

func (a *API) handleMissionGet(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "missionID")

	var mission models.Mission
	result := a.db.WithContext(r.Context()).Preload("Aircraft").First(&mission, "id = ?", missionID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

// handleMissionCancel releases the mission's interval and buffers.
func (a *API) handleMissionCancel(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "missionID")

	var mission models.Mission
	result := a.db.WithContext(r.Context()).First(&mission, "id = ?", missionID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if mission.Status == models.MissionCancelled {
		writeJSON(w, http.StatusOK, mission)
		return
	}
	if mission.Status == models.MissionCompleted {
		writeError(w, http.StatusConflict, "mission_completed")
		return
	}

	mission.Status = models.MissionCancelled
	if err := a.db.WithContext(r.Context()).Save(&mission).Error; err != nil {
		a.logger.Error().Err(err).Msg("cancel mission failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.invalidateGrids(r, mission.AircraftID)
	a.publish(events.EventMissionCancelled, events.Payload{
		"mission_id":  mission.ID,
		"aircraft_id": mission.AircraftID,
	})

	a.logger.Info().Str("mission_id", mission.ID).Msg("mission cancelled")
	writeJSON(w, http.StatusOK, mission)
}
