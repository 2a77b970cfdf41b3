/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agendoai/aviao-sub000/internal/estimate"
)

// handleEstimate prices a proposed mission without booking it.
// POST /api/v1/missions/estimate
func (a *API) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.AircraftID == "" {
		writeError(w, http.StatusBadRequest, "aircraft_id_required")
		return
	}
	if len(req.Legs) == 0 {
		writeError(w, http.StatusBadRequest, "legs_required")
		return
	}

	breakdown, err := a.estimator.EstimateMission(r.Context(), req)
	if errors.Is(err, estimate.ErrUnknownAircraft) {
		writeError(w, http.StatusNotFound, "unknown_aircraft")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Str("aircraft_id", req.AircraftID).Msg("estimate failed")
		writeError(w, http.StatusUnprocessableEntity, "estimate_error")
		return
	}

	writeJSON(w, http.StatusOK, breakdown)
}
