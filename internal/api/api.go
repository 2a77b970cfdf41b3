/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the scheduling engine over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agendoai/aviao-sub000/internal/availability"
	"github.com/agendoai/aviao-sub000/internal/booking"
	"github.com/agendoai/aviao-sub000/internal/cache"
	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/estimate"
	"github.com/agendoai/aviao-sub000/internal/eventbus"
	"github.com/agendoai/aviao-sub000/internal/events"
)

// API exposes HTTP handlers.
type API struct {
	db        *gorm.DB
	sched     config.Scheduling
	avail     *availability.Service
	booking   *booking.Service
	estimator *estimate.Service
	cache     *cache.Cache
	bus       eventbus.Bus
	logger    zerolog.Logger
}

// New creates the API router wrapper.
func New(db *gorm.DB, sched config.Scheduling, avail *availability.Service, bookingSvc *booking.Service, estimator *estimate.Service, cacheLayer *cache.Cache, bus eventbus.Bus, logger zerolog.Logger) *API {
	return &API{
		db:        db,
		sched:     sched,
		avail:     avail,
		booking:   bookingSvc,
		estimator: estimator,
		cache:     cacheLayer,
		bus:       bus,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts all engine endpoints under /api/v1.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Route("/aircraft", func(r chi.Router) {
			r.Get("/", a.handleAircraftList)
			r.Post("/", a.handleAircraftCreate)

			r.Route("/{aircraftID}", func(r chi.Router) {
				r.Get("/", a.handleAircraftGet)
				r.Put("/", a.handleAircraftUpdate)
				r.Delete("/", a.handleAircraftDelete)

				r.Get("/slots", a.handleSlots)
				r.Get("/day-summary", a.handleDaySummary)

				r.Route("/windows", func(r chi.Router) {
					r.Get("/", a.handleWindowsList)
					r.Post("/", a.handleWindowCreate)
					r.Put("/{windowID}", a.handleWindowUpdate)
					r.Delete("/{windowID}", a.handleWindowDelete)
				})
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/validate", a.handleValidate)
		})

		r.Route("/missions", func(r chi.Router) {
			r.Get("/", a.handleMissionsList)
			r.Post("/", a.handleMissionCreate)
			r.Post("/estimate", a.handleEstimate)

			r.Route("/{missionID}", func(r chi.Router) {
				r.Get("/", a.handleMissionGet)
				r.Post("/cancel", a.handleMissionCancel)
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseDate accepts the wire date format used by every endpoint that takes
// a day. Dates are interpreted in UTC.
func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func (a *API) publish(eventType events.EventType, payload events.Payload) {
	if a.bus != nil {
		a.bus.Publish(eventType, payload)
	}
}

// invalidateGrids drops cached grids after a timeline change so the next
// read recomputes.
func (a *API) invalidateGrids(r *http.Request, aircraftID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.InvalidateDayGrids(r.Context(), aircraftID); err != nil {
		a.logger.Warn().Err(err).Str("aircraft_id", aircraftID).Msg("grid cache invalidation failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
