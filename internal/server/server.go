/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires configuration, storage, caching, the event bus and
// the HTTP surface into one runnable process.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agendoai/aviao-sub000/internal/api"
	"github.com/agendoai/aviao-sub000/internal/availability"
	"github.com/agendoai/aviao-sub000/internal/booking"
	"github.com/agendoai/aviao-sub000/internal/cache"
	"github.com/agendoai/aviao-sub000/internal/config"
	"github.com/agendoai/aviao-sub000/internal/db"
	"github.com/agendoai/aviao-sub000/internal/estimate"
	"github.com/agendoai/aviao-sub000/internal/eventbus"
	"github.com/agendoai/aviao-sub000/internal/events"
	"github.com/agendoai/aviao-sub000/internal/telemetry"
	"github.com/agendoai/aviao-sub000/internal/version"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	metricsSrv *http.Server
	closers    []func() error

	db        *gorm.DB
	cache     *cache.Cache
	bus       eventbus.Bus
	avail     *availability.Service
	booking   *booking.Service
	estimator *estimate.Service
	api       *api.API

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("aviao-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "aviao",
		ServiceVersion: version.Version,
		OTLPEndpoint:   s.cfg.OTLPEndpoint,
		Enabled:        s.cfg.TracingEnabled,
		SampleRate:     s.cfg.TracingSampleRate,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	s.DeferClose(func() error {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return tracer.Shutdown(shutdownCtx)
	})

	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.RegisterCallbacks(database); err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	if s.cfg.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		cacheCfg.DayGridTTL = s.cfg.GridCacheTTL
		gridCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = gridCache
			s.DeferClose(func() error { return s.cache.Close() })
		}
	}

	if s.cfg.NATSURL != "" {
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = s.cfg.NATSURL
		natsBus, err := eventbus.NewNATSBus(natsCfg, s.logger)
		if err != nil {
			return fmt.Errorf("init event bus: %w", err)
		}
		s.bus = natsBus
		s.DeferClose(natsBus.Close)
	} else {
		s.bus = events.NewBus()
	}

	airports, err := estimate.LoadAirportTable(s.cfg.AirportTablePath)
	if err != nil {
		return fmt.Errorf("load airport table: %w", err)
	}
	fees, err := estimate.LoadFeeTable(s.cfg.FeeTablePath)
	if err != nil {
		return fmt.Errorf("load fee table: %w", err)
	}

	s.avail = availability.NewService(database, s.cfg.Scheduling, s.logger)
	s.booking = booking.NewService(s.avail, s.cfg.Scheduling, s.logger)
	s.estimator = estimate.NewService(database, s.cfg.Scheduling, airports, fees, s.logger)

	s.api = api.New(database, s.cfg.Scheduling, s.avail, s.booking, s.estimator, s.cache, s.bus, s.logger)

	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","version":"` + version.Version + `"}`))
	})

	s.api.Routes(s.router)
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Start serves HTTP and, on its own listener, Prometheus metrics. Blocks
// until the HTTP server stops.
func (s *Server) Start() error {
	if s.cfg.MetricsBind != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", telemetry.Handler())
		s.metricsSrv = &http.Server{
			Addr:              s.cfg.MetricsBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 15 * time.Second,
		}
		go func() {
			s.logger.Info().Str("addr", s.cfg.MetricsBind).Msg("metrics listener started")
			if err := s.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error().Err(err).Msg("metrics listener exited")
			}
		}()
	}

	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server started")
	return s.httpServer.ListenAndServe()
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	if s.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.metricsSrv.Shutdown(ctx)
		cancel()
	}
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.runCacheInvalidationListener(ctx)
	}()
}

// runCacheInvalidationListener drops cached grids when another node
// changes an aircraft's timeline. Local mutations invalidate inline; this
// handles the cluster case.
func (s *Server) runCacheInvalidationListener(ctx context.Context) {
	missionCreated := s.bus.Subscribe(events.EventMissionCreated)
	missionCancelled := s.bus.Subscribe(events.EventMissionCancelled)
	windowCreated := s.bus.Subscribe(events.EventWindowCreated)
	windowUpdated := s.bus.Subscribe(events.EventWindowUpdated)
	windowDeleted := s.bus.Subscribe(events.EventWindowDeleted)
	aircraftUpdated := s.bus.Subscribe(events.EventAircraftUpdated)
	aircraftDeleted := s.bus.Subscribe(events.EventAircraftDeleted)

	defer func() {
		s.bus.Unsubscribe(events.EventMissionCreated, missionCreated)
		s.bus.Unsubscribe(events.EventMissionCancelled, missionCancelled)
		s.bus.Unsubscribe(events.EventWindowCreated, windowCreated)
		s.bus.Unsubscribe(events.EventWindowUpdated, windowUpdated)
		s.bus.Unsubscribe(events.EventWindowDeleted, windowDeleted)
		s.bus.Unsubscribe(events.EventAircraftUpdated, aircraftUpdated)
		s.bus.Unsubscribe(events.EventAircraftDeleted, aircraftDeleted)
	}()

	invalidateGrids := func(payload events.Payload) {
		if aircraftID, ok := payload["aircraft_id"].(string); ok && aircraftID != "" {
			if err := s.cache.InvalidateDayGrids(ctx, aircraftID); err != nil {
				s.logger.Warn().Err(err).Str("aircraft_id", aircraftID).Msg("grid invalidation failed")
			}
		}
	}
	invalidateAircraft := func(payload events.Payload) {
		if aircraftID, ok := payload["aircraft_id"].(string); ok && aircraftID != "" {
			if err := s.cache.InvalidateAircraft(ctx, aircraftID); err != nil {
				s.logger.Warn().Err(err).Str("aircraft_id", aircraftID).Msg("aircraft invalidation failed")
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-missionCreated:
			invalidateGrids(payload)
		case payload := <-missionCancelled:
			invalidateGrids(payload)
		case payload := <-windowCreated:
			invalidateGrids(payload)
		case payload := <-windowUpdated:
			invalidateGrids(payload)
		case payload := <-windowDeleted:
			invalidateGrids(payload)
		case payload := <-aircraftUpdated:
			invalidateAircraft(payload)
		case payload := <-aircraftDeleted:
			invalidateAircraft(payload)
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}
