/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestDuration tracks HTTP request latency by method, endpoint and status.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aviao_api_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIRequestsTotal counts HTTP requests by method, endpoint and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aviao_api_requests_total",
		Help: "Total HTTP requests served.",
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aviao_api_active_connections",
		Help: "In-flight HTTP requests.",
	})

	// ValidationsTotal counts booking validations by mode and outcome.
	// outcome is "accepted" or the rejection reason code.
	ValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aviao_validations_total",
		Help: "Booking proposals validated, by selection mode and outcome.",
	}, []string{"mode", "outcome"})

	// SuggestionsDegradedTotal counts suggestion lists that fell back to
	// the best-effort search ignoring the buffer requirement.
	SuggestionsDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aviao_suggestions_degraded_total",
		Help: "Suggestion lists produced by the degraded fallback search.",
	})

	// GridCacheHits counts day-grid cache lookups by result.
	GridCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aviao_grid_cache_lookups_total",
		Help: "Day grid cache lookups, by result (hit, miss, error).",
	}, []string{"result"})

	// DatabaseQueryDuration tracks GORM operation latency by operation and table.
	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aviao_db_query_duration_seconds",
		Help:    "Database operation duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DatabaseErrorsTotal counts failed database operations.
	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aviao_db_errors_total",
		Help: "Database operation errors.",
	}, []string{"operation", "kind"})

	// EstimateFallbacksTotal counts cost estimates that used a documented
	// fallback value because an external lookup was unavailable.
	EstimateFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aviao_estimate_fallbacks_total",
		Help: "Cost estimates served with fallback reference data, by lookup kind.",
	}, []string{"lookup"})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
