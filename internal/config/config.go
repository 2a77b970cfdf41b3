/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Scheduling gathers the named scheduling values consumed by the
// availability and booking engines. All of them are injected at
// construction; rule code never hardcodes these.
type Scheduling struct {
	PreFlightBuffer   time.Duration // exclusion before each departure
	MaintenanceBuffer time.Duration // exclusion after each return
	SlotInterval      time.Duration // grid granularity
	DayStart          time.Duration // operating window start, offset from midnight
	DayEnd            time.Duration // operating window end, offset from midnight
	RoutingPadding    float64       // multiplier on great-circle flight time
	DefaultCruiseKt   float64       // fallback cruise speed when model lookup fails
	EarlyMorningCut   time.Duration // same-day returns before this clock time bill a night
}

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	BaseURL     string
	DBBackend   DatabaseBackend
	DBDSN       string
	MetricsBind string

	Scheduling Scheduling

	// Reference data overrides (optional YAML files); compiled-in
	// defaults apply when empty.
	FeeTablePath     string
	AirportTablePath string

	// Grid cache
	CacheEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	GridCacheTTL  time.Duration

	// Event bus
	NATSURL string // empty disables the external bus

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("AVIAO_ENV", "development"),
		HTTPBind:    getEnv("AVIAO_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("AVIAO_HTTP_PORT", 8080),
		BaseURL:     getEnv("AVIAO_BASE_URL", ""),
		DBBackend:   DatabaseBackend(getEnv("AVIAO_DB_BACKEND", string(DatabasePostgres))),
		DBDSN:       getEnv("AVIAO_DB_DSN", ""),
		MetricsBind: getEnv("AVIAO_METRICS_BIND", "127.0.0.1:9000"),

		Scheduling: Scheduling{
			PreFlightBuffer:   time.Duration(getEnvInt("AVIAO_PRE_FLIGHT_HOURS", 3)) * time.Hour,
			MaintenanceBuffer: time.Duration(getEnvInt("AVIAO_MAINTENANCE_HOURS", 3)) * time.Hour,
			SlotInterval:      time.Duration(getEnvInt("AVIAO_SLOT_MINUTES", 30)) * time.Minute,
			DayStart:          time.Duration(getEnvInt("AVIAO_DAY_START_HOUR", 6)) * time.Hour,
			DayEnd:            time.Duration(getEnvInt("AVIAO_DAY_END_HOUR", 24)) * time.Hour,
			RoutingPadding:    getEnvFloat("AVIAO_ROUTING_PADDING", 1.10),
			DefaultCruiseKt:   getEnvFloat("AVIAO_DEFAULT_CRUISE_KT", 185),
			EarlyMorningCut:   time.Duration(getEnvInt("AVIAO_EARLY_MORNING_CUT_HOUR", 6)) * time.Hour,
		},

		FeeTablePath:     getEnv("AVIAO_FEE_TABLE", ""),
		AirportTablePath: getEnv("AVIAO_AIRPORT_TABLE", ""),

		CacheEnabled:  getEnvBool("AVIAO_CACHE_ENABLED", false),
		RedisAddr:     getEnv("AVIAO_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("AVIAO_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("AVIAO_REDIS_DB", 0),
		GridCacheTTL:  time.Duration(getEnvInt("AVIAO_GRID_CACHE_TTL_SECONDS", 120)) * time.Second,

		NATSURL: getEnv("AVIAO_NATS_URL", ""),

		TracingEnabled:    getEnvBool("AVIAO_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("AVIAO_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("AVIAO_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("AVIAO_DB_DSN must be provided")
	}

	if err := cfg.Scheduling.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s Scheduling) validate() error {
	if s.SlotInterval <= 0 {
		return fmt.Errorf("AVIAO_SLOT_MINUTES must be positive")
	}
	if s.DayEnd <= s.DayStart {
		return fmt.Errorf("operating window is empty: day end %v <= day start %v", s.DayEnd, s.DayStart)
	}
	if (s.DayEnd-s.DayStart)%s.SlotInterval != 0 {
		return fmt.Errorf("operating window %v is not a multiple of the slot interval %v", s.DayEnd-s.DayStart, s.SlotInterval)
	}
	if s.PreFlightBuffer < 0 || s.MaintenanceBuffer < 0 {
		return fmt.Errorf("buffers must not be negative")
	}
	if s.RoutingPadding < 1.0 {
		return fmt.Errorf("routing padding %v would undercut great-circle time", s.RoutingPadding)
	}
	if s.DefaultCruiseKt <= 0 {
		return fmt.Errorf("default cruise speed must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
