package config

import (
	"testing"
	"time"
)

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("AVIAO_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("AVIAO_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDSN == "" {
		t.Fatal("expected DB DSN to be set")
	}
	if cfg.DBBackend != DatabasePostgres {
		t.Fatalf("unexpected default backend: %q", cfg.DBBackend)
	}
}

func TestLoadSchedulingDefaults(t *testing.T) {
	t.Setenv("AVIAO_DB_DSN", "file::memory:")
	t.Setenv("AVIAO_DB_BACKEND", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	s := cfg.Scheduling
	if s.PreFlightBuffer != 3*time.Hour {
		t.Errorf("pre-flight buffer = %v, want 3h", s.PreFlightBuffer)
	}
	if s.MaintenanceBuffer != 3*time.Hour {
		t.Errorf("maintenance buffer = %v, want 3h", s.MaintenanceBuffer)
	}
	if s.SlotInterval != 30*time.Minute {
		t.Errorf("slot interval = %v, want 30m", s.SlotInterval)
	}
	if s.DayStart != 6*time.Hour || s.DayEnd != 24*time.Hour {
		t.Errorf("operating window = [%v, %v], want [6h, 24h]", s.DayStart, s.DayEnd)
	}
	if s.RoutingPadding != 1.10 {
		t.Errorf("routing padding = %v, want 1.10", s.RoutingPadding)
	}
	if s.DefaultCruiseKt != 185 {
		t.Errorf("default cruise = %v, want 185", s.DefaultCruiseKt)
	}
}

func TestLoadRejectsBrokenScheduling(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"window not slot aligned", "AVIAO_SLOT_MINUTES", "7"},
		{"empty operating window", "AVIAO_DAY_END_HOUR", "6"},
		{"padding below one", "AVIAO_ROUTING_PADDING", "0.5"},
		{"zero cruise speed", "AVIAO_DEFAULT_CRUISE_KT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AVIAO_DB_DSN", "file::memory:")
			t.Setenv("AVIAO_DB_BACKEND", "sqlite")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatal("expected config load to fail")
			}
		})
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("AVIAO_DB_DSN", "x")
	t.Setenv("AVIAO_DB_BACKEND", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for unknown backend")
	}
}
