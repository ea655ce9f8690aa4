package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "REDIS_ADDR", "ROUTE_CACHE_TTL", "LKH_BIN", "LKH_WORKDIR", "SOLVER_WORKERS", "SOLVER_SEED", "SEED_PATH"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.RouteCacheTTL != time.Hour || cfg.SolverWorkers != 0 || cfg.SolverSeed != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DatabaseURL != "" || cfg.RedisAddr != "" || cfg.LKHBin != "" {
		t.Fatalf("optional backends should be empty: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ROUTE_CACHE_TTL", "90s")
	t.Setenv("SOLVER_WORKERS", "4")
	t.Setenv("SOLVER_SEED", "-7")
	t.Setenv("REDIS_ADDR", "  localhost:6379 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.RouteCacheTTL != 90*time.Second || cfg.SolverWorkers != 4 || cfg.SolverSeed != -7 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("RedisAddr = %q, want trimmed value", cfg.RedisAddr)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ROUTE_CACHE_TTL", "soon"},
		{"ROUTE_CACHE_TTL", "-1m"},
		{"SOLVER_WORKERS", "many"},
		{"SOLVER_WORKERS", "-2"},
		{"SOLVER_SEED", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}
