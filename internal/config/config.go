package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the runtime configuration shared by the commands.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string
	RouteCacheTTL time.Duration
	LKHBin        string
	LKHWorkDir    string
	SolverWorkers int
	SolverSeed    int64
	SeedPath      string
}

// Get returns the environment value of key, or fallback when it is unset
// or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads Config from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:        Get("PORT", "8080"),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisAddr:   Get("REDIS_ADDR", ""),
		LKHBin:      Get("LKH_BIN", ""),
		LKHWorkDir:  Get("LKH_WORKDIR", ""),
		SeedPath:    Get("SEED_PATH", "data/seeds/field.txt"),
	}

	ttl, err := time.ParseDuration(Get("ROUTE_CACHE_TTL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: ROUTE_CACHE_TTL: %w", err)
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("load config: ROUTE_CACHE_TTL must be positive (got %s)", ttl)
	}
	cfg.RouteCacheTTL = ttl

	if cfg.SolverWorkers, err = strconv.Atoi(Get("SOLVER_WORKERS", "0")); err != nil {
		return Config{}, fmt.Errorf("load config: SOLVER_WORKERS: %w", err)
	}
	if cfg.SolverWorkers < 0 {
		return Config{}, fmt.Errorf("load config: SOLVER_WORKERS must be non-negative (got %d)", cfg.SolverWorkers)
	}

	if cfg.SolverSeed, err = strconv.ParseInt(Get("SOLVER_SEED", "1"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("load config: SOLVER_SEED: %w", err)
	}

	return cfg, nil
}
