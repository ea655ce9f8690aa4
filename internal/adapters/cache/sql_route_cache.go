package cache

import (
	"context"
	"database/sql"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLRouteCache is a SQL-backed cache for solved routes, used when no Redis
// is configured. Expired rows are ignored on read and replaced on write.
type SQLRouteCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLRouteCache(db *sql.DB, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl}
}

func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ *domain.RoutePlan, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT plan
	FROM route_cache
	WHERE cache_key = $1
		AND expires_at > $2;
	`

	var b []byte
	err = s.DB.QueryRowContext(ctx, q, key, time.Now().UTC()).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	plan, err := decodePlan(b)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}
	return plan, true, nil
}

func (s *SQLRouteCache) Set(ctx context.Context, key string, plan *domain.RoutePlan) (err error) {
	defer obs.Time(ctx, "route.cache.sql.Set")(&err)

	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	b, err := encodePlan(plan)
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	q := `
	INSERT INTO route_cache (cache_key, plan, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET plan = EXCLUDED.plan,
		expires_at = EXCLUDED.expires_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, b, time.Now().UTC().Add(s.TTL)); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}
