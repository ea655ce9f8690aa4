package cache

import (
	"context"
	"earthwork-route-service/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() *domain.RoutePlan {
	return &domain.RoutePlan{
		ID:       "plan-1",
		Strategy: "grasp",
		Alpha:    0.05,
		Path: domain.NewPath(
			domain.Stopover{Coordinates: domain.Coordinates{X: -1, Y: -1}},
			domain.Stopover{Coordinates: domain.Coordinates{X: 0.5, Y: 0.5}},
			domain.Stopover{Coordinates: domain.Coordinates{X: 1.5, Y: 0.5}, QuantityToBringIn: 12_345},
		),
		Stats:    domain.SequenceStats{Chains: 2, LowerBound: 4, CycleCost: 5},
		SolvedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Search:   &domain.SearchStats{Restarts: 10, Solved: 9, Best: 7.5, Worst: 9.25, Mean: 8.1},
	}
}

func TestPlanCodecKeepsFixedPointQuantities(t *testing.T) {
	b, err := encodePlan(samplePlan())
	require.NoError(t, err)

	got, err := decodePlan(b)
	require.NoError(t, err)
	assert.Equal(t, samplePlan(), got)
}

func TestPlanCodecRejectsEmptyPlans(t *testing.T) {
	_, err := encodePlan(&domain.RoutePlan{ID: "x"})
	assert.Error(t, err)

	_, err = decodePlan([]byte(`{"id":"x","stopovers":[]}`))
	assert.Error(t, err)

	_, err = decodePlan([]byte(`{`))
	assert.Error(t, err)
}

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRouteCache(client, ttl), mr
}

func TestRedisRouteCacheMissThenHit(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t, time.Minute)

	_, ok, err := c.Get(ctx, "route:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "route:abc", samplePlan()))
	got, ok, err := c.Get(ctx, "route:abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, samplePlan(), got)
}

func TestRedisRouteCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "route:abc", samplePlan()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "route:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRouteCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)

	require.NoError(t, mr.Set("route:bad", "not json"))
	_, _, err := c.Get(ctx, "route:bad")
	assert.Error(t, err)
}

func TestRedisRouteCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(ctx, "route:abc")
	assert.Error(t, err)
}
