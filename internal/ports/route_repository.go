package ports

import (
	"context"
	"earthwork-route-service/internal/domain"
)

// Port: a boundary for persisting solved routes.
type RouteRepository interface {
	SaveRoute(ctx context.Context, plan *domain.RoutePlan) error
	// ok is false when no route has this id.
	GetRoute(ctx context.Context, id string) (plan *domain.RoutePlan, ok bool, err error)
}

// Short-lived cache of solved routes keyed by problem fingerprint.
type RouteCache interface {
	Get(ctx context.Context, key string) (plan *domain.RoutePlan, ok bool, err error)
	Set(ctx context.Context, key string, plan *domain.RoutePlan) error
}
