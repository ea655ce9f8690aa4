package repositories

import (
	"context"
	"database/sql"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

func (s *PostgresRouteRepository) SaveRoute(ctx context.Context, plan *domain.RoutePlan) (err error) {
	defer obs.Time(ctx, "routes.SaveRoute")(&err)

	if s.DB == nil {
		return errors.New("postgres route repository: DB is nil")
	}
	if plan == nil || plan.Path == nil || plan.ID == "" {
		return errors.New("save route: plan must have an id and a path")
	}

	var search any
	if plan.Search != nil {
		b, err := json.Marshal(plan.Search)
		if err != nil {
			return fmt.Errorf("save route id=%s: encode search stats: %w", plan.ID, err)
		}
		search = string(b)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO routes (route_id, strategy, alpha, chains, lower_bound, cycle_cost, distance, solved_at, search)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`,
		plan.ID, plan.Strategy, plan.Alpha,
		plan.Stats.Chains, plan.Stats.LowerBound, plan.Stats.CycleCost,
		plan.Distance(), plan.SolvedAt, search,
	); err != nil {
		return fmt.Errorf("save route id=%s: insert route: %w", plan.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_stopovers (route_id, ordinal, x, y, quantity)
	VALUES ($1, $2, $3, $4, $5);
	`)
	if err != nil {
		return fmt.Errorf("save route id=%s: prepare insert: %w", plan.ID, err)
	}
	defer stmt.Close()

	for i, st := range plan.Path.Stopovers() {
		c := st.Coordinates
		if _, err := stmt.ExecContext(ctx, plan.ID, i, c.X, c.Y, int64(st.QuantityToBringIn)); err != nil {
			return fmt.Errorf("save route id=%s: insert stopover #%d: %w", plan.ID, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save route id=%s: commit tx: %w", plan.ID, err)
	}

	return nil
}

func (s *PostgresRouteRepository) GetRoute(ctx context.Context, id string) (_ *domain.RoutePlan, _ bool, err error) {
	defer obs.Time(ctx, "routes.GetRoute")(&err)

	if s.DB == nil {
		return nil, false, errors.New("postgres route repository: DB is nil")
	}

	plan := &domain.RoutePlan{ID: id, Path: domain.NewPath()}
	var search []byte
	err = s.DB.QueryRowContext(ctx, `
	SELECT strategy, alpha, chains, lower_bound, cycle_cost, solved_at, search
	FROM routes
	WHERE route_id = $1;
	`, id).Scan(
		&plan.Strategy, &plan.Alpha,
		&plan.Stats.Chains, &plan.Stats.LowerBound, &plan.Stats.CycleCost,
		&plan.SolvedAt, &search,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route id=%s: query routes table: %w", id, err)
	}
	if len(search) > 0 {
		plan.Search = &domain.SearchStats{}
		if err := json.Unmarshal(search, plan.Search); err != nil {
			return nil, false, fmt.Errorf("get route id=%s: decode search stats: %w", id, err)
		}
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT x, y, quantity
	FROM route_stopovers
	WHERE route_id = $1
	ORDER BY ordinal;
	`, id)
	if err != nil {
		return nil, false, fmt.Errorf("get route id=%s: query route_stopovers table: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var x, y float64
		var q int64
		if err := rows.Scan(&x, &y, &q); err != nil {
			return nil, false, fmt.Errorf("get route id=%s: scan row: %w", id, err)
		}
		plan.Path.AddStopover(domain.Coordinates{X: x, Y: y}, domain.Quantity(q))
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("get route id=%s: row iteration: %w", id, err)
	}

	plan.SolvedAt = plan.SolvedAt.UTC()
	return plan, true, nil
}
