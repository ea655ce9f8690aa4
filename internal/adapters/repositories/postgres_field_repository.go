package repositories

import (
	"context"
	"database/sql"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
)

// Postgres-backed implementation of the FieldRepository port.
// Cells are stored raw, before balancing, in input order.
type PostgresFieldRepository struct{ DB *sql.DB }

func NewPostgresFieldRepository(db *sql.DB) *PostgresFieldRepository {
	return &PostgresFieldRepository{DB: db}
}

func (s *PostgresFieldRepository) SaveField(ctx context.Context, name string, cells []domain.Cell) (_ int64, err error) {
	defer obs.Time(ctx, "fields.SaveField")(&err)

	if s.DB == nil {
		return 0, errors.New("postgres field repository: DB is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("save field: name must not be empty")
	}
	if len(cells) == 0 {
		return 0, errors.New("save field: no cells")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save field: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowContext(ctx, `
	INSERT INTO fields (name)
	VALUES ($1)
	RETURNING field_id;
	`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("save field: insert field: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO field_cells (field_id, ordinal, x, y, quantity)
	VALUES ($1, $2, $3, $4, $5);
	`)
	if err != nil {
		return 0, fmt.Errorf("save field: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range cells {
		if _, err := stmt.ExecContext(ctx, id, i, c.Coordinates.X, c.Coordinates.Y, int64(c.Quantity)); err != nil {
			return 0, fmt.Errorf("save field: insert cell #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save field: commit tx: %w", err)
	}

	return id, nil
}

func (s *PostgresFieldRepository) GetField(ctx context.Context, id int64) (_ []domain.Cell, _ bool, err error) {
	defer obs.Time(ctx, "fields.GetField")(&err)

	if s.DB == nil {
		return nil, false, errors.New("postgres field repository: DB is nil")
	}

	query := `
	SELECT
		x,
		y,
		quantity
	FROM field_cells
	WHERE field_id = $1
	ORDER BY ordinal;
	`
	rows, err := s.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, false, fmt.Errorf("get field id=%d: query field_cells table: %w", id, err)
	}
	defer rows.Close()

	cells := make([]domain.Cell, 0, 64)
	for rows.Next() {
		var x, y float64
		var q int64
		if err := rows.Scan(&x, &y, &q); err != nil {
			return nil, false, fmt.Errorf("get field id=%d: scan row: %w", id, err)
		}
		cells = append(cells, domain.Cell{Coordinates: domain.Coordinates{X: x, Y: y}, Quantity: domain.Quantity(q)})
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("get field id=%d: row iteration: %w", id, err)
	}

	// A stored field always has cells.
	if len(cells) == 0 {
		return nil, false, nil
	}
	return cells, true, nil
}
