package ports

import (
	"context"
	"earthwork-route-service/internal/domain"
)

// Port: a boundary for persisting fields.
type FieldRepository interface {
	// Store the raw cells of a field and return its id.
	SaveField(ctx context.Context, name string, cells []domain.Cell) (int64, error)
	// Load the raw cells of a field. ok is false when the id is unknown.
	GetField(ctx context.Context, id int64) (cells []domain.Cell, ok bool, err error)
}
