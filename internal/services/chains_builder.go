package services

import (
	"earthwork-route-service/internal/domain"
	"errors"
	"fmt"
	"math/rand"
)

// Build chains of peaks and holes over a field, one truckload at a time.
//
// Each step moves to a cell of the same kind near the current one. With a
// single choice (or alpha 0) that is always the nearest cell, which is the
// nearest-neighbour strategy. Otherwise the builder is the construction phase
// of a GRASP: it gathers up to choices nearest candidates, keeps those whose
// distance is within min + alpha*(max-min), and picks one of them at random.
//
// A ChainsBuilder mutates its field and is not safe for concurrent use.
type ChainsBuilder struct {
	field    *domain.Field
	capacity domain.Quantity
	choices  int
	alpha    float64
	rng      *rand.Rand
}

func NewNearestNeighbourBuilder(field *domain.Field, capacity domain.Quantity) *ChainsBuilder {
	return &ChainsBuilder{field: field, capacity: capacity, choices: 1}
}

func NewGRASPBuilder(
	field *domain.Field,
	capacity domain.Quantity,
	choices int,
	alpha float64,
	rng *rand.Rand,
) (*ChainsBuilder, error) {
	if choices < 1 {
		return nil, fmt.Errorf("new grasp builder: choices must be at least 1 (choices=%d)", choices)
	}
	if !(alpha >= 0 && alpha <= 1) {
		return nil, fmt.Errorf("new grasp builder: alpha must be in [0, 1] (alpha=%g)", alpha)
	}
	if rng == nil {
		return nil, errors.New("new grasp builder: rng must be non-nil")
	}
	return &ChainsBuilder{field: field, capacity: capacity, choices: choices, alpha: alpha, rng: rng}, nil
}

// Field returns the field the builder works on.
func (b *ChainsBuilder) Field() *domain.Field { return b.field }

func (b *ChainsBuilder) greedy() bool { return b.choices <= 1 || b.alpha <= 0 }

// next selects the cell of the given kind to visit after from.
func (b *ChainsBuilder) next(from domain.Coordinates, kind domain.CellKind, skip ...domain.Coordinates) (domain.Coordinates, bool) {
	nearest, ok := b.field.Nearest(from, kind, skip...)
	if !ok || b.greedy() {
		return nearest, ok
	}

	farthest, _ := b.field.Farthest(from, kind, skip...)
	lo, hi := from.Distance(nearest), from.Distance(farthest)
	threshold := lo + b.alpha*(hi-lo)

	// Candidates come out sorted by distance, so the restricted list is the
	// prefix that stays within the threshold.
	candidates := []domain.Coordinates{nearest}
	exclude := append(append([]domain.Coordinates(nil), skip...), nearest)
	for len(candidates) < b.choices {
		c, ok := b.field.Nearest(from, kind, exclude...)
		if !ok || from.Distance(c) > threshold {
			break
		}
		candidates = append(candidates, c)
		exclude = append(exclude, c)
	}

	return candidates[b.rng.Intn(len(candidates))], true
}

// ChainOfPeaks collects quantity units starting from the peak nearest to from.
//
// The truck carries the whole volume of every visited peak to the next one, so
// the cargo piles up in the field at the current cell. Once that pile reaches
// quantity the truck loads exactly quantity and leaves the excess behind.
func (b *ChainsBuilder) ChainOfPeaks(from domain.Coordinates, quantity domain.Quantity) (*domain.Path, bool, error) {
	cur, ok := b.next(from, domain.Peak)
	if !ok {
		return nil, false, nil
	}

	chain := domain.NewPath(domain.Stopover{Coordinates: cur})
	for b.field.Quantity(cur) < quantity {
		nxt, ok := b.next(cur, domain.Peak, cur)
		if !ok {
			return nil, false, fmt.Errorf(
				"chain of peaks: %w: collected %s of %s at (%g, %g)",
				domain.ErrUnbalancedField, b.field.Quantity(cur), quantity, cur.X, cur.Y,
			)
		}

		q := b.field.Quantity(cur)
		chain.AddStopover(nxt, q)
		b.field.Update(cur, nxt, q)
		cur = nxt
	}

	b.field.Decrement(cur, quantity)
	return chain, true, nil
}

// ChainOfHoles spreads quantity units starting from the hole nearest to from.
// The first stopover is reached carrying the full quantity.
func (b *ChainsBuilder) ChainOfHoles(from domain.Coordinates, quantity domain.Quantity) (*domain.Path, bool, error) {
	cur, ok := b.next(from, domain.Hole)
	if !ok {
		return nil, false, nil
	}

	chain := domain.NewPath(domain.Stopover{Coordinates: cur, QuantityToBringIn: quantity})
	b.field.Increment(cur, quantity)
	for b.field.Quantity(cur) > 0 {
		nxt, ok := b.next(cur, domain.Hole)
		if !ok {
			return nil, false, fmt.Errorf(
				"chain of holes: %w: %s left over at (%g, %g)",
				domain.ErrUnbalancedField, b.field.Quantity(cur), cur.X, cur.Y,
			)
		}

		q := b.field.Quantity(cur)
		chain.AddStopover(nxt, q)
		b.field.Update(cur, nxt, q)
		cur = nxt
	}

	return chain, true, nil
}

// AllChainsOfPeaks builds full-capacity chains until no peak is left. Every
// chain starts near the end of the previous one.
func (b *ChainsBuilder) AllChainsOfPeaks(from domain.Coordinates) ([]*domain.Path, error) {
	return b.all(from, b.ChainOfPeaks)
}

func (b *ChainsBuilder) AllChainsOfHoles(from domain.Coordinates) ([]*domain.Path, error) {
	return b.all(from, b.ChainOfHoles)
}

func (b *ChainsBuilder) all(
	from domain.Coordinates,
	chainOf func(domain.Coordinates, domain.Quantity) (*domain.Path, bool, error),
) ([]*domain.Path, error) {
	chains := []*domain.Path{}
	for {
		chain, ok, err := chainOf(from, b.capacity)
		if err != nil {
			return nil, fmt.Errorf("all chains: chain %d: %w", len(chains)+1, err)
		}
		if !ok {
			return chains, nil
		}
		chains = append(chains, chain)
		from = chain.Last()
	}
}

// FixField moves the volume remainder modulo capacity with one partial load,
// appended to the truck's path.
func (b *ChainsBuilder) FixField(truck *domain.Truck) error {
	remainder := b.field.TerrainToMove() % b.capacity
	if remainder == 0 {
		return nil
	}

	peaks, ok, err := b.ChainOfPeaks(truck.Position(), remainder)
	if err != nil {
		return fmt.Errorf("fix field: %w", err)
	}
	if !ok {
		return fmt.Errorf("fix field: %w: remainder %s without peaks", domain.ErrUnbalancedField, remainder)
	}

	holes, ok, err := b.ChainOfHoles(peaks.Last(), remainder)
	if err != nil {
		return fmt.Errorf("fix field: %w", err)
	}
	if !ok {
		return fmt.Errorf("fix field: %w: remainder %s without holes", domain.ErrUnbalancedField, remainder)
	}

	truck.MoveAlong(peaks)
	truck.MoveAlong(holes)
	return nil
}
