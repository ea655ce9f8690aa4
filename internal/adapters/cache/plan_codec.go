package cache

import (
	"earthwork-route-service/internal/domain"
	"encoding/json"
	"fmt"
	"time"
)

type stopoverRecord struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Quantity int64   `json:"q"`
}

type searchRecord struct {
	Restarts int     `json:"restarts"`
	Solved   int     `json:"solved"`
	Best     float64 `json:"best"`
	Worst    float64 `json:"worst"`
	Mean     float64 `json:"mean"`
}

type planRecord struct {
	ID         string           `json:"id"`
	Strategy   string           `json:"strategy"`
	Alpha      float64          `json:"alpha"`
	Chains     int              `json:"chains"`
	LowerBound float64          `json:"lower_bound"`
	CycleCost  float64          `json:"cycle_cost"`
	SolvedAt   time.Time        `json:"solved_at"`
	Stopovers  []stopoverRecord `json:"stopovers"`
	Search     *searchRecord    `json:"search,omitempty"`
}

// Quantities are stored as raw fixed-point steps so a cached plan is
// bit-identical to the solved one.
func encodePlan(p *domain.RoutePlan) ([]byte, error) {
	if p == nil || p.Path == nil {
		return nil, fmt.Errorf("encode plan: plan has no path")
	}

	rec := planRecord{
		ID:         p.ID,
		Strategy:   p.Strategy,
		Alpha:      p.Alpha,
		Chains:     p.Stats.Chains,
		LowerBound: p.Stats.LowerBound,
		CycleCost:  p.Stats.CycleCost,
		SolvedAt:   p.SolvedAt,
		Stopovers:  make([]stopoverRecord, 0, p.Path.Len()),
	}
	if s := p.Search; s != nil {
		rec.Search = &searchRecord{Restarts: s.Restarts, Solved: s.Solved, Best: s.Best, Worst: s.Worst, Mean: s.Mean}
	}
	for _, s := range p.Path.Stopovers() {
		rec.Stopovers = append(rec.Stopovers, stopoverRecord{
			X:        s.Coordinates.X,
			Y:        s.Coordinates.Y,
			Quantity: int64(s.QuantityToBringIn),
		})
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode plan id=%s: %w", p.ID, err)
	}
	return b, nil
}

func decodePlan(b []byte) (*domain.RoutePlan, error) {
	var rec planRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(rec.Stopovers) == 0 {
		return nil, fmt.Errorf("decode plan id=%s: no stopovers", rec.ID)
	}

	path := domain.NewPath()
	for _, s := range rec.Stopovers {
		path.AddStopover(domain.Coordinates{X: s.X, Y: s.Y}, domain.Quantity(s.Quantity))
	}

	plan := &domain.RoutePlan{
		ID:       rec.ID,
		Strategy: rec.Strategy,
		Alpha:    rec.Alpha,
		Path:     path,
		Stats: domain.SequenceStats{
			Chains:     rec.Chains,
			LowerBound: rec.LowerBound,
			CycleCost:  rec.CycleCost,
		},
		SolvedAt: rec.SolvedAt,
	}
	if s := rec.Search; s != nil {
		plan.Search = &domain.SearchStats{Restarts: s.Restarts, Solved: s.Solved, Best: s.Best, Worst: s.Worst, Mean: s.Mean}
	}
	return plan, nil
}
