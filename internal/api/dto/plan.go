package dto

import "time"

type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CellRequest struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Quantity float64 `json:"quantity"`
}

// RouteRequest solves either a stored field (FieldID) or inline cells.
type RouteRequest struct {
	FieldID      *int64        `json:"field_id"`
	Cells        []CellRequest `json:"cells"`
	Strategy     string        `json:"strategy"`
	Policy       string        `json:"repair_policy"`
	Capacity     float64       `json:"capacity"`
	Gamma        float64       `json:"gamma"`
	MinSegment   *float64      `json:"min_segment"`
	Start        PointRequest  `json:"start"`
	InitialCargo float64       `json:"initial_cargo"`
	Choices      int           `json:"choices"`
	Alpha        float64       `json:"alpha"`
	Seed         int64         `json:"seed"`
	UseTour      bool          `json:"use_tour"`
}

type StopoverResponse struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Quantity float64 `json:"quantity"`
}

// SearchResponse summarizes the restarts of a meta search.
type SearchResponse struct {
	Restarts      int     `json:"restarts"`
	Solved        int     `json:"solved"`
	BestDistance  float64 `json:"best_distance"`
	WorstDistance float64 `json:"worst_distance"`
	MeanDistance  float64 `json:"mean_distance"`
}

type RouteResponse struct {
	ID         string             `json:"id"`
	Strategy   string             `json:"strategy"`
	Alpha      float64            `json:"alpha"`
	Distance   float64            `json:"distance"`
	Chains     int                `json:"chains"`
	LowerBound float64            `json:"lower_bound"`
	CycleCost  float64            `json:"cycle_cost"`
	GapPercent float64            `json:"gap_percent"`
	SolvedAt   time.Time          `json:"solved_at"`
	Cached     bool               `json:"cached"`
	Search     *SearchResponse    `json:"search,omitempty"`
	Stopovers  []StopoverResponse `json:"stopovers"`
}
