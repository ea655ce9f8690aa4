package dto

type CreateFieldRequest struct {
	Name  string        `json:"name"`
	Cells []CellRequest `json:"cells"`
}

type CreateFieldResponse struct {
	ID int64 `json:"id"`
}

type FieldResponse struct {
	ID            int64          `json:"id"`
	Cells         []CellResponse `json:"cells"`
	Peaks         int            `json:"peaks"`
	Holes         int            `json:"holes"`
	TerrainToMove float64        `json:"terrain_to_move"`
}

// CellResponse carries both the stored volume and the balanced one the
// solver works with.
type CellResponse struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Quantity float64 `json:"quantity"`
	Balanced float64 `json:"balanced"`
}
