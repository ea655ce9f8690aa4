package domain

import (
	"fmt"
	"math"
)

// CellKind selects which cells a Field query considers.
type CellKind int

const (
	Peak CellKind = iota // surplus terrain
	Hole                 // terrain deficit
)

func (k CellKind) String() string {
	return [...]string{"peak", "hole"}[k]
}

// Cell is one input record of a field: the center of a cell and its volume.
type Cell struct {
	Coordinates Coordinates
	Quantity    Quantity
}

type cellKey struct{ x, y int64 }

func keyOf(c Coordinates) cellKey {
	return cellKey{
		x: int64(math.Round(c.X / CoordTolerance)),
		y: int64(math.Round(c.Y / CoordTolerance)),
	}
}

// Field maps discrete cell coordinates to a signed terrain quantity.
//
// A Field is balanced on construction: its quantities always sum to zero.
// Cells keep their input order, which is the tie-breaking order of every
// nearest/farthest query.
// A Field is not safe for concurrent use; clone it to explore alternatives.
type Field struct {
	coords     []Coordinates
	quantities []Quantity
	index      map[cellKey]int

	// Minimum center-to-center spacing along each axis.
	DeltaX float64
	DeltaY float64
}

// NewField builds a balanced field from raw cells.
//
// The mean volume is subtracted from every cell and the integer remainder of
// that division is spread as ±1 steps over the first cells, so the resulting
// sum is exactly zero.
func NewField(cells []Cell) (*Field, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("new field: %w: no cells", ErrMalformedField)
	}

	f := &Field{
		coords:     make([]Coordinates, 0, len(cells)),
		quantities: make([]Quantity, 0, len(cells)),
		index:      make(map[cellKey]int, len(cells)),
	}

	var sum Quantity
	for i, c := range cells {
		if math.IsNaN(c.Coordinates.X) || math.IsNaN(c.Coordinates.Y) ||
			math.IsInf(c.Coordinates.X, 0) || math.IsInf(c.Coordinates.Y, 0) {
			return nil, fmt.Errorf("new field: %w: cell %d has non-finite coordinates", ErrMalformedField, i+1)
		}
		if _, ok := f.lookup(c.Coordinates); ok {
			return nil, fmt.Errorf("new field: %w: duplicate cell %v at record %d", ErrMalformedField, c.Coordinates, i+1)
		}
		f.index[keyOf(c.Coordinates)] = len(f.coords)
		f.coords = append(f.coords, c.Coordinates)
		f.quantities = append(f.quantities, c.Quantity)
		sum += c.Quantity
	}

	n := Quantity(len(cells))
	mean := sum / n
	for i := range f.quantities {
		f.quantities[i] -= mean
	}

	remainder := sum % n
	inc := Quantity(1)
	if remainder < 0 {
		inc = -1
	}
	for i := 0; remainder != 0; i++ {
		f.quantities[i] -= inc
		remainder -= inc
	}

	f.DeltaX, f.DeltaY = spacing(f.coords)
	return f, nil
}

// spacing returns the minimum distance between distinct cells sharing a row
// (deltaX) and sharing a column (deltaY). Missing pairs yield +Inf.
func spacing(coords []Coordinates) (float64, float64) {
	dx, dy := math.Inf(1), math.Inf(1)
	for i := range coords {
		for j := i + 1; j < len(coords); j++ {
			c1, c2 := coords[i], coords[j]
			if c1.Equal(c2) {
				continue
			}
			if c1.SameY(c2) {
				dx = math.Min(dx, c1.Distance(c2))
			}
			if c1.SameX(c2) {
				dy = math.Min(dy, c1.Distance(c2))
			}
		}
	}
	return dx, dy
}

// lookup finds the cell equal to c. Neighboring buckets are probed because
// two coordinates within tolerance may round to adjacent keys.
func (f *Field) lookup(c Coordinates) (int, bool) {
	k := keyOf(c)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			i, ok := f.index[cellKey{x: k.x + dx, y: k.y + dy}]
			if ok && f.coords[i].Equal(c) {
				return i, true
			}
		}
	}
	return 0, false
}

// Clone returns an independent copy of the field.
func (f *Field) Clone() *Field {
	index := make(map[cellKey]int, len(f.index))
	for k, v := range f.index {
		index[k] = v
	}
	return &Field{
		coords:     append([]Coordinates(nil), f.coords...),
		quantities: append([]Quantity(nil), f.quantities...),
		index:      index,
		DeltaX:     f.DeltaX,
		DeltaY:     f.DeltaY,
	}
}

func (f *Field) Len() int { return len(f.coords) }

// Cells returns a snapshot of every cell in input order.
func (f *Field) Cells() []Cell {
	out := make([]Cell, len(f.coords))
	for i := range f.coords {
		out[i] = Cell{Coordinates: f.coords[i], Quantity: f.quantities[i]}
	}
	return out
}

func (f *Field) Contains(c Coordinates) bool {
	_, ok := f.lookup(c)
	return ok
}

// Resolution is the smallest finite cell spacing of the field, or zero when
// the field has no two cells on a common row or column.
func (f *Field) Resolution() float64 {
	r := math.Min(f.DeltaX, f.DeltaY)
	if math.IsInf(r, 1) {
		return 0
	}
	return r
}

// Quantity returns the volume at c; cells outside the field hold nothing.
func (f *Field) Quantity(c Coordinates) Quantity {
	if i, ok := f.lookup(c); ok {
		return f.quantities[i]
	}
	return 0
}

// Increment adds q to the cell at c. Coordinates outside the field are ignored.
func (f *Field) Increment(c Coordinates, q Quantity) {
	if i, ok := f.lookup(c); ok {
		f.quantities[i] += q
	}
}

func (f *Field) Decrement(c Coordinates, q Quantity) { f.Increment(c, -q) }

// Update moves q units of terrain from one cell to another.
func (f *Field) Update(from, to Coordinates, q Quantity) {
	f.Decrement(from, q)
	f.Increment(to, q)
}

func (f *Field) ApplyMovement(m Movement) { f.Update(m.From, m.To, m.Quantity) }

// Apply replays every movement of p on the field.
func (f *Field) Apply(p *Path) {
	for _, m := range p.Movements() {
		f.ApplyMovement(m)
	}
}

func (f *Field) IsPeak(c Coordinates) bool { return f.Quantity(c) > 0 }

func (f *Field) IsHole(c Coordinates) bool { return f.Quantity(c) < 0 }

func (f *Field) is(i int, kind CellKind) bool {
	if kind == Peak {
		return f.quantities[i] > 0
	}
	return f.quantities[i] < 0
}

// IsSmooth reports whether every cell is level.
func (f *Field) IsSmooth() bool {
	for _, q := range f.quantities {
		if q != 0 {
			return false
		}
	}
	return true
}

func (f *Field) Sum() Quantity {
	var sum Quantity
	for _, q := range f.quantities {
		sum += q
	}
	return sum
}

// TerrainToMove is the total positive volume, i.e. what must be hauled.
func (f *Field) TerrainToMove() Quantity {
	var sum Quantity
	for _, q := range f.quantities {
		if q > 0 {
			sum += q
		}
	}
	return sum
}

// Count returns how many cells are of the given kind.
func (f *Field) Count(kind CellKind) int {
	n := 0
	for i := range f.quantities {
		if f.is(i, kind) {
			n++
		}
	}
	return n
}

// Nearest returns the closest cell of the given kind to from, skipping the
// excluded coordinates. Ties keep the first cell in input order.
// ok is false when no cell qualifies.
func (f *Field) Nearest(from Coordinates, kind CellKind, exclude ...Coordinates) (Coordinates, bool) {
	return f.scan(from, kind, exclude, func(d, best float64) bool { return d < best })
}

// Farthest is the counterpart of Nearest.
func (f *Field) Farthest(from Coordinates, kind CellKind, exclude ...Coordinates) (Coordinates, bool) {
	return f.scan(from, kind, exclude, func(d, best float64) bool { return d > best })
}

func (f *Field) scan(
	from Coordinates,
	kind CellKind,
	exclude []Coordinates,
	better func(d, best float64) bool,
) (Coordinates, bool) {
	best := -1
	var bestDist float64

	for i, c := range f.coords {
		if !f.is(i, kind) || excluded(c, exclude) {
			continue
		}
		d := from.Distance(c)
		if best == -1 || better(d, bestDist) {
			best, bestDist = i, d
		}
	}

	if best == -1 {
		return Coordinates{}, false
	}
	return f.coords[best], true
}

func excluded(c Coordinates, set []Coordinates) bool {
	for _, e := range set {
		if c.Equal(e) {
			return true
		}
	}
	return false
}
