package domain

// Stopover is one point of a route with the cargo the truck carries into it.
type Stopover struct {
	Coordinates       Coordinates
	QuantityToBringIn Quantity
}

// Movement is the edge between two consecutive stopovers.
type Movement struct {
	From     Coordinates
	To       Coordinates
	Quantity Quantity
}

// Path is an ordered sequence of stopovers. Two consecutive stopovers never
// share the same coordinates: such no-op moves are dropped on insertion.
type Path struct {
	stopovers []Stopover
}

func NewPath(stopovers ...Stopover) *Path {
	p := &Path{}
	for _, s := range stopovers {
		p.AddStopover(s.Coordinates, s.QuantityToBringIn)
	}
	return p
}

func (p *Path) Len() int { return len(p.stopovers) }

func (p *Path) At(i int) Stopover { return p.stopovers[i] }

func (p *Path) Coordinates(i int) Coordinates { return p.stopovers[i].Coordinates }

func (p *Path) First() Coordinates { return p.stopovers[0].Coordinates }

func (p *Path) Last() Coordinates { return p.stopovers[len(p.stopovers)-1].Coordinates }

// Stopovers returns a copy of the stopovers in visit order.
func (p *Path) Stopovers() []Stopover { return append([]Stopover(nil), p.stopovers...) }

// AddStopover appends a stopover unless it repeats the last position.
func (p *Path) AddStopover(c Coordinates, q Quantity) bool {
	return p.Insert(len(p.stopovers), Stopover{Coordinates: c, QuantityToBringIn: q})
}

// Insert places s at index i. It reports false, leaving the path untouched,
// when s would repeat the coordinates of either neighbor.
func (p *Path) Insert(i int, s Stopover) bool {
	if i > 0 && p.stopovers[i-1].Coordinates.Equal(s.Coordinates) {
		return false
	}
	if i < len(p.stopovers) && p.stopovers[i].Coordinates.Equal(s.Coordinates) {
		return false
	}
	p.stopovers = append(p.stopovers, Stopover{})
	copy(p.stopovers[i+1:], p.stopovers[i:])
	p.stopovers[i] = s
	return true
}

// Append adds every stopover of other in order.
func (p *Path) Append(other *Path) {
	for _, s := range other.stopovers {
		p.AddStopover(s.Coordinates, s.QuantityToBringIn)
	}
}

// Movement returns the edge from stopover i to stopover i+1.
func (p *Path) Movement(i int) Movement {
	return Movement{
		From:     p.stopovers[i].Coordinates,
		To:       p.stopovers[i+1].Coordinates,
		Quantity: p.stopovers[i+1].QuantityToBringIn,
	}
}

func (p *Path) Movements() []Movement {
	if len(p.stopovers) < 2 {
		return nil
	}
	out := make([]Movement, 0, len(p.stopovers)-1)
	for i := 0; i+1 < len(p.stopovers); i++ {
		out = append(out, p.Movement(i))
	}
	return out
}

// Prefix returns a new path with the first n stopovers.
func (p *Path) Prefix(n int) *Path {
	return &Path{stopovers: append([]Stopover(nil), p.stopovers[:n]...)}
}

func (p *Path) Clone() *Path { return p.Prefix(len(p.stopovers)) }

// Distance is the Euclidean length of the whole path.
func (p *Path) Distance() float64 {
	var d float64
	for i := 1; i < len(p.stopovers); i++ {
		d += p.stopovers[i-1].Coordinates.Distance(p.stopovers[i].Coordinates)
	}
	return d
}
