package textio

import (
	"bufio"
	"earthwork-route-service/internal/domain"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteRoute writes one "x y quantityToBringIn" line per stopover.
func WriteRoute(w io.Writer, p *domain.Path) error {
	bw := bufio.NewWriter(w)
	for _, s := range p.Stopovers() {
		fmt.Fprintf(bw, "%s %s %s\n", formatFloat(s.Coordinates.X), formatFloat(s.Coordinates.Y), s.QuantityToBringIn)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write route: %w", err)
	}
	return nil
}

// ReadRoute parses the output of WriteRoute. Blank lines are skipped.
func ReadRoute(r io.Reader) (*domain.Path, error) {
	sc := bufio.NewScanner(r)
	p := domain.NewPath()

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("read route: line %d: want 3 fields, got %d", line, len(fields))
		}

		var v [3]float64
		for i, f := range fields {
			var err error
			if v[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, fmt.Errorf("read route: line %d: invalid number %q: %w", line, f, err)
			}
		}
		p.AddStopover(domain.Coordinates{X: v[0], Y: v[1]}, domain.QuantityFromFloat(v[2]))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read route: scan: %w", err)
	}
	if p.Len() == 0 {
		return nil, fmt.Errorf("read route: no stopovers")
	}

	return p, nil
}

// CheckRoute replays a route on a freshly balanced field built from cells
// and reports whether it levels every cell.
func CheckRoute(cells []domain.Cell, p *domain.Path) error {
	f, err := domain.NewField(cells)
	if err != nil {
		return fmt.Errorf("check route: %w", err)
	}
	f.Apply(p)
	if !f.IsSmooth() {
		return fmt.Errorf("check route: %w: field not smooth after replay (terrain left=%s)", domain.ErrRouteInfeasible, f.TerrainToMove())
	}
	return nil
}
