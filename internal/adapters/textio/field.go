package textio

import (
	"bufio"
	"earthwork-route-service/internal/domain"
	"fmt"
	"io"
	"math/rand"
	"strconv"
)

// ReadCells parses a field stream: a cell count n followed by n "x y q"
// records. Tokens may be separated by any whitespace.
func ReadCells(r io.Reader) ([]domain.Cell, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	tok := 0
	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("read cells: scan: %w", err)
			}
			return "", fmt.Errorf("read cells: %w: missing %s (token #%d)", domain.ErrMalformedField, what, tok+1)
		}
		tok++
		return sc.Text(), nil
	}

	s, err := next("cell count")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("read cells: %w: invalid cell count %q", domain.ErrMalformedField, s)
	}

	cells := make([]domain.Cell, 0, n)
	for i := 0; i < n; i++ {
		var v [3]float64
		for j, what := range []string{"x", "y", "quantity"} {
			s, err := next(what)
			if err != nil {
				return nil, err
			}
			if v[j], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("read cells: %w: record %d: invalid %s %q", domain.ErrMalformedField, i+1, what, s)
			}
		}
		cells = append(cells, domain.Cell{
			Coordinates: domain.Coordinates{X: v[0], Y: v[1]},
			Quantity:    domain.QuantityFromFloat(v[2]),
		})
	}

	if sc.Scan() {
		return nil, fmt.Errorf("read cells: %w: trailing token %q after %d records", domain.ErrMalformedField, sc.Text(), n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cells: scan: %w", err)
	}

	return cells, nil
}

// ReadField parses a field stream and balances it.
func ReadField(r io.Reader) (*domain.Field, []domain.Cell, error) {
	cells, err := ReadCells(r)
	if err != nil {
		return nil, nil, err
	}
	f, err := domain.NewField(cells)
	if err != nil {
		return nil, nil, fmt.Errorf("read field: %w", err)
	}
	return f, cells, nil
}

func WriteCells(w io.Writer, cells []domain.Cell) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, len(cells))
	for _, c := range cells {
		fmt.Fprintf(bw, "%s %s %s\n", formatFloat(c.Coordinates.X), formatFloat(c.Coordinates.Y), c.Quantity)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write cells: %w", err)
	}
	return nil
}

// GenerateGrid builds a rows x cols field of unit cells centered on
// (i+0.5, j+0.5)*spacing, with integer volumes drawn from [-maxVolume, maxVolume].
func GenerateGrid(rows, cols int, spacing float64, maxVolume int, rng *rand.Rand) ([]domain.Cell, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("generate grid: size must be positive (rows=%d cols=%d)", rows, cols)
	}
	if !(spacing > 0) {
		return nil, fmt.Errorf("generate grid: spacing must be positive (spacing=%g)", spacing)
	}
	if maxVolume < 0 {
		return nil, fmt.Errorf("generate grid: max volume must be non-negative (max=%d)", maxVolume)
	}
	if rng == nil {
		return nil, fmt.Errorf("generate grid: rng is nil")
	}

	cells := make([]domain.Cell, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			q := rng.Intn(2*maxVolume+1) - maxVolume
			cells = append(cells, domain.Cell{
				Coordinates: domain.Coordinates{X: (float64(i) + 0.5) * spacing, Y: (float64(j) + 0.5) * spacing},
				Quantity:    domain.QuantityFromFloat(float64(q)),
			})
		}
	}
	return cells, nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
