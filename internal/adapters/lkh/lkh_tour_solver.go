package lkh

import (
	"bufio"
	"bytes"
	"context"
	"earthwork-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Precision scales distances to the integral weights LKH expects.
// Scaled weights saturate at MaxWeight, the largest value LKH reads.
const (
	Precision = 10_000
	MaxWeight = math.MaxInt32
)

const (
	parameterFile = "PARAMETER_FILE"
	problemFile   = "PROBLEM_FILE"
	tourFile      = "TOUR_FILE"
)

// TourSolver runs the LKH heuristic as an external process.
//
// Every call works in a private temporary directory under Dir (the system
// temp dir when empty), removed when the call returns.
type TourSolver struct {
	Bin  string
	Dir  string
	Runs int // RUNS parameter; 0 keeps the LKH default
}

func NewTourSolver(bin, dir string) *TourSolver {
	return &TourSolver{Bin: bin, Dir: dir}
}

// Tour implements ports.TourSolver.
func (s *TourSolver) Tour(ctx context.Context, dist [][]float64) (_ []int, err error) {
	defer obs.Time(ctx, "lkh.Tour")(&err)

	n := len(dist)
	for i, row := range dist {
		if len(row) != n {
			return nil, fmt.Errorf("lkh tour: row %d has %d entries, want %d", i, len(row), n)
		}
	}
	// LKH rejects problems this small; the only tour is the identity.
	if n < 3 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	if strings.TrimSpace(s.Bin) == "" {
		return nil, errors.New("lkh tour: binary path is empty")
	}

	dir, err := os.MkdirTemp(s.Dir, "lkh-")
	if err != nil {
		return nil, fmt.Errorf("lkh tour: create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	params := filepath.Join(dir, parameterFile)
	problem := filepath.Join(dir, problemFile)
	tour := filepath.Join(dir, tourFile)

	if err := writeFile(problem, func(w io.Writer) error { return WriteProblem(w, dist) }); err != nil {
		return nil, fmt.Errorf("lkh tour: %w", err)
	}
	if err := writeFile(params, func(w io.Writer) error { return WriteParameters(w, problem, tour, s.Runs) }); err != nil {
		return nil, fmt.Errorf("lkh tour: %w", err)
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Bin, params)
	cmd.Dir = dir
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("lkh tour: run %s %s: %w (output: %s)", s.Bin, params, err, lastLine(output.String()))
	}

	f, err := os.Open(tour)
	if err != nil {
		return nil, fmt.Errorf("lkh tour: open %s: %w", tour, err)
	}
	defer f.Close()

	perm, err := ReadTour(f, n)
	if err != nil {
		return nil, fmt.Errorf("lkh tour: %s: %w", tour, err)
	}
	return perm, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteProblem writes dist as a TSPLIB ATSP problem with an explicit full
// matrix of integral weights.
func WriteProblem(w io.Writer, dist [][]float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "NAME: ATSP_between_chains")
	fmt.Fprintln(bw, "TYPE: ATSP")
	fmt.Fprintf(bw, "DIMENSION: %d\n", len(dist))
	fmt.Fprintln(bw, "EDGE_WEIGHT_TYPE: EXPLICIT")
	fmt.Fprintln(bw, "EDGE_WEIGHT_FORMAT: FULL_MATRIX")
	fmt.Fprintln(bw, "EDGE_WEIGHT_SECTION")
	for i, row := range dist {
		for j, d := range row {
			if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
				return fmt.Errorf("write problem: invalid distance %g at (%d, %d)", d, i, j)
			}
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatInt(weight(d), 10))
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintln(bw, "EOF")
	return bw.Flush()
}

func weight(d float64) int64 {
	if w := d * Precision; w < MaxWeight {
		return int64(w)
	}
	return MaxWeight
}

func WriteParameters(w io.Writer, problem, tour string, runs int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "PROBLEM_FILE = %s\n", problem)
	fmt.Fprintf(bw, "TOUR_FILE = %s\n", tour)
	if runs > 0 {
		fmt.Fprintf(bw, "RUNS = %d\n", runs)
	}
	return bw.Flush()
}

// ReadTour parses the TOUR_SECTION of an LKH tour file into a 0-based
// permutation of n nodes. The section is 1-based and ends with -1.
func ReadTour(r io.Reader, n int) ([]int, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	found := false
	for sc.Scan() {
		if sc.Text() == "TOUR_SECTION" {
			found = true
			break
		}
	}
	if !found {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read tour: scan: %w", err)
		}
		return nil, errors.New("read tour: no TOUR_SECTION")
	}

	seen := make([]bool, n)
	perm := make([]int, 0, n)
	for sc.Scan() {
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("read tour: invalid node %q", sc.Text())
		}
		if v == -1 {
			if len(perm) != n {
				return nil, fmt.Errorf("read tour: got %d nodes, want %d", len(perm), n)
			}
			return perm, nil
		}
		if v < 1 || v > n || seen[v-1] {
			return nil, fmt.Errorf("read tour: node %d out of range or repeated", v)
		}
		seen[v-1] = true
		perm = append(perm, v-1)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tour: scan: %w", err)
	}
	return nil, errors.New("read tour: missing -1 terminator")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
