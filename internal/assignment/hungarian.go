// Package assignment solves the linear assignment problem on dense square
// cost matrices.
package assignment

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotSquare   = errors.New("cost matrix is not square")
	ErrInvalidCost = errors.New("cost matrix has a non-finite entry")
)

// Solve returns the minimum cost perfect matching of a square cost matrix:
// row i is assigned to column result[i].
//
// It is the O(n³) shortest augmenting path variant of the Hungarian method,
// with row potentials u and column potentials v kept such that
// u[i] + v[j] <= cost[i][j] for every cell.
func Solve(cost [][]float64) ([]int, error) {
	n := len(cost)
	for i, row := range cost {
		if len(row) != n {
			return nil, fmt.Errorf("assignment: %w: row %d has %d columns, want %d", ErrNotSquare, i, len(row), n)
		}
		for j, c := range row {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, fmt.Errorf("assignment: %w: cost[%d][%d]=%v", ErrInvalidCost, i, j, c)
			}
		}
	}
	if n == 0 {
		return []int{}, nil
	}

	// 1-indexed internally; column 0 is the virtual source of each augmentation.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	match := make([]int, n+1) // match[j] = row assigned to column j, 0 if none
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		match[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = math.Inf(1)
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := match[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if match[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			match[j0] = match[j1]
			j0 = j1
		}
	}

	result := make([]int, n)
	for j := 1; j <= n; j++ {
		result[match[j]-1] = j - 1
	}
	return result, nil
}

// Cost returns the total cost of an assignment.
func Cost(cost [][]float64, assignment []int) float64 {
	var total float64
	for i, j := range assignment {
		total += cost[i][j]
	}
	return total
}
