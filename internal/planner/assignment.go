package planner

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BigMThresholdDivisor: solved pairs whose cost is still at or above
// BigM / bigMThresholdDivisor are treated as infeasible and dropped from the
// result instead of being reported as assignments.
const bigMThresholdDivisor = 2

// SolveAssignment solves the minimum-cost perfect bipartite matching over the
// given players x slots cost matrix (Kuhn-Munkres, O(n^3)). Near-ties between
// similarly rated players are common, so an exact solver is required; greedy
// heuristics produce visibly inconsistent lineups.
//
// Rectangular matrices are padded square with zero-cost dummy entries, which
// lets the solver choose the best subset of the larger dimension. The return
// slice maps each row (player) to its assigned column (slot), -1 when the row
// was left on a dummy column.
func SolveAssignment(costs *mat.Dense) []int {
	rows, cols := costs.Dims()
	n := rows
	if cols > n {
		n = cols
	}

	// 1-indexed padded square matrix for the potentials method.
	a := make([][]float64, n+1)
	for i := 1; i <= n; i++ {
		a[i] = make([]float64, n+1)
		for j := 1; j <= n; j++ {
			if i <= rows && j <= cols {
				a[i][j] = costs.At(i-1, j-1)
			}
		}
	}

	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)   // p[j] = row matched to column j
	way := make([]int, n+1) // augmenting-path predecessors

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := a[i0][j] - u[i0] - v[j]
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
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	result := make([]int, rows)
	for i := range result {
		result[i] = -1
	}
	for j := 1; j <= n; j++ {
		if i := p[j]; i >= 1 && i <= rows && j <= cols {
			result[i-1] = j - 1
		}
	}
	return result
}

// FeasibleAssignments runs the solver and filters out pairs whose cost sits
// at the Big-M level: those slots had no valid candidate and are omitted from
// the result rather than reported.
func FeasibleAssignments(costs *mat.Dense, bigM float64) map[int]int {
	rowToCol := SolveAssignment(costs)
	out := make(map[int]int, len(rowToCol))
	threshold := bigM / bigMThresholdDivisor
	for row, col := range rowToCol {
		if col < 0 {
			continue
		}
		if costs.At(row, col) >= threshold {
			continue
		}
		out[row] = col
	}
	return out
}
