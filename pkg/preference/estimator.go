// Package preference implements the cutting-plane estimator that recovers
// a linear cost preference explaining an observed driven path.
package preference

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
	"prefroute/pkg/routing"
)

// ErrNoPreference is returned when no preference separates the observed
// subpath from the graph's alternatives — either the LP went infeasible,
// collapsed to the all-zero vector, or the loop failed to converge within
// maxIterations.
var ErrNoPreference = errors.New("preference: no separating preference found")

const (
	maxIterations = 64
	tolerance     = 1e-7
)

// Observed is the subpath an estimator round is asked to explain: its full
// node sequence (whose endpoints are re-searched, and which the search
// result must reproduce) and its total cost.
type Observed struct {
	Nodes []uint32
	Cost  cost.Vector
}

// Estimate runs the cutting-plane loop described for the preference
// estimator: repeatedly re-search the observed endpoints under the current
// best-guess preference, and whenever the search disagrees with the
// observation, add a separating constraint and re-solve the LP for a new
// preference. Returns ErrNoPreference if no such preference can be found.
func Estimate(ctx context.Context, g *graph.Graph, qs *routing.QueryState, obs Observed) (cost.Preference, error) {
	if len(obs.Nodes) < 2 {
		return cost.Preference{}, ErrNoPreference
	}
	source, target := obs.Nodes[0], obs.Nodes[len(obs.Nodes)-1]

	alpha := cost.Uniform()
	var constraints []cost.Vector // constraints[k][i] = c_U[i] - c_Q[i] for that round

	for iter := 0; iter < maxIterations; iter++ {
		q, err := routing.Search(ctx, g, qs, source, target, alpha)
		if err != nil {
			// The observed path exists, so an unreachable result here means
			// the current alpha makes no progress; treat as infeasible.
			return cost.Preference{}, ErrNoPreference
		}

		qNodes := routing.Assemble(g, source, q.Edges)
		if sameNodes(qNodes, obs.Nodes) {
			return alpha, nil
		}

		constraints = append(constraints, cost.Sub(obs.Cost, q.Cost))

		next, ok := solveLP(constraints)
		if !ok {
			return cost.Preference{}, ErrNoPreference
		}
		if allZero(next) {
			return cost.Preference{}, ErrNoPreference
		}
		if alpha.Close(next, tolerance) {
			return alpha, nil // LP stagnated at a fixed point
		}
		alpha = next
	}

	return cost.Preference{}, ErrNoPreference
}

// solveLP finds a preference alpha minimizing nothing but feasibility,
// maximizing the sum of one slack per constraint. gonum's Simplex takes
// anonymous column-indexed variables, so the naming contract lives at the
// edges of this package instead: column i of alpha is config's
// edge_cost_tags[i], and callers pair the two by index when labelling a
// result.
//
//	variables: alpha_1..alpha_D, delta_1..delta_K   (all >= 0)
//	Sum(alpha) = 1
//	for each k: delta_k + Sum_i(constraints[k][i] * alpha_i) = 0
//	maximize Sum(delta_k)  <=>  minimize -Sum(delta_k)
func solveLP(constraints []cost.Vector) (cost.Preference, bool) {
	d := cost.Dim
	k := len(constraints)
	numVars := d + k
	numRows := 1 + k

	a := mat.NewDense(numRows, numVars, nil)
	b := make([]float64, numRows)
	c := make([]float64, numVars)

	for i := 0; i < d; i++ {
		a.Set(0, i, 1)
	}
	b[0] = 1

	for row, con := range constraints {
		for i := 0; i < d; i++ {
			a.Set(row+1, i, con[i])
		}
		a.Set(row+1, d+row, 1) // delta_row
		b[row+1] = 0
		c[d+row] = -1 // minimize -delta_row == maximize delta_row
	}

	_, x, err := lp.Simplex(c, a, b, tolerance, nil)
	if err != nil {
		return cost.Preference{}, false
	}

	var alpha cost.Preference
	for i := 0; i < d; i++ {
		v := x[i]
		if v < 0 {
			v = 0
		}
		alpha[i] = v
	}
	return alpha, true
}

func sameNodes(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func allZero(p cost.Preference) bool {
	for _, v := range p {
		if math.Abs(v) > tolerance {
			return false
		}
	}
	return true
}
