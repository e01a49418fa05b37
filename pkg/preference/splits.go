package preference

import (
	"context"

	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
	"prefroute/pkg/routing"
)

// Split records one segment of a binary-search-segmented path: Cut is the
// node-sequence index the segment ends at, and Alpha is the preference
// that explains nodes[s..Cut] for that segment's start s.
type Split struct {
	Cut   int
	Alpha cost.Preference
}

// FindPreference segments a driven path into maximal subpaths each
// explained by a single preference, via repeated binary search: starting
// at s=0, it finds the largest cut m such that Estimate succeeds on
// nodes[s..m], records (m, alpha), and continues from s=m. The invariant
// relied on is that a single edge (m=s+1) always has a separating
// preference, so the search always advances.
func FindPreference(ctx context.Context, g *graph.Graph, qs *routing.QueryState, nodes, edges []uint32) ([]Split, error) {
	n := len(nodes)
	if n < 2 || len(edges) != n-1 {
		return nil, ErrNoPreference
	}

	var splits []Split
	s := 0
	for s < n-1 {
		lo, hi := s+1, n-1
		bestCut := -1
		var bestAlpha cost.Preference

		for lo <= hi {
			mid := lo + (hi-lo)/2
			obs := Observed{Nodes: nodes[s : mid+1], Cost: sumCost(g, edges[s:mid])}
			alpha, err := Estimate(ctx, g, qs, obs)
			if err == nil {
				bestCut = mid
				bestAlpha = alpha
				lo = mid + 1
			} else {
				hi = mid - 1
			}
		}

		if bestCut == -1 {
			// The single-edge case is guaranteed feasible; if the binary
			// search above somehow missed it, fall back to it directly
			// rather than stalling.
			obs := Observed{Nodes: nodes[s : s+2], Cost: sumCost(g, edges[s:s+1])}
			alpha, err := Estimate(ctx, g, qs, obs)
			if err != nil {
				return nil, err
			}
			bestCut, bestAlpha = s+1, alpha
		}

		splits = append(splits, Split{Cut: bestCut, Alpha: bestAlpha})
		s = bestCut
	}

	return splits, nil
}

func sumCost(g *graph.Graph, edges []uint32) cost.Vector {
	var total cost.Vector
	for _, e := range edges {
		total = cost.Add(total, g.Edges[e].Cost)
	}
	return total
}
