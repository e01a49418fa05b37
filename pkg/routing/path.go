package routing

import (
	"context"

	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
)

// FindPath runs Search consecutively over each adjacent pair of waypoints,
// concatenating edge lists and summing cost vectors. It reports
// ErrUnreachable as soon as any adjacent pair is unreachable.
func FindPath(ctx context.Context, g *graph.Graph, qs *QueryState, waypoints []uint32, alpha cost.Preference) (*EdgePath, error) {
	if len(waypoints) < 2 {
		return &EdgePath{}, nil
	}

	var edges []uint32
	var total cost.Vector
	var scalar float64

	for i := 0; i+1 < len(waypoints); i++ {
		leg, err := Search(ctx, g, qs, waypoints[i], waypoints[i+1], alpha)
		if err != nil {
			return nil, err
		}
		edges = append(edges, leg.Edges...)
		total = cost.Add(total, leg.Cost)
		scalar += leg.Scalar
	}

	return &EdgePath{Edges: edges, Cost: total, Scalar: scalar}, nil
}

// AssembledPath is the node-level expansion of an edge path: the full node
// sequence traversed (shortcuts unpacked), plus cut indices marking the
// node-sequence offsets of each original waypoint boundary (used by the
// preference estimator to index subpaths).
type AssembledPath struct {
	Nodes []uint32
	Cuts  []int
}

// Assemble expands a raw edge sequence, starting at source, into its full
// node sequence by recursively unpacking shortcuts.
func Assemble(g *graph.Graph, source uint32, edges []uint32) []uint32 {
	nodes := make([]uint32, 0, len(edges)+1)
	nodes = append(nodes, source)
	for _, e := range edges {
		nodes = append(nodes, g.Unpack(e)...)
	}
	return nodes
}

// AssembleComposite expands a composite (multi-waypoint) edge path,
// recording the node-sequence index at each waypoint boundary.
func AssembleComposite(g *graph.Graph, waypoints []uint32, legs []*EdgePath) *AssembledPath {
	if len(waypoints) == 0 {
		return &AssembledPath{}
	}

	nodes := []uint32{waypoints[0]}
	cuts := make([]int, 0, len(legs))
	for _, leg := range legs {
		for _, e := range leg.Edges {
			nodes = append(nodes, g.Unpack(e)...)
		}
		cuts = append(cuts, len(nodes)-1)
	}
	return &AssembledPath{Nodes: nodes, Cuts: cuts}
}
