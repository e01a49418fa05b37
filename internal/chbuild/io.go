package chbuild

import (
	"fmt"

	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
)

// Build reads an uncontracted graph from path (the same text format as
// graph.Load/graph.Save, with every edge a base edge and node levels
// ignored), restricts it to its largest weakly-connected component, and
// runs Contract under refAlpha. The result is directly writable with
// graph.Save and loadable with graph.Load.
func Build(path string, refAlpha cost.Preference) (*graph.Graph, error) {
	g, err := graph.Load(path)
	if err != nil {
		return nil, fmt.Errorf("chbuild: read uncontracted graph: %w", err)
	}

	rawEdges := make([]rawEdge, len(g.Edges))
	for i, e := range g.Edges {
		if e.IsShortcut() {
			return nil, fmt.Errorf("chbuild: input graph at %s already contains shortcut edges", path)
		}
		rawEdges[i] = rawEdge{source: e.Source, target: e.Target, cost: e.Cost}
	}

	keep := largestComponent(uint32(len(g.Nodes)), rawEdges)
	nodes, edges := filterToComponent(g.Nodes, rawEdges, keep)

	return Contract(nodes, edges, refAlpha), nil
}

// filterToComponent restricts nodes/edges to the given node id subset,
// renumbering both to a dense 0..len(keep)-1 range.
func filterToComponent(allNodes []graph.Node, allEdges []rawEdge, keep []uint32) ([]graph.Node, []rawEdge) {
	oldToNew := make(map[uint32]uint32, len(keep))
	nodes := make([]graph.Node, len(keep))
	for newIdx, oldIdx := range keep {
		oldToNew[oldIdx] = uint32(newIdx)
		nodes[newIdx] = allNodes[oldIdx]
	}

	var edges []rawEdge
	for _, e := range allEdges {
		newSource, sourceOK := oldToNew[e.source]
		newTarget, targetOK := oldToNew[e.target]
		if sourceOK && targetOK {
			edges = append(edges, rawEdge{source: newSource, target: newTarget, cost: e.cost})
		}
	}

	return nodes, edges
}
