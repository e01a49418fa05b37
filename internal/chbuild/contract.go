// Package chbuild implements offline Contraction-Hierarchy preprocessing:
// given an uncontracted edge list, it produces the leveled, shortcut-
// annotated graph that pkg/graph.Load consumes at serve time. This is the
// one place in the system that performs preprocessing — the server itself
// only ever reads an already-contracted graph file.
package chbuild

import (
	"container/heap"
	"log"

	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
)

// maxShortcutsPerNode bounds the shortcuts a single contraction may create.
// The first node that would exceed it stops contraction: it and every node
// not yet contracted are left uncontracted, forming a core at the top of
// the hierarchy.
const maxShortcutsPerNode = 1000

// rawEdge is an input edge before contraction: no shortcut bookkeeping yet.
type rawEdge struct {
	source, target uint32
	cost           cost.Vector
}

// adjEntry is one entry of a mutable contraction-time adjacency list: the
// neighbor reached, the edge id in the growing output edge table, and a
// cached scalar weight (under the reference preference) to avoid
// rescalarizing on every witness-search relaxation.
type adjEntry struct {
	to     uint32
	edgeID uint32
	scalar float64
}

// Contract runs Contraction Hierarchies preprocessing over nodes/edges
// (already restricted to a single connected component — see
// largestComponent) and returns a graph ready for graph.Save, leveled by
// contraction order and annotated with shortcut edges. refAlpha
// scalarizes edge costs for contraction-order and witness-search
// comparisons only; it does not constrain which preference the resulting
// graph can be queried with at serve time — the CH overlay is valid
// structure regardless of which preference built it.
func Contract(nodes []graph.Node, edges []rawEdge, refAlpha cost.Preference) *graph.Graph {
	n := uint32(len(nodes))
	if n == 0 {
		return &graph.Graph{}
	}

	outEdges := make([]graph.Edge, len(edges))
	for i, e := range edges {
		outEdges[i] = graph.Edge{Source: e.source, Target: e.target, Cost: e.cost, Repl1: noRepl, Repl2: noRepl}
	}

	outAdj := make([][]adjEntry, n)
	inAdj := make([][]adjEntry, n)
	for i, e := range edges {
		scalar := cost.Scalar(e.cost, refAlpha)
		outAdj[e.source] = append(outAdj[e.source], adjEntry{to: e.target, edgeID: uint32(i), scalar: scalar})
		inAdj[e.target] = append(inAdj[e.target], adjEntry{to: e.source, edgeID: uint32(i), scalar: scalar})
	}

	contracted := make([]bool, n)
	rank := make([]uint32, n)
	contractedNeighbors := make([]int, n)
	depth := make([]int, n)

	pq := make(priorityQueue, n)
	for i := uint32(0); i < n; i++ {
		pq[i] = &pqEntry{
			node:     i,
			priority: computePriority(outAdj, inAdj, i, contracted, 0, 0),
			index:    int(i),
		}
	}
	heap.Init(&pq)

	ws := newWitnessState(int(n))

	log.Printf("chbuild: contracting %d nodes...", n)

	var totalShortcuts int
	order := uint32(0)

	for pq.Len() > 0 {
		entry := heap.Pop(&pq).(*pqEntry)
		node := entry.node
		if contracted[node] {
			continue
		}

		newPriority := computePriority(outAdj, inAdj, node, contracted, contractedNeighbors[node], depth[node])
		if newPriority > entry.priority && pq.Len() > 0 && newPriority > pq[0].priority {
			entry.priority = newPriority
			heap.Push(&pq, entry)
			continue
		}

		shortcuts := findShortcuts(ws, outAdj, inAdj, node, contracted)
		if len(shortcuts) > maxShortcutsPerNode {
			log.Printf("chbuild: stopping contraction at node %d (%d shortcuts, limit %d); %d nodes remain in core",
				node, len(shortcuts), maxShortcutsPerNode, n-order)
			break
		}

		contracted[node] = true
		rank[node] = order
		order++
		totalShortcuts += len(shortcuts)

		for _, sc := range shortcuts {
			edgeID := uint32(len(outEdges))
			outEdges = append(outEdges, graph.Edge{
				Source: sc.from,
				Target: sc.to,
				Cost:   cost.Add(outEdges[sc.viaEdge1].Cost, outEdges[sc.viaEdge2].Cost),
				Repl1:  sc.viaEdge1,
				Repl2:  sc.viaEdge2,
			})
			outAdj[sc.from] = append(outAdj[sc.from], adjEntry{to: sc.to, edgeID: edgeID, scalar: sc.scalar})
			inAdj[sc.to] = append(inAdj[sc.to], adjEntry{to: sc.from, edgeID: edgeID, scalar: sc.scalar})
		}

		for _, e := range outAdj[node] {
			if !contracted[e.to] {
				contractedNeighbors[e.to]++
				if depth[node]+1 > depth[e.to] {
					depth[e.to] = depth[node] + 1
				}
			}
		}
		for _, e := range inAdj[node] {
			if !contracted[e.to] {
				contractedNeighbors[e.to]++
				if depth[node]+1 > depth[e.to] {
					depth[e.to] = depth[node] + 1
				}
			}
		}
	}

	for i := uint32(0); i < n; i++ {
		if !contracted[i] {
			rank[i] = order
			order++
		}
	}

	log.Printf("chbuild: done — %d shortcuts created (%.1fx original edges)",
		totalShortcuts, float64(totalShortcuts)/float64(len(edges)))

	out := &graph.Graph{Nodes: make([]graph.Node, n), Edges: outEdges}
	for i, node := range nodes {
		node.Level = rank[i]
		out.Nodes[i] = node
	}
	return out
}

// noRepl marks a base (non-shortcut) edge during contraction; it is the
// same sentinel value as graph.Edge.IsShortcut checks against.
const noRepl = ^uint32(0)

// shortcutCandidate is a shortcut edge chbuild has decided is necessary.
type shortcutCandidate struct {
	from, to           uint32
	viaEdge1, viaEdge2 uint32
	scalar             float64
}

// findShortcuts determines the shortcuts needed when contracting node, via
// one batch witness search per active incoming neighbor.
func findShortcuts(ws *witnessState, outAdj, inAdj [][]adjEntry, node uint32, contracted []bool) []shortcutCandidate {
	var incoming, outgoing []adjEntry
	for _, e := range inAdj[node] {
		if !contracted[e.to] {
			incoming = append(incoming, e)
		}
	}
	for _, e := range outAdj[node] {
		if !contracted[e.to] {
			outgoing = append(outgoing, e)
		}
	}
	if len(incoming) == 0 || len(outgoing) == 0 {
		return nil
	}

	var shortcuts []shortcutCandidate
	for _, in := range incoming {
		var maxOut float64
		for _, out := range outgoing {
			if out.to != in.to && out.scalar > maxOut {
				maxOut = out.scalar
			}
		}
		if maxOut == 0 {
			continue
		}

		batchWitnessSearch(ws, outAdj, in.to, node, in.scalar+maxOut, contracted)

		for _, out := range outgoing {
			if out.to == in.to {
				continue
			}
			scScalar := in.scalar + out.scalar
			if ws.dist[out.to] > scScalar {
				shortcuts = append(shortcuts, shortcutCandidate{
					from:     in.to,
					to:       out.to,
					viaEdge1: in.edgeID,
					viaEdge2: out.edgeID,
					scalar:   scScalar,
				})
			}
		}
	}
	return shortcuts
}

func computePriority(outAdj, inAdj [][]adjEntry, node uint32, contracted []bool, contractedNeighbors, depth int) int {
	activeIn, activeOut := 0, 0
	for _, e := range inAdj[node] {
		if !contracted[e.to] {
			activeIn++
		}
	}
	for _, e := range outAdj[node] {
		if !contracted[e.to] {
			activeOut++
		}
	}
	edgeDifference := activeIn*activeOut - (activeIn + activeOut)
	return edgeDifference + 2*contractedNeighbors + depth
}

// Priority queue over nodes, ordered by ascending contraction priority.

type pqEntry struct {
	node     uint32
	priority int
	index    int
}

type priorityQueue []*pqEntry

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	entry := x.(*pqEntry)
	entry.index = len(*pq)
	*pq = append(*pq, entry)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*pq = old[:n-1]
	return entry
}
