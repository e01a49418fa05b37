// Package graph holds the routing graph in a contraction-hierarchy-ready
// CSR (Compressed Sparse Row) layout: node levels, a flat edge table
// (including shortcut edges), and two upward-only adjacency views used by
// the bidirectional search.
package graph

import (
	"prefroute/pkg/cost"
	"prefroute/pkg/geo"
)

// noReplEdge marks a base (non-shortcut) edge.
const noReplEdge = ^uint32(0)

// Node is a single intersection in the graph.
type Node struct {
	Lat, Lng  float64
	Elevation float64
	Level     uint32
}

// Coordinate returns the node's position.
func (n Node) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: n.Lat, Lng: n.Lng}
}

// Edge is a directed edge between two nodes, carrying a D-dimensional cost.
// Shortcut edges additionally record the pair of underlying edges they
// replace; base edges leave both at noReplEdge.
type Edge struct {
	Source, Target uint32
	Cost           cost.Vector
	Repl1, Repl2   uint32
}

// IsShortcut reports whether e was produced by contraction rather than
// appearing directly in the source data.
func (e Edge) IsShortcut() bool {
	return e.Repl1 != noReplEdge
}

// halfEdge is one entry of an upward adjacency list: the edge backing it,
// the node at its far end (the neighbour reached by following it), and a
// copy of the edge's cost vector, kept alongside rather than requiring a
// second lookup into Edges on every relaxation.
type halfEdge struct {
	EdgeID uint32
	Node   uint32
	Cost   cost.Vector
}

// Graph is a directed, leveled multigraph in CSR form. Edges are indexed
// 0..NumEdges-1 in file order; Nodes are indexed 0..NumNodes-1.
//
// OutFirst/OutAdj hold, for every node u, the "upward" out-edges (u, v)
// with Level[v] >= Level[u]: the edges the forward half of a bidirectional
// search is allowed to relax. InFirst/InAdj hold, symmetrically for every
// node v, the upward in-edges (u, v) with Level[u] >= Level[v], used by the
// backward half.
type Graph struct {
	Nodes []Node
	Edges []Edge

	OutFirst []uint32 // len NumNodes()+1
	OutAdj   []halfEdge

	InFirst []uint32 // len NumNodes()+1
	InAdj   []halfEdge

	nodeIdx *nodeIndex
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// NumEdges returns the number of edges in the graph (base edges and
// shortcuts combined).
func (g *Graph) NumEdges() int { return len(g.Edges) }

// OutUp returns the upward out half-edges of node u.
func (g *Graph) OutUp(u uint32) []halfEdge {
	return g.OutAdj[g.OutFirst[u]:g.OutFirst[u+1]]
}

// InUp returns the upward in half-edges of node v.
func (g *Graph) InUp(v uint32) []halfEdge {
	return g.InAdj[g.InFirst[v]:g.InFirst[v+1]]
}
