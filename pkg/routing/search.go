// Package routing implements bidirectional contraction-hierarchy search
// over a graph.Graph, plus the node-sequence assembly that turns a raw
// edge path into something a caller (or the preference estimator) can use.
package routing

import (
	"context"
	"errors"
	"math"

	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
)

// noNode is the sentinel predecessor/meet-node value meaning "none".
const noNode = ^uint32(0)

// ErrUnreachable is returned when no path exists between the requested
// endpoints.
var ErrUnreachable = errors.New("routing: no path between endpoints")

// direction distinguishes the two halves of the bidirectional search.
type direction uint8

const (
	forward direction = iota
	backward
)

// nodeState is the per-node (cost vector, scalar) pair tracked by each
// direction's Dijkstra instance.
type nodeState struct {
	vec    cost.Vector
	scalar float64
}

// link records a search predecessor: the node relaxed from, and the edge
// used to reach the current node.
type link struct {
	node uint32
	edge uint32
}

// candidate is a single heap entry: one (scalar, node, direction, cost
// vector) tuple, matching the search's single combined priority queue.
type candidate struct {
	scalar float64
	node   uint32
	dir    direction
	vec    cost.Vector
}

// candidateHeap is a concrete-typed binary min-heap over candidate.scalar,
// avoiding the interface boxing of container/heap.
type candidateHeap struct {
	items []candidate
}

func (h *candidateHeap) Len() int { return len(h.items) }

func (h *candidateHeap) Push(c candidate) {
	h.items = append(h.items, c)
	h.siftUp(len(h.items) - 1)
}

func (h *candidateHeap) Pop() candidate {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *candidateHeap) Reset() {
	h.items = h.items[:0]
}

func (h *candidateHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].scalar >= h.items[parent].scalar {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *candidateHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.items[left].scalar < h.items[smallest].scalar {
			smallest = left
		}
		if right < n && h.items[right].scalar < h.items[smallest].scalar {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// QueryState holds per-query search state, allocated once per worker and
// reused across requests via sync.Pool. clear, run at the start of every
// Search, resets only the cells touched by the previous query.
type QueryState struct {
	distF, distB []nodeState
	prevF, prevB []link
	touched      []uint32
	heap         candidateHeap
}

// NewQueryState allocates search state sized for a graph with n nodes.
func NewQueryState(n int) *QueryState {
	qs := &QueryState{
		distF:   make([]nodeState, n),
		distB:   make([]nodeState, n),
		prevF:   make([]link, n),
		prevB:   make([]link, n),
		touched: make([]uint32, 0, 256),
	}
	qs.reset(n)
	return qs
}

func (qs *QueryState) reset(n int) {
	for i := 0; i < n; i++ {
		qs.distF[i] = nodeState{scalar: math.Inf(1)}
		qs.distB[i] = nodeState{scalar: math.Inf(1)}
		qs.prevF[i] = link{node: noNode, edge: noNode}
		qs.prevB[i] = link{node: noNode, edge: noNode}
	}
}

// clear resets only the cells touched by the previous search, and the heap.
func (qs *QueryState) clear() {
	for _, u := range qs.touched {
		qs.distF[u] = nodeState{scalar: math.Inf(1)}
		qs.distB[u] = nodeState{scalar: math.Inf(1)}
		qs.prevF[u] = link{node: noNode, edge: noNode}
		qs.prevB[u] = link{node: noNode, edge: noNode}
	}
	qs.touched = qs.touched[:0]
	qs.heap.Reset()
}

func (qs *QueryState) touch(u uint32) {
	qs.touched = append(qs.touched, u)
}

// EdgePath is the result of a single-pair CH search: an ordered edge list
// from source to target, its total cost vector, and its scalar total.
type EdgePath struct {
	Edges  []uint32
	Cost   cost.Vector
	Scalar float64
}

// searchCheckInterval is how many heap pops Search performs between
// context-cancellation checks. Checking every pop would add overhead to the
// common case where a query finishes in a few hundred pops; checking this
// rarely still bounds how long an abandoned request keeps searching.
const searchCheckInterval = 4096

// Search runs a bidirectional CH search from source to target under
// preference alpha, returning the winning edge path. qs must be sized for
// g (see NewQueryState); the cells the previous search touched are cleared
// at the start of each call, so qs can be reused without a reset. ctx is checked
// periodically so a client disconnect or request timeout can abort a
// pathological search instead of running to completion unobserved.
func Search(ctx context.Context, g *graph.Graph, qs *QueryState, source, target uint32, alpha cost.Preference) (*EdgePath, error) {
	qs.clear()

	bestScalar := math.Inf(1)
	bestNode := noNode
	var bestVec cost.Vector
	doneF, doneB := false, false

	qs.distF[source] = nodeState{scalar: 0}
	qs.touch(source)
	qs.heap.Push(candidate{scalar: 0, node: source, dir: forward})

	qs.distB[target] = nodeState{scalar: 0}
	qs.touch(target)
	qs.heap.Push(candidate{scalar: 0, node: target, dir: backward})

	for pops := 0; qs.heap.Len() > 0 && !(doneF && doneB); pops++ {
		if pops%searchCheckInterval == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c := qs.heap.Pop()

		var dMe, dOther []nodeState
		var prevMe []link
		if c.dir == forward {
			if doneF {
				continue
			}
			dMe, dOther, prevMe = qs.distF, qs.distB, qs.prevF
		} else {
			if doneB {
				continue
			}
			dMe, dOther, prevMe = qs.distB, qs.distF, qs.prevB
		}

		if c.scalar > dMe[c.node].scalar {
			continue // stale heap entry
		}
		if c.scalar > bestScalar {
			if c.dir == forward {
				doneF = true
			} else {
				doneB = true
			}
			continue
		}

		if !math.IsInf(dOther[c.node].scalar, 1) {
			meet := c.scalar + dOther[c.node].scalar
			if meet < bestScalar {
				bestScalar = meet
				bestNode = c.node
				bestVec = cost.Add(c.vec, dOther[c.node].vec)
			}
		}

		relax := func(edgeID, target uint32, ec cost.Vector) {
			gPrime := c.scalar + cost.Scalar(ec, alpha)
			if gPrime < dMe[target].scalar {
				dMe[target] = nodeState{vec: cost.Add(c.vec, ec), scalar: gPrime}
				prevMe[target] = link{node: c.node, edge: edgeID}
				qs.touch(target)
				qs.heap.Push(candidate{scalar: gPrime, node: target, dir: c.dir, vec: dMe[target].vec})
			}
		}
		if c.dir == forward {
			for _, he := range g.OutUp(c.node) {
				relax(he.EdgeID, he.Node, he.Cost)
			}
		} else {
			for _, he := range g.InUp(c.node) {
				relax(he.EdgeID, he.Node, he.Cost)
			}
		}
	}

	if bestNode == noNode {
		return nil, ErrUnreachable
	}

	edges := walkPath(bestNode, qs.prevF, qs.prevB)
	return &EdgePath{Edges: edges, Cost: bestVec, Scalar: bestScalar}, nil
}

// walkPath reconstructs the edge id sequence from source to target by
// walking prevF backwards from the meet node (then reversing), followed by
// prevB forwards from the meet node.
func walkPath(meet uint32, prevF, prevB []link) []uint32 {
	var fwd []uint32
	for u := meet; prevF[u].node != noNode; u = prevF[u].node {
		fwd = append(fwd, prevF[u].edge)
	}
	for i, j := 0, len(fwd)-1; i < j; i, j = i+1, j-1 {
		fwd[i], fwd[j] = fwd[j], fwd[i]
	}

	var bwd []uint32
	for u := meet; prevB[u].node != noNode; u = prevB[u].node {
		bwd = append(bwd, prevB[u].edge)
	}

	return append(fwd, bwd...)
}
