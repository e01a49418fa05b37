package chbuild

const (
	maxSettled = 500 // max nodes settled during one witness search
	maxHops    = 5   // max hops from the witness search's source
)

// witnessHeapItem is one entry in the witness search's min-heap.
type witnessHeapItem struct {
	node uint32
	dist float64
	hops int
}

// witnessHeap is a concrete-typed binary min-heap over witnessHeapItem.dist.
type witnessHeap struct {
	items []witnessHeapItem
}

func (h *witnessHeap) Len() int { return len(h.items) }

func (h *witnessHeap) Push(node uint32, dist float64, hops int) {
	h.items = append(h.items, witnessHeapItem{node, dist, hops})
	h.siftUp(len(h.items) - 1)
}

func (h *witnessHeap) Pop() witnessHeapItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *witnessHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *witnessHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

func (h *witnessHeap) Reset() {
	h.items = h.items[:0]
}

// witnessState is reusable scratch space for batch witness searches: a
// touched-list-reset distance array plus a heap, exactly the same shape as
// pkg/routing.QueryState's own reset discipline.
type witnessState struct {
	dist    []float64
	touched []uint32
	heap    witnessHeap
}

func newWitnessState(n int) *witnessState {
	ws := &witnessState{dist: make([]float64, n)}
	for i := range ws.dist {
		ws.dist[i] = infinity
	}
	return ws
}

const infinity = 1e18

func (ws *witnessState) reset() {
	for _, n := range ws.touched {
		ws.dist[n] = infinity
	}
	ws.touched = ws.touched[:0]
	ws.heap.Reset()
}

// batchWitnessSearch runs one Dijkstra from source, excluding the node
// currently being contracted, bounded by maxWeight and maxHops. The caller
// reads ws.dist for each outgoing candidate target afterward. This
// replaces the naive O(|in|*|out|) per-pair witness search with one search
// per incoming neighbor, per the teacher's own batching idiom.
func batchWitnessSearch(ws *witnessState, outAdj [][]adjEntry, source, excluded uint32, maxWeight float64, contracted []bool) {
	ws.reset()

	ws.dist[source] = 0
	ws.touched = append(ws.touched, source)
	ws.heap.Push(source, 0, 0)

	settled := 0
	for ws.heap.Len() > 0 {
		cur := ws.heap.Pop()
		if cur.dist > ws.dist[cur.node] {
			continue
		}
		settled++
		if settled >= maxSettled {
			break
		}
		if cur.dist > maxWeight || cur.hops >= maxHops {
			continue
		}

		for _, e := range outAdj[cur.node] {
			if e.to == excluded || contracted[e.to] {
				continue
			}
			newDist := cur.dist + e.scalar
			if newDist > maxWeight {
				continue
			}
			if newDist < ws.dist[e.to] {
				if ws.dist[e.to] == infinity {
					ws.touched = append(ws.touched, e.to)
				}
				ws.dist[e.to] = newDist
				ws.heap.Push(e.to, newDist, cur.hops+1)
			}
		}
	}
}
