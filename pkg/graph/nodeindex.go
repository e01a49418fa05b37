package graph

import (
	"math"
	"sort"
)

// gridCellSize is the spatial hash cell size, in the same degree units as
// Node.Lat/Lng. Kept coarse enough that a handful of rings comfortably
// covers any real query, fine enough that a cell holds only a few nodes.
const gridCellSize = 0.1

// nodeCell pairs a sorted grid-cell key with the node it contains.
type nodeCell struct {
	key  uint64
	node uint32
}

// nodeIndex is a flat sorted spatial grid over node coordinates, the same
// single-slice-plus-binary-search technique as a road-segment grid index,
// adapted here to index point locations instead of edge segments.
type nodeIndex struct {
	cells []nodeCell // sorted by key
}

func gridCell(lat, lng float64) (latIdx, lngIdx int32) {
	return int32(math.Floor(lat / gridCellSize)), int32(math.Floor(lng / gridCellSize))
}

func cellKey(latIdx, lngIdx int32) uint64 {
	return uint64(uint32(latIdx))<<32 | uint64(uint32(lngIdx))
}

// buildNodeIndex indexes every node's coordinate into its grid cell.
func buildNodeIndex(nodes []Node) *nodeIndex {
	cells := make([]nodeCell, len(nodes))
	for i, n := range nodes {
		latIdx, lngIdx := gridCell(n.Lat, n.Lng)
		cells[i] = nodeCell{key: cellKey(latIdx, lngIdx), node: uint32(i)}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].key < cells[j].key })
	return &nodeIndex{cells: cells}
}

// cellRange returns the nodes filed under the given cell key via binary
// search over the sorted slice.
func (idx *nodeIndex) cellRange(key uint64) []nodeCell {
	lo := sort.Search(len(idx.cells), func(i int) bool { return idx.cells[i].key >= key })
	if lo >= len(idx.cells) || idx.cells[lo].key != key {
		return nil
	}
	hi := sort.Search(len(idx.cells), func(i int) bool { return idx.cells[i].key > key })
	return idx.cells[lo:hi]
}
