package graph

import "prefroute/pkg/geo"

// maxRingRadius bounds the ring expansion before ClosestNode falls back to
// a full linear scan. gridCellSize is 0.1 degrees, so this covers roughly
// a 20x20 degree window around the query point — far larger than any
// single road network's extent in practice.
const maxRingRadius = 100

// ClosestNode returns the node minimising squared planar distance to point,
// found by an expanding ring search over a spatial grid index rather than a
// scan of every node: query entry points are resolved once per request, off
// the hot path of the search itself, but a large graph still deserves
// sub-linear lookup.
func (g *Graph) ClosestNode(point geo.Coordinate) (uint32, bool) {
	if len(g.Nodes) == 0 {
		return 0, false
	}
	if g.nodeIdx == nil {
		g.nodeIdx = buildNodeIndex(g.Nodes)
	}

	centerLat, centerLng := gridCell(point.Lat, point.Lng)
	best := uint32(0)
	bestDist := squaredDist(g.Nodes[0].Coordinate(), point)
	found := false

	for radius := int32(0); radius <= maxRingRadius; radius++ {
		// Once a candidate is found, any cell at this radius is at least
		// (radius-1)*gridCellSize away; stop once that floor exceeds the
		// best distance found so far.
		if found {
			floor := float64(radius-1) * gridCellSize
			if floor >= 0 && floor*floor >= bestDist {
				break
			}
		}

		for dLat := -radius; dLat <= radius; dLat++ {
			for dLng := -radius; dLng <= radius; dLng++ {
				if radius > 0 && dLat != -radius && dLat != radius && dLng != -radius && dLng != radius {
					continue // interior of the square already visited at a smaller radius
				}
				for _, nc := range g.nodeIdx.cellRange(cellKey(centerLat+dLat, centerLng+dLng)) {
					d := squaredDist(g.Nodes[nc.node].Coordinate(), point)
					if !found || d < bestDist {
						bestDist = d
						best = nc.node
						found = true
					}
				}
			}
		}
	}

	if found {
		return best, true
	}

	// Fallback: the ring search found nothing within maxRingRadius (an
	// extreme coordinate spread). Correctness over speed in that rare case.
	best = 0
	bestDist = squaredDist(g.Nodes[0].Coordinate(), point)
	for i := 1; i < len(g.Nodes); i++ {
		d := squaredDist(g.Nodes[i].Coordinate(), point)
		if d < bestDist {
			bestDist = d
			best = uint32(i)
		}
	}
	return best, true
}

func squaredDist(a, b geo.Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}
