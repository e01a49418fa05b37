package graph

import (
	"testing"

	"prefroute/pkg/geo"
)

func TestClosestNode(t *testing.T) {
	g := mustLoad(t, "../../testdata/testGraph")

	got, ok := g.ClosestNode(geo.Coordinate{Lat: 1.05, Lng: 103.05})
	if !ok {
		t.Fatal("ClosestNode() reported no nodes")
	}
	if got != 5 {
		t.Errorf("ClosestNode() = %d, want 5", got)
	}
}
