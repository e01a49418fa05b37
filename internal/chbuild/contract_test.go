package chbuild

import (
	"testing"

	"prefroute/pkg/cost"
)

func TestBuildDropsIsolatedNodeAndPreservesEdges(t *testing.T) {
	g, err := Build("../../testdata/testGraph", cost.Preference{0, 1, 0})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	// testGraph has 12 nodes but node 11 has no incident edges at all, so
	// it forms its own singleton component and is dropped.
	if g.NumNodes() != 11 {
		t.Errorf("NumNodes() = %d, want 11", g.NumNodes())
	}

	// Contraction only ever adds shortcut edges on top of the originals.
	if g.NumEdges() < 18 {
		t.Errorf("NumEdges() = %d, want at least 18", g.NumEdges())
	}

	for id, e := range g.Edges {
		if e.IsShortcut() {
			want := cost.Add(g.Edges[e.Repl1].Cost, g.Edges[e.Repl2].Cost)
			if e.Cost != want {
				t.Errorf("edge %d shortcut cost = %v, want %v", id, e.Cost, want)
			}
		}
	}
}
