package routing

import (
	"context"
	"errors"
	"testing"

	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
)

func loadFixture(t *testing.T, path string) (*graph.Graph, *QueryState) {
	t.Helper()
	g, err := graph.Load(path)
	if err != nil {
		t.Fatalf("graph.Load(%s) = %v", path, err)
	}
	return g, NewQueryState(g.NumNodes())
}

func edgesEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearchTestGraph(t *testing.T) {
	g, qs := loadFixture(t, "../../testdata/testGraph")
	alpha := cost.Preference{0, 1, 0}

	unreachable := []struct {
		source, target uint32
	}{
		{0, 4},
		{4, 11},
	}
	for _, tc := range unreachable {
		_, err := Search(context.Background(), g, qs, tc.source, tc.target, alpha)
		if !errors.Is(err, ErrUnreachable) {
			t.Errorf("Search(%d, %d) = %v, want ErrUnreachable", tc.source, tc.target, err)
		}
	}

	reachable := []struct {
		source, target uint32
		edges          []uint32
		scalar         float64
	}{
		{2, 5, []uint32{4, 7}, 2.0},
		{2, 10, []uint32{4, 7, 9, 12}, 4.0},
		{4, 10, []uint32{7, 9, 12}, 3.0},
	}
	for _, tc := range reachable {
		got, err := Search(context.Background(), g, qs, tc.source, tc.target, alpha)
		if err != nil {
			t.Fatalf("Search(%d, %d) = %v", tc.source, tc.target, err)
		}
		if !edgesEqual(got.Edges, tc.edges) {
			t.Errorf("Search(%d, %d).Edges = %v, want %v", tc.source, tc.target, got.Edges, tc.edges)
		}
		if diff := got.Scalar - tc.scalar; diff < -1e-9 || diff > 1e-9 {
			t.Errorf("Search(%d, %d).Scalar = %v, want %v", tc.source, tc.target, got.Scalar, tc.scalar)
		}
	}
}

func TestSearchConcTestGraph(t *testing.T) {
	g, qs := loadFixture(t, "../../testdata/concTestGraph")
	alpha := cost.Preference{0, 1, 0}

	cases := []struct {
		source, target uint32
		edges          []uint32
		scalar         float64
	}{
		{2, 5, []uint32{4, 7}, 2.0},
		{2, 10, []uint32{4, 21}, 4.0},
		{4, 10, []uint32{21}, 3.0},
	}
	for _, tc := range cases {
		got, err := Search(context.Background(), g, qs, tc.source, tc.target, alpha)
		if err != nil {
			t.Fatalf("Search(%d, %d) = %v", tc.source, tc.target, err)
		}
		if !edgesEqual(got.Edges, tc.edges) {
			t.Errorf("Search(%d, %d).Edges = %v, want %v", tc.source, tc.target, got.Edges, tc.edges)
		}
		if diff := got.Scalar - tc.scalar; diff < -1e-9 || diff > 1e-9 {
			t.Errorf("Search(%d, %d).Scalar = %v, want %v", tc.source, tc.target, got.Scalar, tc.scalar)
		}
	}
}

func TestAssemblePath(t *testing.T) {
	g, qs := loadFixture(t, "../../testdata/concTestGraph")
	alpha := cost.Preference{0, 1, 0}

	got, err := Search(context.Background(), g, qs, 4, 10, alpha)
	if err != nil {
		t.Fatalf("Search(4, 10) = %v", err)
	}

	nodes := Assemble(g, 4, got.Edges)
	want := []uint32{4, 5, 8, 10}
	if !edgesEqual(nodes, want) {
		t.Errorf("Assemble() = %v, want %v", nodes, want)
	}
}
