package graph

import (
	"reflect"
	"strings"
	"testing"
)

func mustLoad(t *testing.T, path string) *Graph {
	t.Helper()
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) = %v", path, err)
	}
	return g
}

func TestLoadTestGraphShape(t *testing.T) {
	g := mustLoad(t, "../../testdata/testGraph")

	if got := g.NumNodes(); got != 12 {
		t.Fatalf("NumNodes() = %d, want 12", got)
	}
	if got := g.NumEdges(); got != 18 {
		t.Fatalf("NumEdges() = %d, want 18", got)
	}

	wantOut := []uint32{0, 0, 2, 6, 7, 9, 10, 12, 13, 15, 17, 18, 18}
	if !reflect.DeepEqual(g.OutFirst, wantOut) {
		t.Errorf("OutFirst = %v, want %v", g.OutFirst, wantOut)
	}

	wantIn := []uint32{0, 1, 2, 3, 4, 6, 8, 11, 12, 14, 16, 18, 18}
	if !reflect.DeepEqual(g.InFirst, wantIn) {
		t.Errorf("InFirst = %v, want %v", g.InFirst, wantIn)
	}
}

func TestLoadRejectsDimensionMismatch(t *testing.T) {
	data := "#\n#\n#\n\n2\n1\n0\n0 0 0 0 0 0\n"
	_, err := parse(strings.NewReader(data))
	if err == nil {
		t.Fatal("expected schema error for dimension mismatch, got nil")
	}
}
