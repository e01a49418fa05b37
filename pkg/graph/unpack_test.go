package graph

import "testing"

func TestUnpackBaseEdge(t *testing.T) {
	g := mustLoad(t, "../../testdata/concTestGraph")

	got := g.Unpack(4) // base edge 2->4
	want := []uint32{4}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("Unpack(4) = %v, want %v", got, want)
	}
}

func TestUnpackShortcutChain(t *testing.T) {
	g := mustLoad(t, "../../testdata/concTestGraph")

	// Edge 21 is a shortcut over (7, 20), where 20 is itself a shortcut
	// over (9, 12): 4 -7-> 5 -9-> 8 -12-> 10.
	got := g.Unpack(21)
	want := []uint32{5, 8, 10}
	if len(got) != len(want) {
		t.Fatalf("Unpack(21) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Unpack(21)[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
