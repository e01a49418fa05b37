package graph

import (
	"bufio"
	"fmt"
	"os"

	"prefroute/pkg/cost"
)

// Save writes g to path in the text graph format Load reads back, using a
// write-to-temp-then-rename so a crash mid-write never leaves a half-written
// graph file behind.
func Save(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrIO, err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# graph")
	fmt.Fprintln(w, "# generated by prefroute")
	fmt.Fprintln(w, "#")
	fmt.Fprintln(w)
	fmt.Fprintln(w, cost.Dim)
	fmt.Fprintln(w, len(g.Nodes))
	fmt.Fprintln(w, len(g.Edges))

	for id, n := range g.Nodes {
		fmt.Fprintf(w, "%d 0 %v %v %v %d\n", id, n.Lat, n.Lng, n.Elevation, n.Level)
	}
	for _, e := range g.Edges {
		repl1, repl2 := int64(-1), int64(-1)
		if e.IsShortcut() {
			repl1, repl2 = int64(e.Repl1), int64(e.Repl2)
		}
		fmt.Fprintf(w, "%d %d", e.Source, e.Target)
		for _, c := range e.Cost {
			fmt.Fprintf(w, " %v", c)
		}
		fmt.Fprintf(w, " %d %d\n", repl1, repl2)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrIO, err)
	}
	return nil
}
