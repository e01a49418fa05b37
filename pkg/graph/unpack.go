package graph

// maxUnpackDepth bounds the shortcut-unpacking stack so a malformed or
// cyclic replacement chain can't run away; real hierarchies bottom out in a
// handful of levels.
const maxUnpackDepth = 256

// Unpack returns the sequence of nodes traversed by edge id, expanding
// shortcut pairs recursively. A base edge contributes just its target;
// callers assembling a full path prepend the path's starting node
// themselves.
//
// Shortcut unpacking forms a DAG, not a tree: repl1/repl2 can themselves be
// shortcuts over further shortcuts. Expansion is iterative (explicit stack)
// so a long hierarchy chain can't blow the Go stack.
func (g *Graph) Unpack(edgeID uint32) []uint32 {
	type frame struct {
		edge  uint32
		depth int
	}

	var out []uint32
	stack := []frame{{edgeID, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > maxUnpackDepth {
			continue
		}

		e := g.Edges[f.edge]
		if !e.IsShortcut() {
			out = append(out, e.Target)
			continue
		}

		// Push in reverse so repl1 is popped (and expanded) before repl2.
		stack = append(stack, frame{e.Repl2, f.depth + 1})
		stack = append(stack, frame{e.Repl1, f.depth + 1})
	}
	return out
}
