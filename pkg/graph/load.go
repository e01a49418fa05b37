package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"prefroute/pkg/cost"
)

// Sentinel errors distinguishing the three ways Load can fail, so callers
// can map them to distinct exit codes / HTTP statuses without string
// matching.
var (
	// ErrIO wraps an underlying filesystem error.
	ErrIO = fmt.Errorf("graph: io error")
	// ErrParse marks a malformed line (wrong token count, bad number).
	ErrParse = fmt.Errorf("graph: parse error")
	// ErrSchema marks a file whose declared shape doesn't match expectations
	// (cost dimension mismatch, node/edge count mismatch, out-of-range id).
	ErrSchema = fmt.Errorf("graph: schema error")
)

const (
	nodeTokens = 6 // id ? lat lng elevation level
	edgeTokens = 2 + cost.Dim + 2
)

// Load parses the text graph format described in the external interfaces
// and builds the upward CSR adjacency used by bidirectional search.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	next := func() (string, bool) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, true
		}
		return "", false
	}

	dimLine, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: missing dimension line", ErrParse)
	}
	dim, err := strconv.Atoi(dimLine)
	if err != nil {
		return nil, fmt.Errorf("%w: dimension %q: %v", ErrParse, dimLine, err)
	}
	if dim != cost.Dim {
		return nil, fmt.Errorf("%w: file declares dimension %d, built for %d", ErrSchema, dim, cost.Dim)
	}

	nLine, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: missing node count", ErrParse)
	}
	numNodes, err := strconv.Atoi(nLine)
	if err != nil || numNodes < 0 {
		return nil, fmt.Errorf("%w: node count %q: %v", ErrParse, nLine, err)
	}

	mLine, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: missing edge count", ErrParse)
	}
	numEdges, err := strconv.Atoi(mLine)
	if err != nil || numEdges < 0 {
		return nil, fmt.Errorf("%w: edge count %q: %v", ErrParse, mLine, err)
	}

	nodes := make([]Node, numNodes)
	seen := make([]bool, numNodes)
	for i := 0; i < numNodes; i++ {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d node lines, got %d", ErrSchema, numNodes, i)
		}
		fields := strings.Fields(line)
		if len(fields) != nodeTokens {
			return nil, fmt.Errorf("%w: node line %d has %d fields, want %d", ErrParse, i, len(fields), nodeTokens)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil || id < 0 || id >= numNodes {
			return nil, fmt.Errorf("%w: node id %q out of range [0,%d)", ErrSchema, fields[0], numNodes)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate node id %d", ErrSchema, id)
		}
		seen[id] = true

		lat, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d lat %q: %v", ErrParse, id, fields[2], err)
		}
		lng, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d lng %q: %v", ErrParse, id, fields[3], err)
		}
		elev, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d elevation %q: %v", ErrParse, id, fields[4], err)
		}
		level, err := strconv.ParseUint(fields[5], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d level %q: %v", ErrParse, id, fields[5], err)
		}
		nodes[id] = Node{Lat: lat, Lng: lng, Elevation: elev, Level: uint32(level)}
	}

	edges := make([]Edge, numEdges)
	for i := 0; i < numEdges; i++ {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d edge lines, got %d", ErrSchema, numEdges, i)
		}
		fields := strings.Fields(line)
		if len(fields) != edgeTokens {
			return nil, fmt.Errorf("%w: edge line %d has %d fields, want %d", ErrParse, i, len(fields), edgeTokens)
		}
		source, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil || int(source) >= numNodes {
			return nil, fmt.Errorf("%w: edge %d source %q invalid", ErrSchema, i, fields[0])
		}
		target, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil || int(target) >= numNodes {
			return nil, fmt.Errorf("%w: edge %d target %q invalid", ErrSchema, i, fields[1])
		}
		var c cost.Vector
		for d := 0; d < cost.Dim; d++ {
			v, err := strconv.ParseFloat(fields[2+d], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: edge %d cost[%d] %q: %v", ErrParse, i, d, fields[2+d], err)
			}
			c[d] = v
		}
		repl1, err := strconv.ParseInt(fields[2+cost.Dim], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: edge %d repl1 %q: %v", ErrParse, i, fields[2+cost.Dim], err)
		}
		repl2, err := strconv.ParseInt(fields[3+cost.Dim], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: edge %d repl2 %q: %v", ErrParse, i, fields[3+cost.Dim], err)
		}
		if (repl1 < 0) != (repl2 < 0) {
			return nil, fmt.Errorf("%w: edge %d has mismatched repl markers %d,%d", ErrSchema, i, repl1, repl2)
		}
		e := Edge{Source: uint32(source), Target: uint32(target), Cost: c, Repl1: noReplEdge, Repl2: noReplEdge}
		if repl1 >= 0 {
			if int(repl1) >= numEdges || int(repl2) >= numEdges {
				return nil, fmt.Errorf("%w: edge %d repl ids out of range", ErrSchema, i)
			}
			e.Repl1, e.Repl2 = uint32(repl1), uint32(repl2)
		}
		edges[i] = e
	}

	g := &Graph{Nodes: nodes, Edges: edges}
	buildAdjacency(g)
	g.nodeIdx = buildNodeIndex(g.Nodes)
	return g, nil
}

// buildAdjacency derives the upward out/in CSR views from the node levels
// and edge table via counting sort, mirroring the counting+prefix-sum
// construction used for the base-graph CSR.
func buildAdjacency(g *Graph) {
	n := uint32(len(g.Nodes))

	outFirst := make([]uint32, n+1)
	inFirst := make([]uint32, n+1)

	for _, e := range g.Edges {
		if g.Nodes[e.Target].Level >= g.Nodes[e.Source].Level {
			outFirst[e.Source+1]++
		}
		if g.Nodes[e.Source].Level >= g.Nodes[e.Target].Level {
			inFirst[e.Target+1]++
		}
	}
	for i := uint32(1); i <= n; i++ {
		outFirst[i] += outFirst[i-1]
		inFirst[i] += inFirst[i-1]
	}

	outAdj := make([]halfEdge, outFirst[n])
	inAdj := make([]halfEdge, inFirst[n])
	outCursor := append([]uint32(nil), outFirst...)
	inCursor := append([]uint32(nil), inFirst...)

	for id, e := range g.Edges {
		eid := uint32(id)
		if g.Nodes[e.Target].Level >= g.Nodes[e.Source].Level {
			outAdj[outCursor[e.Source]] = halfEdge{EdgeID: eid, Node: e.Target, Cost: e.Cost}
			outCursor[e.Source]++
		}
		if g.Nodes[e.Source].Level >= g.Nodes[e.Target].Level {
			inAdj[inCursor[e.Target]] = halfEdge{EdgeID: eid, Node: e.Source, Cost: e.Cost}
			inCursor[e.Target]++
		}
	}

	g.OutFirst, g.OutAdj = outFirst, outAdj
	g.InFirst, g.InAdj = inFirst, inAdj
}
