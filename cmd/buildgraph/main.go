// Command buildgraph contracts an uncontracted edge-list graph file into
// the leveled, shortcut-annotated text format the server loads at request
// time. This is the one preprocessing step in the system; the server never
// contracts a graph itself.
package main

import (
	"flag"
	"log"
	"strconv"
	"strings"
	"time"

	"prefroute/internal/chbuild"
	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
)

func main() {
	inPath := flag.String("in", "", "Path to the uncontracted graph text file")
	outPath := flag.String("out", "graph.txt", "Path to write the contracted graph text file")
	refPref := flag.String("ref-pref", "", "Comma-separated reference preference used to order contraction (defaults to uniform)")
	flag.Parse()

	if *inPath == "" {
		log.Fatal("missing -in")
	}

	alpha := cost.Uniform()
	if *refPref != "" {
		p, err := parsePreference(*refPref)
		if err != nil {
			log.Fatalf("invalid -ref-pref: %v", err)
		}
		alpha = p
	}

	start := time.Now()
	g, err := chbuild.Build(*inPath, alpha)
	if err != nil {
		log.Fatalf("contraction failed: %v", err)
	}
	log.Printf("Contracted %d nodes, %d edges in %s", g.NumNodes(), g.NumEdges(), time.Since(start).Round(time.Millisecond))

	if err := graph.Save(*outPath, g); err != nil {
		log.Fatalf("failed to write %s: %v", *outPath, err)
	}
	log.Printf("Wrote %s", *outPath)
}

func parsePreference(s string) (cost.Preference, error) {
	parts := strings.Split(s, ",")
	var p cost.Preference
	if len(parts) != cost.Dim {
		return p, graph.ErrSchema
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return p, err
		}
		p[i] = v
	}
	return p, nil
}
