package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"prefroute/internal/config"
	"prefroute/pkg/api"
	"prefroute/pkg/graph"
	"prefroute/pkg/user"
)

func main() {
	configPath := flag.String("config", "config.toml", "Path to config.toml")
	graphPath := flag.String("graph", "graph.txt", "Path to the CH graph text file")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	start := time.Now()

	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.Load(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	store, err := user.NewStore(cfg.DatabasePath, cfg.Preference())
	if err != nil {
		log.Fatalf("Failed to load user database: %v", err)
	}

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	addr := fmt.Sprintf(":%s", cfg.Port)
	srvCfg := api.DefaultConfig(addr)
	srvCfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(g, store, cfg.EdgeCostTags)
	srv := api.NewServer(srvCfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
