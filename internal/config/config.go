// Package config loads the server's TOML configuration file. There is no
// package-level singleton: Load returns a value that main threads through
// every constructor that needs it.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"prefroute/pkg/cost"
)

// Config is the full set of recognised config.toml keys.
type Config struct {
	Port          string    `toml:"port"`
	DatabasePath  string    `toml:"database_path"`
	EdgeCostTags  []string  `toml:"edge_cost_tags"`
	InitialPref   []float64 `toml:"initial_pref"`
}

// Load reads and validates the TOML file at path. A missing file, a parse
// error, or a schema mismatch (wrong tag/pref count, preference not a
// simplex point) are all fatal conditions the caller should report and
// exit on — this function never partially succeeds.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	if len(cfg.EdgeCostTags) != cost.Dim {
		return Config{}, fmt.Errorf("config: edge_cost_tags has %d entries, want %d", len(cfg.EdgeCostTags), cost.Dim)
	}
	if len(cfg.InitialPref) != cost.Dim {
		return Config{}, fmt.Errorf("config: initial_pref has %d entries, want %d", len(cfg.InitialPref), cost.Dim)
	}

	pref := cfg.Preference()
	if !pref.Valid(1e-9) {
		return Config{}, fmt.Errorf("config: initial_pref %v is not a valid simplex preference", cfg.InitialPref)
	}

	return cfg, nil
}

// Preference converts InitialPref into a cost.Preference.
func (c Config) Preference() cost.Preference {
	var p cost.Preference
	copy(p[:], c.InitialPref)
	return p
}
