package user

import (
	"prefroute/pkg/cost"
	"prefroute/pkg/geo"
)

// Path is a saved route: the edge path returned by a search or a
// preference-find driver, together with the waypoints it was built from
// and, for a find_preference result, the per-segment splits.
type Path struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Waypoints  []geo.Coordinate  `json:"waypoints"`
	Nodes      []uint32          `json:"nodes"`
	Edges      []uint32          `json:"edges"`
	Cost       cost.Vector       `json:"cost"`
	Preference cost.Preference   `json:"preference"`
	ScalarCost float64           `json:"scalar_cost"`
	Splits     []int             `json:"splits,omitempty"`
	SplitPrefs []cost.Preference `json:"split_prefs,omitempty"`
}

// Record is one persisted user: credentials, the route-id counter, the
// caller's saved routes, and the preference list learned or set for them.
type Record struct {
	Username string  `json:"username"`
	Hash     string  `json:"hash"`
	Token    string  `json:"token"`
	Counter  int     `json:"counter"`
	Routes   []Path  `json:"driven_routes"`
	Alphas   []cost.Preference `json:"alphas"`
}
