package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"prefroute/pkg/cost"
	"prefroute/pkg/geo"
	"prefroute/pkg/preference"
	"prefroute/pkg/routing"
	"prefroute/pkg/user"
)

// HandleRegister handles POST /register.
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	token, err := h.store.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrUserExists) {
			writeError(w, http.StatusConflict, "username_taken", "username")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// HandleLogin handles POST /login.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	token, err := h.store.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// HandleClosest handles GET /routing/closest?lat=...&lng=....
func (h *Handlers) HandleClosest(w http.ResponseWriter, r *http.Request) {
	lat, ok1 := queryFloat(r, "lat")
	lng, ok2 := queryFloat(r, "lng")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	node, ok := h.graph.ClosestNode(geo.Coordinate{Lat: lat, Lng: lng})
	if !ok {
		writeError(w, http.StatusNotFound, "empty_graph", "")
		return
	}

	coord := h.graph.Nodes[node].Coordinate()
	writeJSON(w, http.StatusOK, ClosestResponse{
		Node:       node,
		Coordinate: CoordinateJSON{Lat: coord.Lat, Lng: coord.Lng},
	})
}

// HandleFindPath handles POST /routing/fsp.
func (h *Handlers) HandleFindPath(w http.ResponseWriter, r *http.Request) {
	req, alpha, ok := h.decodeRouteRequest(w, r)
	if !ok {
		return
	}

	waypoints, ok := h.resolveWaypoints(w, req.Waypoints)
	if !ok {
		return
	}

	qs := h.checkoutQueryState()
	defer h.releaseQueryState(qs)

	leg, err := routing.FindPath(r.Context(), h.graph, qs, waypoints, alpha)
	if errors.Is(err, routing.ErrUnreachable) {
		writeJSON(w, http.StatusOK, PathFoundResponse{Path: nil})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	nodes := routing.Assemble(h.graph, waypoints[0], leg.Edges)
	record := user.Path{
		Waypoints:  coordinatesFromJSON(req.Waypoints),
		Nodes:      nodes,
		Edges:      leg.Edges,
		Cost:       leg.Cost,
		Preference: alpha,
		ScalarCost: leg.Scalar,
	}
	saved, err := h.store.AddRoute(tokenFromContext(r.Context()), record)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PathFoundResponse{Path: &PathJSON{
		ID:         saved.ID,
		Nodes:      nodes,
		Edges:      leg.Edges,
		Cost:       vectorToSlice(leg.Cost),
		Alpha:      preferenceToSlice(alpha),
		Tags:       h.tags,
		ScalarCost: leg.Scalar,
	}})
}

// HandleFindPreference handles POST /routing/find_preference.
func (h *Handlers) HandleFindPreference(w http.ResponseWriter, r *http.Request) {
	req, alpha, ok := h.decodeRouteRequest(w, r)
	if !ok {
		return
	}

	waypoints, ok := h.resolveWaypoints(w, req.Waypoints)
	if !ok {
		return
	}

	qs := h.checkoutQueryState()
	defer h.releaseQueryState(qs)

	leg, err := routing.FindPath(r.Context(), h.graph, qs, waypoints, alpha)
	if errors.Is(err, routing.ErrUnreachable) {
		writeJSON(w, http.StatusOK, PathFoundResponse{Path: nil})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	nodes := routing.Assemble(h.graph, waypoints[0], leg.Edges)
	// FindPreference pairs edges with the unpacked node sequence one to one,
	// so expand shortcuts into their base edges first.
	baseEdges := make([]uint32, 0, len(nodes)-1)
	for _, e := range leg.Edges {
		stack := []uint32{e}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if edge := h.graph.Edges[id]; edge.IsShortcut() {
				stack = append(stack, edge.Repl2, edge.Repl1)
			} else {
				baseEdges = append(baseEdges, id)
			}
		}
	}
	splits, err := preference.FindPreference(r.Context(), h.graph, qs, nodes, baseEdges)
	if err != nil {
		// Totality per spec: infeasible preference is a success response
		// with a null preference, not an error — reflected here as an
		// empty split list alongside the found path.
		writeJSON(w, http.StatusOK, PathFoundResponse{Path: &PathJSON{
			Nodes:      nodes,
			Edges:      leg.Edges,
			Cost:       vectorToSlice(leg.Cost),
			Tags:       h.tags,
			ScalarCost: leg.Scalar,
		}})
		return
	}

	splitsJSON := make([]SplitJSON, len(splits))
	cuts := make([]int, len(splits))
	splitPrefs := make([]cost.Preference, len(splits))
	for i, s := range splits {
		splitsJSON[i] = SplitJSON{Cut: s.Cut, Alpha: preferenceToSlice(s.Alpha)}
		cuts[i] = s.Cut
		splitPrefs[i] = s.Alpha
	}

	record := user.Path{
		Waypoints:  coordinatesFromJSON(req.Waypoints),
		Nodes:      nodes,
		Edges:      leg.Edges,
		Cost:       leg.Cost,
		Preference: splits[0].Alpha,
		ScalarCost: leg.Scalar,
		Splits:     cuts,
		SplitPrefs: splitPrefs,
	}
	saved, err := h.store.AddRoute(tokenFromContext(r.Context()), record)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PathFoundResponse{Path: &PathJSON{
		ID:         saved.ID,
		Nodes:      nodes,
		Edges:      leg.Edges,
		Cost:       vectorToSlice(leg.Cost),
		Alpha:      preferenceToSlice(splits[0].Alpha),
		Tags:       h.tags,
		ScalarCost: leg.Scalar,
		Splits:     splitsJSON,
	}})
}

// HandleGetPreference handles GET /routing/preference.
func (h *Handlers) HandleGetPreference(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())
	alphas, err := h.store.Preferences(token)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PreferenceResponse{Alphas: preferencesToSlices(alphas), Tags: h.tags})
}

// HandleSetPreference handles POST /routing/preference.
func (h *Handlers) HandleSetPreference(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())

	var req PreferenceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	alphas := make([]cost.Preference, len(req.Alphas))
	for i, raw := range req.Alphas {
		p, ok := sliceToPreference(raw)
		if !ok || !p.Valid(1e-9) {
			writeError(w, http.StatusBadRequest, "invalid_preference", "")
			return
		}
		alphas[i] = p
	}

	if err := h.store.SetAlphas(token, alphas); err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PreferenceResponse{Alphas: preferencesToSlices(alphas), Tags: h.tags})
}

// HandleRoutes handles GET /routing/routes.
func (h *Handlers) HandleRoutes(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())
	routes, err := h.store.Routes(token)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	out := make([]RouteJSON, len(routes))
	for i, p := range routes {
		waypoints := make([]CoordinateJSON, len(p.Waypoints))
		for j, c := range p.Waypoints {
			waypoints[j] = CoordinateJSON{Lat: c.Lat, Lng: c.Lng}
		}
		out[i] = RouteJSON{
			ID:         p.ID,
			Name:       p.Name,
			Waypoints:  waypoints,
			Nodes:      p.Nodes,
			Edges:      p.Edges,
			Cost:       vectorToSlice(p.Cost),
			Alpha:      preferenceToSlice(p.Preference),
			ScalarCost: p.ScalarCost,
		}
	}
	writeJSON(w, http.StatusOK, RoutesResponse{Routes: out, Tags: h.tags})
}

// HandleReset handles POST /routing/reset.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())
	if err := h.store.Reset(token); err != nil {
		writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) decodeRouteRequest(w http.ResponseWriter, r *http.Request) (RouteRequest, cost.Preference, bool) {
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 65536)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return RouteRequest{}, cost.Preference{}, false
	}
	if len(req.Waypoints) < 2 {
		writeError(w, http.StatusBadRequest, "invalid_request", "waypoints")
		return RouteRequest{}, cost.Preference{}, false
	}
	alpha, ok := sliceToPreference(req.Alpha)
	if !ok || !alpha.Valid(1e-9) {
		writeError(w, http.StatusBadRequest, "invalid_preference", "alpha")
		return RouteRequest{}, cost.Preference{}, false
	}
	return req, alpha, true
}

func coordinatesFromJSON(raw []CoordinateJSON) []geo.Coordinate {
	out := make([]geo.Coordinate, len(raw))
	for i, c := range raw {
		out[i] = geo.Coordinate{Lat: c.Lat, Lng: c.Lng}
	}
	return out
}

func (h *Handlers) resolveWaypoints(w http.ResponseWriter, raw []CoordinateJSON) ([]uint32, bool) {
	waypoints := make([]uint32, len(raw))
	for i, c := range raw {
		node, ok := h.graph.ClosestNode(geo.Coordinate{Lat: c.Lat, Lng: c.Lng})
		if !ok {
			writeError(w, http.StatusNotFound, "empty_graph", "")
			return nil, false
		}
		waypoints[i] = node
	}
	return waypoints, true
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrBadToken) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	if errors.Is(err, user.ErrNoSuchRoute) {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "")
}

func preferencesToSlices(alphas []cost.Preference) [][]float64 {
	out := make([][]float64, len(alphas))
	for i, a := range alphas {
		out[i] = preferenceToSlice(a)
	}
	return out
}

func queryFloat(r *http.Request, key string) (float64, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
