package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"prefroute/pkg/cost"
	"prefroute/pkg/graph"
	"prefroute/pkg/user"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	g, err := graph.Load("../../testdata/testGraph")
	if err != nil {
		t.Fatalf("graph.Load() = %v", err)
	}
	store, err := user.NewStore(filepath.Join(t.TempDir(), "users.json"), cost.Uniform())
	if err != nil {
		t.Fatalf("user.NewStore() = %v", err)
	}
	return NewHandlers(g, store, []string{"distance", "time", "discomfort"})
}

func doRequest(h http.HandlerFunc, method, target string, body []byte, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func registerTestUser(t *testing.T, h *Handlers) string {
	t.Helper()
	body, _ := json.Marshal(CredentialsRequest{Username: "alice", Password: "hunter2"})
	w := doRequest(h.HandleRegister, "POST", "/register", body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("HandleRegister() status = %d, body: %s", w.Code, w.Body.String())
	}
	var resp TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	return resp.Token
}

func TestHandleRegisterAndLogin(t *testing.T) {
	h := newTestHandlers(t)
	token := registerTestUser(t, h)
	if token == "" {
		t.Fatal("empty token from register")
	}

	body, _ := json.Marshal(CredentialsRequest{Username: "alice", Password: "hunter2"})
	w := doRequest(h.HandleLogin, "POST", "/login", body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("HandleLogin() status = %d, body: %s", w.Code, w.Body.String())
	}

	bad, _ := json.Marshal(CredentialsRequest{Username: "alice", Password: "wrong"})
	w = doRequest(h.HandleLogin, "POST", "/login", bad, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("HandleLogin() with wrong password status = %d, want 401", w.Code)
	}
}

func TestHandleClosest(t *testing.T) {
	h := newTestHandlers(t)
	w := doRequest(h.HandleClosest, "GET", "/routing/closest?lat=0&lng=0", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("HandleClosest() status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp ClosestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode closest response: %v", err)
	}
}

func TestHandleFindPathUnreachable(t *testing.T) {
	h := newTestHandlers(t)
	token := registerTestUser(t, h)

	n0 := h.graph.Nodes[0].Coordinate()
	n4 := h.graph.Nodes[4].Coordinate()
	req := RouteRequest{
		Waypoints: []CoordinateJSON{{Lat: n0.Lat, Lng: n0.Lng}, {Lat: n4.Lat, Lng: n4.Lng}},
		Alpha:     []float64{0, 1, 0},
	}
	body, _ := json.Marshal(req)

	w := doRequest(requireAuth(h.HandleFindPath, h.store), "POST", "/routing/fsp", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("HandleFindPath() status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp PathFoundResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode path response: %v", err)
	}
	if resp.Path != nil {
		t.Errorf("Path = %v, want nil (unreachable)", resp.Path)
	}
}

func TestHandleFindPathReachable(t *testing.T) {
	h := newTestHandlers(t)
	token := registerTestUser(t, h)

	n2 := h.graph.Nodes[2].Coordinate()
	n5 := h.graph.Nodes[5].Coordinate()
	req := RouteRequest{
		Waypoints: []CoordinateJSON{{Lat: n2.Lat, Lng: n2.Lng}, {Lat: n5.Lat, Lng: n5.Lng}},
		Alpha:     []float64{0, 1, 0},
	}
	body, _ := json.Marshal(req)

	w := doRequest(requireAuth(h.HandleFindPath, h.store), "POST", "/routing/fsp", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("HandleFindPath() status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp PathFoundResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode path response: %v", err)
	}
	if resp.Path == nil {
		t.Fatal("Path = nil, want a found path")
	}
	want := []uint32{4, 7}
	if len(resp.Path.Edges) != len(want) || resp.Path.Edges[0] != want[0] || resp.Path.Edges[1] != want[1] {
		t.Errorf("Path.Edges = %v, want %v", resp.Path.Edges, want)
	}
}

func TestHandleRoutesRequiresAuth(t *testing.T) {
	h := newTestHandlers(t)
	w := doRequest(requireAuth(h.HandleRoutes, h.store), "GET", "/routing/routes", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("HandleRoutes() without token status = %d, want 401", w.Code)
	}
}

func TestHandlePreferenceRoundTrip(t *testing.T) {
	h := newTestHandlers(t)
	token := registerTestUser(t, h)

	body, _ := json.Marshal(PreferenceRequest{Alphas: [][]float64{{1, 0, 0}}})
	w := doRequest(requireAuth(h.HandleSetPreference, h.store), "POST", "/routing/preference", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("HandleSetPreference() status = %d, body: %s", w.Code, w.Body.String())
	}

	w = doRequest(requireAuth(h.HandleGetPreference, h.store), "GET", "/routing/preference", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("HandleGetPreference() status = %d, body: %s", w.Code, w.Body.String())
	}
	var resp PreferenceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode preference response: %v", err)
	}
	if len(resp.Alphas) != 1 || resp.Alphas[0][0] != 1 {
		t.Errorf("Alphas = %v, want [[1 0 0]]", resp.Alphas)
	}
}
