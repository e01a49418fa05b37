package user

import (
	"errors"
	"path/filepath"
	"testing"

	"prefroute/pkg/cost"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := NewStore(path, cost.Uniform())
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestStore(t)

	token, err := s.Register("alice", "hunter2")
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if token == "" {
		t.Fatal("Register() returned empty token")
	}

	if _, err := s.Register("alice", "other"); !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register() = %v, want ErrUserExists", err)
	}

	got, err := s.Login("alice", "hunter2")
	if err != nil {
		t.Fatalf("Login() = %v", err)
	}
	if got != token {
		t.Errorf("Login() token = %s, want %s", got, token)
	}

	if _, err := s.Login("alice", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Login() with wrong password = %v, want ErrBadCredentials", err)
	}
}

func TestRoutesLifecycle(t *testing.T) {
	s := newTestStore(t)
	token, err := s.Register("bob", "pw")
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	p1, err := s.AddRoute(token, Path{Name: "commute"})
	if err != nil {
		t.Fatalf("AddRoute() = %v", err)
	}
	if p1.ID != 1 {
		t.Errorf("first route id = %d, want 1", p1.ID)
	}

	p2, err := s.AddRoute(token, Path{Name: "errand"})
	if err != nil {
		t.Fatalf("AddRoute() = %v", err)
	}
	if p2.ID != 2 {
		t.Errorf("second route id = %d, want 2", p2.ID)
	}

	routes, err := s.Routes(token)
	if err != nil {
		t.Fatalf("Routes() = %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("Routes() length = %d, want 2", len(routes))
	}

	p2.Name = "renamed"
	if err := s.UpdateRoute(token, p2.ID, p2); err != nil {
		t.Fatalf("UpdateRoute() = %v", err)
	}
	routes, _ = s.Routes(token)
	if routes[1].Name != "renamed" {
		t.Errorf("route 2 name = %s, want renamed", routes[1].Name)
	}

	if err := s.DeleteRoute(token, p1.ID); err != nil {
		t.Fatalf("DeleteRoute() = %v", err)
	}
	routes, _ = s.Routes(token)
	if len(routes) != 1 || routes[0].ID != p2.ID {
		t.Errorf("Routes() after delete = %v, want only route %d", routes, p2.ID)
	}

	if err := s.DeleteRoute(token, 99); !errors.Is(err, ErrNoSuchRoute) {
		t.Errorf("DeleteRoute(99) = %v, want ErrNoSuchRoute", err)
	}
}

func TestResetMatchesFreshlyRegistered(t *testing.T) {
	s := newTestStore(t)
	token, err := s.Register("carol", "pw")
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	if _, err := s.AddRoute(token, Path{Name: "trip"}); err != nil {
		t.Fatalf("AddRoute() = %v", err)
	}
	if err := s.NewAlpha(token, cost.Preference{1, 0, 0}); err != nil {
		t.Fatalf("NewAlpha() = %v", err)
	}

	if err := s.Reset(token); err != nil {
		t.Fatalf("Reset() = %v", err)
	}

	routes, err := s.Routes(token)
	if err != nil {
		t.Fatalf("Routes() = %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("Routes() after reset = %v, want empty", routes)
	}

	prefs, err := s.Preferences(token)
	if err != nil {
		t.Fatalf("Preferences() = %v", err)
	}
	if len(prefs) != 1 || prefs[0] != cost.Uniform() {
		t.Errorf("Preferences() after reset = %v, want [%v]", prefs, cost.Uniform())
	}
}

func TestPersistenceSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := NewStore(path, cost.Uniform())
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}
	token, err := s.Register("dave", "pw")
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	reloaded, err := NewStore(path, cost.Uniform())
	if err != nil {
		t.Fatalf("NewStore() reload = %v", err)
	}
	if _, err := reloaded.Preferences(token); err != nil {
		t.Errorf("reloaded store lost token: %v", err)
	}
}
