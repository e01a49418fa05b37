package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"prefroute/pkg/cost"
)

var (
	// ErrUserExists is returned by Register when the username is taken.
	ErrUserExists = errors.New("user: username already registered")
	// ErrBadCredentials is returned by Login on a username/password mismatch.
	ErrBadCredentials = errors.New("user: invalid credentials")
	// ErrBadToken is returned by any routing-state operation given an
	// unrecognised bearer token.
	ErrBadToken = errors.New("user: invalid token")
	// ErrNoSuchRoute is returned by UpdateRoute/DeleteRoute for an unknown id.
	ErrNoSuchRoute = errors.New("user: no such route")
)

// Store is the in-memory user list: a single logical entity guarded by one
// mutex, rewritten to its JSON snapshot path after every mutation. The
// Graph is read-only and needs no such guard; this is the one piece of
// mutable shared state in the server.
type Store struct {
	mu      sync.Mutex
	path    string
	initial cost.Preference
	records []*Record
	byToken map[string]*Record
}

// NewStore loads the user list from path if it exists, or starts empty.
// initialPref is the preference assigned to every newly registered user
// and restored by Reset.
func NewStore(path string, initialPref cost.Preference) (*Store, error) {
	s := &Store{
		path:    path,
		initial: initialPref,
		byToken: make(map[string]*Record),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("user: parse %s: %w", path, err)
	}
	for _, rec := range s.records {
		s.byToken[rec.Token] = rec
	}
	return s, nil
}

// Register creates a new user record and returns its token, or
// ErrUserExists if the username is taken.
func (s *Store) Register(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.Username == username {
			return "", ErrUserExists
		}
	}

	rec := &Record{
		Username: username,
		Hash:     hashValue(password),
		Token:    hashValue(username),
		Alphas:   []cost.Preference{s.initial},
	}
	s.records = append(s.records, rec)
	s.byToken[rec.Token] = rec

	if err := s.persist(); err != nil {
		return "", err
	}
	return rec.Token, nil
}

// Login returns the token for a matching username/password pair, or
// ErrBadCredentials.
func (s *Store) Login(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := hashValue(password)
	for _, rec := range s.records {
		if rec.Username == username && rec.Hash == hash {
			return rec.Token, nil
		}
	}
	return "", ErrBadCredentials
}

func (s *Store) lookup(token string) (*Record, error) {
	rec, ok := s.byToken[token]
	if !ok {
		return nil, ErrBadToken
	}
	return rec, nil
}

// AddRoute assigns the next route id for the record owning token, appends
// it, persists, and returns the stored path (with its id filled in).
func (s *Store) AddRoute(token string, p Path) (Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(token)
	if err != nil {
		return Path{}, err
	}
	rec.Counter++
	p.ID = rec.Counter
	rec.Routes = append(rec.Routes, p)

	if err := s.persist(); err != nil {
		return Path{}, err
	}
	return p, nil
}

// UpdateRoute replaces the route with the given id, owned by token.
func (s *Store) UpdateRoute(token string, id int, p Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(token)
	if err != nil {
		return err
	}
	for i := range rec.Routes {
		if rec.Routes[i].ID == id {
			p.ID = id
			rec.Routes[i] = p
			return s.persist()
		}
	}
	return ErrNoSuchRoute
}

// DeleteRoute removes the route with the given id, owned by token.
func (s *Store) DeleteRoute(token string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(token)
	if err != nil {
		return err
	}
	for i := range rec.Routes {
		if rec.Routes[i].ID == id {
			rec.Routes = append(rec.Routes[:i], rec.Routes[i+1:]...)
			return s.persist()
		}
	}
	return ErrNoSuchRoute
}

// Routes returns a snapshot of the caller's saved routes.
func (s *Store) Routes(token string) ([]Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(token)
	if err != nil {
		return nil, err
	}
	out := make([]Path, len(rec.Routes))
	copy(out, rec.Routes)
	return out, nil
}

// SetAlphas replaces the caller's preference list outright.
func (s *Store) SetAlphas(token string, alphas []cost.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(token)
	if err != nil {
		return err
	}
	rec.Alphas = append([]cost.Preference(nil), alphas...)
	return s.persist()
}

// NewAlpha appends one preference to the caller's list.
func (s *Store) NewAlpha(token string, alpha cost.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(token)
	if err != nil {
		return err
	}
	rec.Alphas = append(rec.Alphas, alpha)
	return s.persist()
}

// Preferences returns a snapshot of the caller's preference list.
func (s *Store) Preferences(token string) ([]cost.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(token)
	if err != nil {
		return nil, err
	}
	out := make([]cost.Preference, len(rec.Alphas))
	copy(out, rec.Alphas)
	return out, nil
}

// Reset clears the caller's routes and preferences back to a freshly
// registered state.
func (s *Store) Reset(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(token)
	if err != nil {
		return err
	}
	rec.Routes = nil
	rec.Counter = 0
	rec.Alphas = []cost.Preference{s.initial}
	return s.persist()
}

// persist rewrites the full snapshot to s.path, atomically: write to a
// temp file in the same directory, then rename over the target. Must be
// called with s.mu held.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("user: marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".userdb-*.tmp")
	if err != nil {
		return fmt.Errorf("user: create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("user: write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("user: close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("user: rename snapshot into place: %w", err)
	}
	return nil
}
