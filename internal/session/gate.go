// Package session holds the client-side session gate: a two-state
// machine deciding whether protected store calls may be attempted, plus
// the persistence for the token it guards.
package session

import (
	"log/slog"
	"sync"
)

// State is the gate's position.
type State string

const (
	// Anonymous means no token is held; protected calls must not be
	// attempted.
	Anonymous State = "anonymous"
	// Authenticated means a token is held. The token is trusted, not
	// verified; the first rejected call drops the gate back to
	// Anonymous.
	Authenticated State = "authenticated"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	// Load returns the stored token, or "" when none exists.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Gate owns the session token. Only the gate writes it; everything else
// reads through Token(). Safe for concurrent use.
type Gate struct {
	mu    sync.Mutex
	token string
	store TokenStore
}

// NewGate builds a gate and optimistically resumes a previously stored
// token without verifying it: a stale token surfaces as a 401 on the
// first protected call, which clears the gate.
func NewGate(store TokenStore) (*Gate, error) {
	g := &Gate{store: store}
	if store != nil {
		token, err := store.Load()
		if err != nil {
			return nil, err
		}
		g.token = token
		if token != "" {
			slog.Debug("Resumed stored session", "component", "session")
		}
	}
	return g, nil
}

// State reports the gate's current position.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == "" {
		return Anonymous
	}
	return Authenticated
}

// Token returns the held token and whether one is held.
func (g *Gate) Token() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token, g.token != ""
}

// Authenticate stores the token issued by a successful login or
// registration, moving the gate to Authenticated.
func (g *Gate) Authenticate(token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.token = token
	if g.store != nil {
		if err := g.store.Save(token); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops the token, moving the gate to Anonymous. Called on logout
// and whenever the store reports an authentication failure.
func (g *Gate) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.token = ""
	if g.store != nil {
		if err := g.store.Clear(); err != nil {
			return err
		}
	}
	return nil
}
