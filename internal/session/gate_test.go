package session

import (
	"errors"
	"path/filepath"
	"testing"
)

type memTokenStore struct {
	token   string
	loadErr error
}

func (m *memTokenStore) Load() (string, error) { return m.token, m.loadErr }
func (m *memTokenStore) Save(t string) error   { m.token = t; return nil }
func (m *memTokenStore) Clear() error          { m.token = ""; return nil }

func TestGateStartsAnonymous(t *testing.T) {
	g, err := NewGate(&memTokenStore{})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if g.State() != Anonymous {
		t.Errorf("State() = %q, want %q", g.State(), Anonymous)
	}
	if _, ok := g.Token(); ok {
		t.Error("Token() reported a token on a fresh gate")
	}
}

func TestGateResumesStoredToken(t *testing.T) {
	g, err := NewGate(&memTokenStore{token: "stored-token"})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if g.State() != Authenticated {
		t.Errorf("State() = %q, want %q", g.State(), Authenticated)
	}
	token, ok := g.Token()
	if !ok || token != "stored-token" {
		t.Errorf("Token() = %q, %v, want %q, true", token, ok, "stored-token")
	}
}

func TestGateLoadErrorPropagates(t *testing.T) {
	wantErr := errors.New("disk gone")
	if _, err := NewGate(&memTokenStore{loadErr: wantErr}); !errors.Is(err, wantErr) {
		t.Errorf("NewGate error = %v, want %v", err, wantErr)
	}
}

func TestGateAuthenticateThenClear(t *testing.T) {
	store := &memTokenStore{}
	g, err := NewGate(store)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	if err := g.Authenticate("abc123"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if g.State() != Authenticated {
		t.Fatalf("State() = %q after Authenticate, want %q", g.State(), Authenticated)
	}
	if store.token != "abc123" {
		t.Errorf("store token = %q, want %q", store.token, "abc123")
	}

	if err := g.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if g.State() != Anonymous {
		t.Errorf("State() = %q after Clear, want %q", g.State(), Anonymous)
	}
	if store.token != "" {
		t.Errorf("store token = %q after Clear, want empty", store.token)
	}
}

func TestGateNilStore(t *testing.T) {
	g, err := NewGate(nil)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if err := g.Authenticate("tok"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := g.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileTokenStore(path)

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if token != "" {
		t.Errorf("Load on missing file = %q, want empty", token)
	}

	if err := store.Save("file-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	token, err = store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if token != "file-token" {
		t.Errorf("Load = %q, want %q", token, "file-token")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear on missing file: %v", err)
	}
	token, _ = store.Load()
	if token != "" {
		t.Errorf("Load after Clear = %q, want empty", token)
	}
}
