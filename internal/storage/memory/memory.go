// Package memory implements the storage ports in memory, for tests and
// for running the server without a database file.
package memory

import (
	"context"
	"sync"
	"time"

	"smartbills/internal/core"
	"smartbills/internal/storage"
)

// Store is an in-memory implementation of the user, session and
// subscription stores.
type Store struct {
	mu            sync.Mutex
	users         []storage.User
	sessions      map[string]storage.Session
	subscriptions map[int64]record

	userIDCounter int64
	subIDCounter  int64
}

type record struct {
	sub     core.Subscription
	userID  int64
	deleted bool
}

var (
	_ storage.UserStore         = (*Store)(nil)
	_ storage.SessionStore      = (*Store)(nil)
	_ storage.SubscriptionStore = (*Store)(nil)
)

func New() *Store {
	return &Store{
		sessions:      make(map[string]storage.Session),
		subscriptions: make(map[int64]record),
	}
}

// --- UserStore ---

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return storage.User{}, storage.ErrEmailTaken
		}
	}

	s.userIDCounter++
	u := storage.User{
		ID:           s.userIDCounter,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return storage.User{}, storage.ErrNotFound
}

// --- SessionStore ---

func (s *Store) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = storage.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (storage.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return storage.Session{}, storage.ErrNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// --- SubscriptionStore ---

func (s *Store) CreateSubscription(ctx context.Context, userID int64, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subIDCounter++
	sub = sub.WithDefaults()
	sub.ID = s.subIDCounter
	s.subscriptions[sub.ID] = record{sub: sub, userID: userID}
	return sub, nil
}

func (s *Store) ListSubscriptions(ctx context.Context, userID int64) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []core.Subscription
	for id := int64(1); id <= s.subIDCounter; id++ {
		rec, ok := s.subscriptions[id]
		if ok && rec.userID == userID && !rec.deleted {
			subs = append(subs, rec.sub)
		}
	}
	return subs, nil
}

func (s *Store) GetSubscription(ctx context.Context, userID, id int64) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.subscriptions[id]
	if !ok || rec.userID != userID || rec.deleted {
		return core.Subscription{}, storage.ErrNotFound
	}
	return rec.sub, nil
}

func (s *Store) UpdateSubscription(ctx context.Context, userID, id int64, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.subscriptions[id]
	if !ok || rec.userID != userID || rec.deleted {
		return core.Subscription{}, storage.ErrNotFound
	}
	sub = sub.WithDefaults()
	sub.ID = id
	rec.sub = sub
	s.subscriptions[id] = rec
	return sub, nil
}

func (s *Store) DeleteSubscription(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.subscriptions[id]
	if !ok || rec.userID != userID || rec.deleted {
		return storage.ErrNotFound
	}
	rec.deleted = true
	s.subscriptions[id] = rec
	return nil
}
