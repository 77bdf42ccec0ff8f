package storage

import (
	"context"
	"errors"
	"time"

	"smartbills/internal/core"
)

var (
	// ErrNotFound is returned when the requested row does not exist or
	// belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
)

type (
	// User is an account row.
	User struct {
		ID           int64
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Session is a server-side session row keyed by its opaque token.
	Session struct {
		Token     string
		UserID    int64
		ExpiresAt time.Time
		CreatedAt time.Time
	}

	// PendingSync identifies a subscription row awaiting sheet backup.
	PendingSync struct {
		ID      int64
		Version int64
	}
)

// Ports for the stores the services and handlers depend on.
type (
	UserStore interface {
		CreateUser(ctx context.Context, email, passwordHash string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
	}

	SessionStore interface {
		CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
		GetSession(ctx context.Context, token string) (Session, error)
		DeleteSession(ctx context.Context, token string) error
		DeleteExpiredSessions(ctx context.Context) error
	}

	SubscriptionStore interface {
		CreateSubscription(ctx context.Context, userID int64, sub core.Subscription) (core.Subscription, error)
		ListSubscriptions(ctx context.Context, userID int64) ([]core.Subscription, error)
		GetSubscription(ctx context.Context, userID, id int64) (core.Subscription, error)
		UpdateSubscription(ctx context.Context, userID, id int64, sub core.Subscription) (core.Subscription, error)
		DeleteSubscription(ctx context.Context, userID, id int64) error
	}
)
