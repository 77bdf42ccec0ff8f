// Package auth implements registration, login and token validation on
// top of the user and session stores.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"smartbills/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAlreadyRegistered indicates the email already has an account.
	ErrAlreadyRegistered = errors.New("email already registered")
	// ErrUnauthenticated indicates a missing, unknown or expired token.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Service handles authentication and session management.
type Service struct {
	users      storage.UserStore
	sessions   storage.SessionStore
	sessionTTL time.Duration
}

// New creates an authentication service. TTL bounds how long an issued
// token stays valid.
func New(users storage.UserStore, sessions storage.SessionStore, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Register creates an account and logs it straight in, returning the
// session token and user ID.
func (s *Service) Register(ctx context.Context, email, password string) (string, int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", 0, fmt.Errorf("%w: invalid email", ErrInvalidCredentials)
	}
	if len(password) < 8 {
		return "", 0, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", 0, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash))
	if errors.Is(err, storage.ErrEmailTaken) {
		return "", 0, ErrAlreadyRegistered
	}
	if err != nil {
		return "", 0, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return "", 0, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return token, user.ID, nil
}

// Login authenticates a user and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Same error for unknown email and wrong password.
		return "", 0, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", 0, ErrInvalidCredentials
	}

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return "", 0, err
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return token, user.ID, nil
}

// Logout invalidates a session token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ValidateToken resolves a token to its user ID. Expired sessions are
// removed on sight.
func (s *Service) ValidateToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrUnauthenticated
	}

	sess, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		_ = s.sessions.DeleteSession(ctx, token)
		return 0, ErrUnauthenticated
	}

	return sess.UserID, nil
}

// PurgeExpired removes expired session rows.
func (s *Service) PurgeExpired(ctx context.Context) error {
	return s.sessions.DeleteExpiredSessions(ctx)
}

func (s *Service) issueSession(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.sessions.CreateSession(ctx, token, userID, time.Now().Add(s.sessionTTL)); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
