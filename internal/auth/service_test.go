package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartbills/internal/storage/memory"
)

func newTestService() *Service {
	store := memory.New()
	return New(store, store, time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	token, userID, err := svc.Register(ctx, "user@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token == "" || userID == 0 {
		t.Fatalf("Register returned token=%q userID=%d", token, userID)
	}

	// register logs straight in
	gotID, err := svc.ValidateToken(ctx, token)
	if err != nil || gotID != userID {
		t.Fatalf("ValidateToken after register: %v, id=%d", err, gotID)
	}

	token2, id2, err := svc.Login(ctx, "user@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id2 != userID {
		t.Fatalf("Login user ID = %d, want %d", id2, userID)
	}
	if token2 == token {
		t.Fatalf("expected a fresh token per login")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, _, err := svc.Register(ctx, "dup@example.com", "password1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, err := svc.Register(ctx, "dup@example.com", "password2")
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("got %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, _, err := svc.Register(ctx, "not-an-email", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad email: got %v", err)
	}
	if _, _, err := svc.Register(ctx, "ok@example.com", "short"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("short password: got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, _, err := svc.Register(ctx, "user@example.com", "correct-horse"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	token, _, err := svc.Register(ctx, "user@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("token after logout: got %v, want ErrUnauthenticated", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := New(store, store, -time.Minute) // already expired on issue

	token, _, err := svc.Register(ctx, "user@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expired token: got %v, want ErrUnauthenticated", err)
	}
}

func TestValidateTokenEmpty(t *testing.T) {
	svc := newTestService()
	if _, err := svc.ValidateToken(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("empty token: got %v, want ErrUnauthenticated", err)
	}
}
