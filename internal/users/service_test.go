package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"docmind-backend/internal/shared/auth"
	"docmind-backend/internal/shared/util"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo(), NewMemoryResetRepo())
}

func TestRegisterLoginMe(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "development")

	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.PasswordHash == "hunter2" {
		t.Fatalf("expected generated id and hashed password, got %+v", user)
	}

	token, err := svc.Authenticate(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	claims, err := auth.VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Sub != "alice" {
		t.Fatalf("expected sub=alice, got %q", claims.Sub)
	}

	me, err := svc.Me(ctx, "alice")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", me.Email)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Register(ctx, "alice", "other@example.com", "pw"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "alice@example.com", "pw"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "development")

	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "development")

	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "oldpass"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.ForgotPassword(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if token == "" {
		t.Fatal("expected a reset token")
	}

	if err := svc.ResetPassword(ctx, token, "newpass"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "alice", "oldpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice", "newpass"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}

	if err := svc.ResetPassword(ctx, token, "again"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("token should be single use, got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "oldpass"); err != nil {
		t.Fatalf("register: %v", err)
	}

	expired := PasswordReset{
		TokenHash: util.HashKey("stale-token"),
		Username:  "alice",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	if err := svc.Resets.Create(ctx, expired); err != nil {
		t.Fatalf("seed reset: %v", err)
	}

	if err := svc.ResetPassword(ctx, "stale-token", "newpass"); !errors.Is(err, ErrResetTokenExpired) {
		t.Fatalf("expected ErrResetTokenExpired, got %v", err)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := newTestService()
	if _, err := svc.ForgotPassword(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestForgotPasswordReplacesEarlierToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := svc.ForgotPassword(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("first forgot: %v", err)
	}
	second, err := svc.ForgotPassword(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("second forgot: %v", err)
	}

	if err := svc.ResetPassword(ctx, first, "newpass"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("first token should be invalidated, got %v", err)
	}
	if err := svc.ResetPassword(ctx, second, "newpass"); err != nil {
		t.Fatalf("second token should work: %v", err)
	}
}
