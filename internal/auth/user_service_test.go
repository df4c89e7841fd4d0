package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PotatoBoi2658/notesapp/internal/config"
	"github.com/PotatoBoi2658/notesapp/internal/email"
	"github.com/PotatoBoi2658/notesapp/internal/testdb"
)

var authTestCounter atomic.Int64

// setupUserService creates a UserService backed by a fresh in-memory store,
// with a fake clock and the cheap fake hasher. The caller controls time via
// the returned FakeClock.
func setupUserService(t testing.TB, cfg *config.Config) (*UserService, *FakeClock, *email.MockMailer) {
	t.Helper()

	store, err := testdb.NewStoreInMemory(fmt.Sprintf("auth-%d", authTestCounter.Add(1)))
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if cfg == nil {
		cfg = &config.Config{
			BaseURL:         "http://localhost:8080",
			NoEmail:         true,
			SessionDuration: 24 * time.Hour,
		}
	}

	mailer := email.NewMockMailer()
	svc := NewUserService(store, cfg, mailer)
	clock := NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc.SetClock(clock)
	svc.SetHasher(FakeInsecureHasher{})

	return svc, clock, mailer
}

func TestRegister_ThenLogin(t *testing.T) {
	svc, _, _ := setupUserService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != RoleUser {
		t.Fatalf("expected role %q, got %q", RoleUser, user.Role)
	}
	if user.IsAdmin() {
		t.Fatalf("regular account should not be admin")
	}

	verified, err := svc.VerifyLogin(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("VerifyLogin failed: %v", err)
	}
	if verified.ID != user.ID {
		t.Fatalf("VerifyLogin returned wrong user: got %s want %s", verified.ID, user.ID)
	}

	if _, err := svc.VerifyLogin(ctx, "alice@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got: %v", err)
	}
	if _, err := svc.VerifyLogin(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown account, got: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := setupUserService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@example.com", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "bob@example.com", "different456"); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got: %v", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _ := setupUserService(t, nil)

	if _, err := svc.Register(context.Background(), "carol@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got: %v", err)
	}
}

func TestRegister_AdminEmailGetsAdministratorRole(t *testing.T) {
	cfg := &config.Config{
		BaseURL:         "http://localhost:8080",
		NoEmail:         true,
		SessionDuration: 24 * time.Hour,
		AdminEmails:     []string{"Root@Example.com"},
	}
	svc, _, _ := setupUserService(t, cfg)

	user, err := svc.Register(context.Background(), "root@example.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !user.IsAdmin() {
		t.Fatalf("expected administrator role for configured admin email, got %q", user.Role)
	}
}

func TestSendPasswordReset_UnknownEmail_NoError(t *testing.T) {
	svc, _, mailer := setupUserService(t, nil)

	// Must not reveal whether the account exists.
	if err := svc.SendPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("SendPasswordReset for unknown email should succeed silently, got: %v", err)
	}
	if mailer.Count() != 0 {
		t.Fatalf("no email should be sent for unknown account, got %d", mailer.Count())
	}
}

func TestSendPasswordReset_EmailNotConfigured(t *testing.T) {
	cfg := &config.Config{
		BaseURL:         "http://localhost:8080",
		NoEmail:         false, // real transport selected but no API key
		SessionDuration: 24 * time.Hour,
	}
	svc, _, _ := setupUserService(t, cfg)

	if err := svc.SendPasswordReset(context.Background(), "any@example.com"); !errors.Is(err, ErrEmailNotConfigured) {
		t.Fatalf("expected ErrEmailNotConfigured, got: %v", err)
	}
}

func TestPasswordReset_FullFlow(t *testing.T) {
	svc, _, mailer := setupUserService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "dave@example.com", "oldpassword")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.SendPasswordReset(ctx, "dave@example.com"); err != nil {
		t.Fatalf("SendPasswordReset failed: %v", err)
	}
	if mailer.Count() != 1 {
		t.Fatalf("expected 1 captured email, got %d", mailer.Count())
	}

	data, ok := mailer.LastEmail().Data.(email.PasswordResetData)
	if !ok {
		t.Fatalf("captured email has wrong data type: %T", mailer.LastEmail().Data)
	}
	token := tokenFromLink(t, data.Link)
	mailer.Clear()

	if err := svc.ResetPassword(ctx, token, "newpassword"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if mailer.Count() != 0 {
		t.Fatalf("resetting a password must not send mail, got %d", mailer.Count())
	}

	if _, err := svc.VerifyLogin(ctx, "dave@example.com", "oldpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer verify, got: %v", err)
	}
	verified, err := svc.VerifyLogin(ctx, "dave@example.com", "newpassword")
	if err != nil {
		t.Fatalf("VerifyLogin with new password failed: %v", err)
	}
	if verified.ID != user.ID {
		t.Fatalf("VerifyLogin returned wrong user after reset")
	}

	// Token is consumed; a second use must fail.
	if err := svc.ResetPassword(ctx, token, "thirdpassword"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for reused token, got: %v", err)
	}
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	svc, clock, mailer := setupUserService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "erin@example.com", "oldpassword"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.SendPasswordReset(ctx, "erin@example.com"); err != nil {
		t.Fatalf("SendPasswordReset failed: %v", err)
	}

	data := mailer.LastEmail().Data.(email.PasswordResetData)
	token := tokenFromLink(t, data.Link)

	clock.Advance(ResetTokenExpiry + time.Second)

	if err := svc.ResetPassword(ctx, token, "newpassword"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got: %v", err)
	}
}

func tokenFromLink(t testing.TB, link string) string {
	t.Helper()
	_, token, found := strings.Cut(link, "token=")
	if !found {
		t.Fatalf("reset link missing token parameter: %q", link)
	}
	return token
}
