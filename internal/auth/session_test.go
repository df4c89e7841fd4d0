package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/PotatoBoi2658/notesapp/internal/testdb"
)

func setupSessionService(t testing.TB) (*SessionService, *FakeClock) {
	t.Helper()

	store, err := testdb.NewStoreInMemory(fmt.Sprintf("session-%d", authTestCounter.Add(1)))
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := NewSessionService(store, 24*time.Hour, false)
	clock := NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc.SetClock(clock)
	return svc, clock
}

func TestSession_CreateValidateDelete(t *testing.T) {
	svc, _ := setupSessionService(t)
	ctx := context.Background()

	sessionID, err := svc.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	userID, err := svc.Validate(ctx, sessionID)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("Validate returned wrong user: got %s", userID)
	}

	if err := svc.Delete(ctx, sessionID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Validate(ctx, sessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got: %v", err)
	}
}

func TestSession_Expiry(t *testing.T) {
	svc, clock := setupSessionService(t)
	ctx := context.Background()

	sessionID, err := svc.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	clock.Advance(24*time.Hour + time.Second)

	if _, err := svc.Validate(ctx, sessionID); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got: %v", err)
	}

	// Expired session was deleted on validation.
	if _, err := svc.Validate(ctx, sessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after expiry cleanup, got: %v", err)
	}
}

func TestSession_Cleanup(t *testing.T) {
	svc, clock := setupSessionService(t)
	ctx := context.Background()

	oldSession, err := svc.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	clock.Advance(23 * time.Hour)
	freshSession, err := svc.Create(ctx, "user-2")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	clock.Advance(2 * time.Hour)
	if err := svc.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	if _, err := svc.Validate(ctx, oldSession); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected old session to be cleaned up, got: %v", err)
	}
	if _, err := svc.Validate(ctx, freshSession); err != nil {
		t.Fatalf("fresh session should survive cleanup: %v", err)
	}
}

func TestSession_DeleteByUserID(t *testing.T) {
	svc, _ := setupSessionService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	other, err := svc.Create(ctx, "user-2")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.DeleteByUserID(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteByUserID failed: %v", err)
	}

	for _, sid := range []string{first, second} {
		if _, err := svc.Validate(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected user-1 session to be gone, got: %v", err)
		}
	}
	if _, err := svc.Validate(ctx, other); err != nil {
		t.Fatalf("user-2 session should survive: %v", err)
	}
}
