package session

import (
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	store.Put(42, Session{Step: StepPhone, PendingOrderID: "N-1001"})
	got := store.Get(42)
	if got.Step != StepPhone || got.PendingOrderID != "N-1001" {
		t.Fatalf("unexpected session %+v", got)
	}

	store.Clear(42)
	if got := store.Get(42); got.Step != StepNone {
		t.Fatalf("expected zero session after clear, got %+v", got)
	}
}

func TestMemoryStoreExpiresIdleSessions(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	current := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Put(42, Session{Step: StepEmail})

	current = current.Add(30 * time.Minute)
	if got := store.Get(42); got.Step != StepEmail {
		t.Fatalf("session should survive within ttl, got %+v", got)
	}

	// The read above refreshed the idle timer.
	current = current.Add(59 * time.Minute)
	if got := store.Get(42); got.Step != StepEmail {
		t.Fatalf("session should survive after refresh, got %+v", got)
	}

	current = current.Add(2 * time.Hour)
	if got := store.Get(42); got.Step != StepNone {
		t.Fatalf("expected expired session to be dropped, got %+v", got)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry removed, len=%d", store.Len())
	}
}

func TestMemoryStoreEvictExpired(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Put(1, Session{Step: StepName})
	store.Put(2, Session{Step: StepPlan})

	current = current.Add(30 * time.Second)
	store.Put(2, Session{Step: StepPlan})

	current = current.Add(45 * time.Second)
	store.evictExpired()

	if store.Len() != 1 {
		t.Fatalf("expected one surviving session, got %d", store.Len())
	}
	if got := store.Get(2); got.Step != StepPlan {
		t.Fatalf("wrong session evicted: %+v", got)
	}
}
