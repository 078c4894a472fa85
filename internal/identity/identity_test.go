package identity

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ashureev/adolai/internal/store"
)

var (
	userIDFormat    = regexp.MustCompile(`^user_\d+_[0-9a-z]{9}$`)
	sessionIDFormat = regexp.MustCompile(`^session_\d+_[0-9a-z]{9}$`)
)

func newTestManager() (*Manager, *store.MemoryStore, *store.MemoryStore) {
	durable, tab := store.NewMemory(), store.NewMemory()
	now := func() time.Time { return time.UnixMilli(1_700_000_000_123) }
	return NewManager(durable, tab, Options{Now: now}), durable, tab
}

func TestUserID_FormatAndIdempotence(t *testing.T) {
	m, durable, _ := newTestManager()
	ctx := context.Background()

	first, err := m.UserID(ctx)
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if !userIDFormat.MatchString(first) {
		t.Errorf("user id %q has wrong format", first)
	}
	if got := first[len("user_") : len("user_")+13]; got != "1700000000123" {
		t.Errorf("timestamp segment = %q", got)
	}

	second, err := m.UserID(ctx)
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if first != second {
		t.Errorf("UserID not idempotent: %q then %q", first, second)
	}

	stored, err := durable.Get(ctx, UserIDKey)
	if err != nil || stored != first {
		t.Errorf("durable store = %q, %v; want %q", stored, err, first)
	}
}

func TestSessionID_UsesTabScope(t *testing.T) {
	m, durable, tab := newTestManager()
	ctx := context.Background()

	sid, err := m.SessionID(ctx)
	if err != nil {
		t.Fatalf("SessionID: %v", err)
	}
	if !sessionIDFormat.MatchString(sid) {
		t.Errorf("session id %q has wrong format", sid)
	}
	if _, err := tab.Get(ctx, SessionIDKey); err != nil {
		t.Errorf("session id not stored in tab scope: %v", err)
	}
	if _, err := durable.Get(ctx, SessionIDKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("session id leaked into durable scope: %v", err)
	}
}

func TestClearSession_KeepsUser(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	user, _ := m.UserID(ctx)
	sid, _ := m.SessionID(ctx)

	if err := m.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}

	if got, _ := m.UserID(ctx); got != user {
		t.Errorf("user id changed after ClearSession: %q -> %q", user, got)
	}
	if got, _ := m.SessionID(ctx); got == sid {
		t.Errorf("session id %q survived ClearSession", got)
	}
}

func TestClearUser_RemovesBoth(t *testing.T) {
	m, durable, tab := newTestManager()
	ctx := context.Background()

	_, _ = m.UserID(ctx)
	_, _ = m.SessionID(ctx)

	if err := m.ClearUser(ctx); err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	if _, err := durable.Get(ctx, UserIDKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user id still stored: %v", err)
	}
	if _, err := tab.Get(ctx, SessionIDKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("session id still stored: %v", err)
	}
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingKV) Set(context.Context, string, string) error  { return f.err }
func (f failingKV) Remove(context.Context, string) error        { return f.err }

func TestUserID_StorageError(t *testing.T) {
	boom := errors.New("disk gone")
	m := NewManager(failingKV{err: boom}, store.NewMemory(), Options{})

	if _, err := m.UserID(context.Background()); !errors.Is(err, boom) {
		t.Errorf("UserID error = %v, want wrapped %v", err, boom)
	}
}

func TestNewID_DistinctSuffixes(t *testing.T) {
	now := time.UnixMilli(42)
	seen := make(map[string]bool)
	m, _, _ := newTestManager()
	for i := 0; i < 100; i++ {
		id, err := NewID("user", now, m.rand)
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
