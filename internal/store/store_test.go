package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "adolai.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// exerciseKV checks the contract every KV implementation shares.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := kv.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil || got != "v2" {
		t.Errorf("Get(k) = %q, %v; want v2", got, err)
	}

	if err := kv.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := kv.Remove(ctx, "k"); err != nil {
		t.Errorf("Remove of absent key: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove error = %v", err)
	}
}

func TestMemoryStore_KV(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestSQLiteStore_KV(t *testing.T) {
	exerciseKV(t, newTestSQLite(t))
}

func TestSQLiteStore_PragmasApplyToEveryConnection(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	// Hold two connections at once so the pool has to open a second one.
	c1, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn 1: %v", err)
	}
	defer c1.Close()
	c2, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn 2: %v", err)
	}
	defer c2.Close()

	for i, c := range []*sql.Conn{c1, c2} {
		var timeout int
		if err := c.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i+1, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d busy_timeout = %d, want 5000", i+1, timeout)
		}
		var mode string
		if err := c.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
			t.Fatalf("conn %d journal_mode: %v", i+1, err)
		}
		if mode != "wal" {
			t.Errorf("conn %d journal_mode = %q, want wal", i+1, mode)
		}
	}
}

func TestSQLiteStore_RowsUseDurableScope(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	if err := s.Set(ctx, "adolai_chat_sessions", "{}"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var scope string
	if err := s.db.QueryRowContext(ctx, `SELECT scope FROM kv WHERE key = ?`, "adolai_chat_sessions").Scan(&scope); err != nil {
		t.Fatalf("select scope: %v", err)
	}
	if scope != durableScope {
		t.Errorf("scope = %q, want %q", scope, durableScope)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "adolai.db")

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := s.Set(ctx, "adolai_user_id", "user_1_abcdefghi"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got, err := reopened.Get(ctx, "adolai_user_id"); err != nil || got != "user_1_abcdefghi" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}
