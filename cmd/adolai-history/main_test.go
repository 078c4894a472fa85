package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashureev/adolai/internal/domain"
	"github.com/ashureev/adolai/internal/history"
	"github.com/ashureev/adolai/internal/store"
)

func seed(t *testing.T, dbPath, userID string) {
	t.Helper()
	repo, err := store.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	h := history.New(repo, history.Options{})
	topic := "Sleep"
	h.SaveSession(ctx, userID, history.SessionPatch{SessionID: "session_a", UserID: &userID, Topic: &topic})
	h.UpdateSessionMessages(ctx, userID, "session_a", []domain.Message{
		{ID: "1", Text: "How much sleep do teens need?"},
		{ID: "2", Text: "Eight to ten hours.", IsBot: true},
	})
	h.SaveSession(ctx, userID, history.SessionPatch{SessionID: "session_b", UserID: &userID})
	h.UpdateSessionMessages(ctx, userID, "session_b", []domain.Message{
		{ID: "3", Text: "Tips for exam stress"},
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListAndSearch(t *testing.T) {
	db := filepath.Join(t.TempDir(), "adolai.db")
	seed(t, db, "user_1")

	out, err := run(t, "list", "--db", db, "--user", "user_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "session_a") || !strings.Contains(out, "session_b") {
		t.Errorf("list output missing sessions:\n%s", out)
	}

	out, err = run(t, "search", "--db", db, "--user", "user_1", "--query", "EXAM")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "session_b") || strings.Contains(out, "session_a") {
		t.Errorf("search output:\n%s", out)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "adolai.db")
	if _, err := run(t, "search", "--db", db, "--user", "user_1"); err == nil {
		t.Fatal("expected error without --query")
	}
}

func TestExportToDirectory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "adolai.db")
	seed(t, db, "user_1")
	outDir := t.TempDir()

	if _, err := run(t, "export", "--db", db, "--user", "user_1", "--format", "txt", "--out", outDir); err != nil {
		t.Fatalf("export: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one export file, got %v (%v)", entries, err)
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "adolai_chat_history_user_1_") || !strings.HasSuffix(name, ".txt") {
		t.Errorf("unexpected file name %q", name)
	}
	data, _ := os.ReadFile(filepath.Join(outDir, name))
	if !strings.Contains(string(data), "Chat History Export for User: user_1") {
		t.Errorf("unexpected export body:\n%s", data)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	db := filepath.Join(t.TempDir(), "adolai.db")
	if _, err := run(t, "export", "--db", db, "--user", "user_1", "--format", "pdf"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFavoriteAndStats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "adolai.db")
	seed(t, db, "user_1")

	out, err := run(t, "favorite", "--db", db, "--user", "user_1", "--session", "session_a")
	if err != nil || !strings.Contains(out, "is now a favorite") {
		t.Fatalf("favorite: %q %v", out, err)
	}

	out, err = run(t, "list", "--db", db, "--user", "user_1", "--favorites")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if !strings.Contains(out, "session_a") || strings.Contains(out, "session_b") {
		t.Errorf("favorites output:\n%s", out)
	}

	out, err = run(t, "stats", "--db", db, "--user", "user_1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Sessions") || !strings.Contains(out, "user_1") {
		t.Errorf("stats output:\n%s", out)
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "adolai.db")
	seed(t, db, "user_1")

	if _, err := run(t, "clear", "--db", db, "--user", "user_1"); err == nil {
		t.Fatal("expected error without --yes")
	}
	if _, err := run(t, "clear", "--db", db, "--user", "user_1", "--yes"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, _ := run(t, "list", "--db", db, "--user", "user_1")
	if !strings.Contains(out, "No sessions found") {
		t.Errorf("history not cleared:\n%s", out)
	}
}

func TestDefaultUserIsTheOnlyStoredUser(t *testing.T) {
	db := filepath.Join(t.TempDir(), "adolai.db")
	seed(t, db, "user_1")

	out, err := run(t, "list", "--db", db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "session_a") || !strings.Contains(out, "session_b") {
		t.Errorf("list without --user did not resolve user_1:\n%s", out)
	}

	repo, err := store.NewSQLite(db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()
	if _, err := repo.Get(context.Background(), "adolai_user_id"); err == nil {
		t.Error("a read-only command wrote an identity key")
	}
}

func TestDefaultUserAmbiguousOrMissing(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "adolai.db")
	if _, err := run(t, "stats", "--db", empty); err == nil || !strings.Contains(err.Error(), "--user") {
		t.Errorf("empty database: err = %v, want a hint to pass --user", err)
	}

	db := filepath.Join(t.TempDir(), "adolai.db")
	seed(t, db, "user_1")
	seed(t, db, "user_2")
	_, err := run(t, "stats", "--db", db)
	if err == nil || !strings.Contains(err.Error(), "user_1, user_2") {
		t.Errorf("two users: err = %v, want both ids listed", err)
	}
}
