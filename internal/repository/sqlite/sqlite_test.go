package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sakif/task-manager/internal/model"
	"github.com/sakif/task-manager/internal/repository"
)

// newTestDB opens a fresh database file under t.TempDir().
//
// A file and not ":memory:": every pooled connection to ":memory:" gets its own
// empty database, so a second connection would not see the tables.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db"), LogStatements: true}, logger)
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// begin starts a unit of work that is rolled back when the test ends unless
// the test commits it first.
func begin(t *testing.T, db *DB) *Tx {
	t.Helper()
	tx, err := db.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx.(*Tx)
}

func createTestUser(t *testing.T, tx *Tx, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Slug: username}
	if err := tx.InsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestTask(t *testing.T, tx *Tx, userID int64, title string) *model.Task {
	t.Helper()
	task := &model.Task{Title: title, UserID: userID, Slug: title}
	if err := tx.InsertTask(context.Background(), task); err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

func TestNew_CreatesDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.db")

	db, err := New(Config{Path: path}, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	db, err := New(Config{Path: path}, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tx, _ := db.Begin(ctx)
	if err := tx.InsertUser(ctx, &model.User{Username: "bob", Slug: "bob"}); err != nil {
		t.Fatalf("InsertUser() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	db.Close()

	// Second open must not fail on the existing tables.
	db, err = New(Config{Path: path}, logger)
	if err != nil {
		t.Fatalf("reopen: New() error = %v", err)
	}
	defer db.Close()

	tx, _ = db.Begin(ctx)
	defer tx.Rollback()
	got, err := tx.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetUser() after reopen error = %v", err)
	}
	if got.Username != "bob" {
		t.Errorf("Username = %q, want %q", got.Username, "bob")
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

// =========================================================================
// UNIT OF WORK
// =========================================================================

func TestTx_IDIsUnique(t *testing.T) {
	db := newTestDB(t)
	a := begin(t, db)
	id := a.ID()
	a.Rollback()
	b := begin(t, db)

	if id == "" || b.ID() == "" {
		t.Fatal("ID() returned an empty string")
	}
	if id == b.ID() {
		t.Errorf("two units of work share id %q", id)
	}
}

func TestTx_CommitPersists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tx := begin(t, db)
	user := createTestUser(t, tx, "alice")
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if _, err := begin(t, db).GetUser(ctx, user.ID); err != nil {
		t.Errorf("GetUser() after commit error = %v", err)
	}
}

func TestTx_RollbackDiscards(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tx := begin(t, db)
	createTestUser(t, tx, "alice")
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	users, err := begin(t, db).ListUsers(ctx, repository.UserFilter{})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("ListUsers() returned %d users after rollback, want 0", len(users))
	}
}

func TestTx_RollbackAfterCommitIsNoop(t *testing.T) {
	db := newTestDB(t)

	tx := begin(t, db)
	createTestUser(t, tx, "alice")
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("Rollback() after Commit() error = %v, want nil", err)
	}
}

func TestWhere(t *testing.T) {
	clause, args := where(nil)
	if clause != "" || args != nil {
		t.Errorf("where(nil) = %q, %v; want empty", clause, args)
	}

	clause, args = where([]predicate{{"user_id", int64(3)}, {"slug", "x"}})
	if clause != " WHERE user_id = ? AND slug = ?" {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 2 || args[0] != int64(3) || args[1] != "x" {
		t.Errorf("args = %v", args)
	}
}

// =========================================================================
// READ UNITS OF WORK
// =========================================================================

func TestBeginRead_DoesNotWaitForWriter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db"), BusyTimeout: 200 * time.Millisecond}, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	setup := begin(t, db)
	createTestUser(t, setup, "alice")
	if err := setup.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	writer := begin(t, db)
	createTestUser(t, writer, "bob")

	reader, err := db.BeginRead(ctx)
	if err != nil {
		t.Fatalf("BeginRead() with an open writer error = %v", err)
	}
	defer reader.Rollback()

	users, err := reader.ListUsers(ctx, repository.UserFilter{})
	if err != nil {
		t.Fatalf("ListUsers() with an open writer error = %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Errorf("ListUsers() = %+v, want only the committed alice", users)
	}
}

func TestBeginRead_RejectsWrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	reader, err := db.BeginRead(ctx)
	if err != nil {
		t.Fatalf("BeginRead() error = %v", err)
	}
	defer reader.Rollback()

	if err := reader.InsertUser(ctx, &model.User{Username: "bob", Slug: "bob"}); err == nil {
		t.Error("InsertUser() through a read unit of work succeeded, want error")
	}
}
