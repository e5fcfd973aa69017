package task

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"clubportal/internal/adapters/storage"
	domain "clubportal/internal/domain/task"
)

// openTestDB creates an in-memory SQLite database with the full schema and
// the account rows the task FK needs.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// In-memory SQLite gives each pool connection its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	for _, id := range []string{"adm-1", "mem-1"} {
		_, err := db.Exec(
			`INSERT INTO account (id, email, full_name, role, password_hash, created_at) VALUES (?, ?, 'Test Account', 'member', 'x', '2026-01-02T00:00:00Z')`,
			id, id+"@club.test")
		if err != nil {
			t.Fatalf("failed to insert account %s: %v", id, err)
		}
	}
	return db
}

func sampleTask(id string) domain.Task {
	return domain.Task{
		ID:         id,
		Title:      "Print posters",
		Status:     domain.StatusPending,
		AssignedTo: "mem-1",
		CreatedBy:  "adm-1",
		CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// TestSQLiteStore_SaveAndGet verifies the roundtrip including the nullable
// updated_at column.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	want := sampleTask("t1")
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != want.Title || got.Status != want.Status || got.AssignedTo != want.AssignedTo {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt = %v, want zero for a never-updated task", got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

// TestSQLiteStore_TransitionStatus verifies the conditional update applies
// only when the row still holds the expected status.
func TestSQLiteStore_TransitionStatus(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, sampleTask("t1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	applied, err := store.TransitionStatus(ctx, "t1", domain.StatusPending, domain.StatusSubmitted, now)
	if err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if !applied {
		t.Fatal("first transition should apply")
	}

	// A second caller still holding the pending snapshot must lose.
	applied, err = store.TransitionStatus(ctx, "t1", domain.StatusPending, domain.StatusVerified, now)
	if err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if applied {
		t.Error("stale transition should not apply")
	}

	got, err := store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusSubmitted {
		t.Errorf("status = %q, want submitted", got.Status)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}
}

// TestSQLiteStore_TransitionStatus_MissingRow verifies no-row is reported as
// not applied, not as an error.
func TestSQLiteStore_TransitionStatus_MissingRow(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))

	applied, err := store.TransitionStatus(context.Background(), "nope", domain.StatusPending, domain.StatusSubmitted, time.Now())
	if err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if applied {
		t.Error("transition of a missing row should not apply")
	}
}

// TestSQLiteStore_ListFilters verifies status and assignee filtering.
func TestSQLiteStore_ListFilters(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	t1 := sampleTask("t1")
	t2 := sampleTask("t2")
	t2.AssignedTo = "adm-1"
	t3 := sampleTask("t3")
	t3.Status = domain.StatusSubmitted
	for _, tk := range []domain.Task{t1, t2, t3} {
		if err := store.Save(ctx, tk); err != nil {
			t.Fatalf("Save %s failed: %v", tk.ID, err)
		}
	}

	pending, err := store.List(ctx, ListFilter{Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending tasks = %d, want 2", len(pending))
	}

	mine, err := store.List(ctx, ListFilter{AssignedTo: "mem-1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("tasks for mem-1 = %d, want 2", len(mine))
	}

	count, err := store.Count(ctx, ListFilter{Status: domain.StatusSubmitted})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("submitted count = %d, want 1", count)
	}
}
