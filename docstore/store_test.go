package docstore

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupStore creates a store on an in-memory SQLite database.
func setupStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return store
}

func TestStore_PutAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	fields := map[string]any{"title": "A", "count": 3}
	if err := store.Put(ctx, "things", "id-1", fields); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.GetByID(ctx, "things", "id-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got["title"] != "A" {
		t.Errorf("title = %v, want %q", got["title"], "A")
	}
	// JSON decoding turns numbers into float64.
	if got["count"] != float64(3) {
		t.Errorf("count = %v, want 3", got["count"])
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.GetByID(context.Background(), "things", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Put_ReplacesWholeDocument(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "things", "id-1", map[string]any{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, "things", "id-1", map[string]any{"a": "changed"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.GetByID(ctx, "things", "id-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got["a"] != "changed" {
		t.Errorf("a = %v, want %q", got["a"], "changed")
	}
	if _, ok := got["b"]; ok {
		t.Error("b should have been dropped by the full replace")
	}
}

func TestStore_UpdatePartial_MergesFields(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "things", "id-1", map[string]any{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.UpdatePartial(ctx, "things", "id-1", map[string]any{"b": "changed", "c": "new"}); err != nil {
		t.Fatalf("UpdatePartial() error = %v", err)
	}

	got, err := store.GetByID(ctx, "things", "id-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got["a"] != "1" || got["b"] != "changed" || got["c"] != "new" {
		t.Errorf("merged document = %v", got)
	}
}

func TestStore_UpdatePartial_AbsentIsNoOp(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.UpdatePartial(ctx, "things", "missing", map[string]any{"a": "1"}); err != nil {
		t.Fatalf("UpdatePartial() on absent document error = %v, want nil", err)
	}
	if _, err := store.GetByID(ctx, "things", "missing"); !errors.Is(err, ErrNotFound) {
		t.Error("no-op update must not create a document")
	}
}

func TestStore_Delete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "things", "id-1", map[string]any{"a": "1"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	deleted, err := store.Delete(ctx, "things", "id-1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("first Delete() = false, want true")
	}

	deleted, err = store.Delete(ctx, "things", "id-1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted {
		t.Error("second Delete() = true, want false")
	}
}

func TestStore_GetAll(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Put(ctx, "things", id, map[string]any{"id": id}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	// Documents in other collections must not leak in.
	if err := store.Put(ctx, "other", "x", map[string]any{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	docs, err := store.GetAll(ctx, "things")
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("len(docs) = %d, want 3", len(docs))
	}
}

func TestStore_QueryByField(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []struct {
		id    string
		owner string
		rank  int64
	}{
		{"t1", "u1", 10},
		{"t2", "u2", 50},
		{"t3", "u1", 30},
		{"t4", "u1", 20},
	}
	for _, s := range seed {
		err := store.Put(ctx, "things", s.id, map[string]any{"owner": s.owner, "rank": s.rank})
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	docs, err := store.QueryByField(ctx, "things", "owner", "u1", "rank", true)
	if err != nil {
		t.Fatalf("QueryByField() error = %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("len(docs) = %d, want 3", len(docs))
	}
	wantOrder := []string{"t3", "t4", "t1"}
	for i, doc := range docs {
		if doc.ID != wantOrder[i] {
			t.Errorf("docs[%d].ID = %q, want %q", i, doc.ID, wantOrder[i])
		}
		if doc.Fields["owner"] != "u1" {
			t.Errorf("docs[%d] owned by %v, want u1", i, doc.Fields["owner"])
		}
	}
}
