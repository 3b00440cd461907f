package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := store.Save(ctx, "w1", map[string][]byte{
		"points": []byte(`{"pointsData":[]}`),
		"arcs":   []byte(`{"arcStroke":2}`),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "w1", map[string][]byte{"points": []byte(`{"pointsMerge":true}`)}); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	got, err := reloaded.Load(ctx, "w1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || string(got["points"]) != `{"pointsMerge":true}` {
		t.Fatalf("unexpected reloaded buckets: %v", got)
	}
	var rows int
	if err := reloaded.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected stale bucket deleted, %d rows remain", rows)
	}
	if reloaded.Path() != path {
		t.Fatalf("unexpected path %s", reloaded.Path())
	}
}

func TestSQLiteStoreRejectsEmptyWidgetID(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Save(context.Background(), "", nil); err == nil {
		t.Fatalf("expected rejection for empty id")
	}
}
