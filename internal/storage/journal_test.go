package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func testJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), "outbox.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalEnqueueAndGet(t *testing.T) {
	j := testJournal(t)
	ctx := context.Background()

	id, err := j.Enqueue(ctx, KindProjectAdd, map[string]any{"id": 101, "name": "X"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	w, err := j.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if w.Kind != KindProjectAdd {
		t.Errorf("kind = %q, want %q", w.Kind, KindProjectAdd)
	}
	if len(w.Payload) == 0 {
		t.Error("payload is empty")
	}
	if w.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", w.Attempts)
	}
}

func TestJournalSyncLifecycle(t *testing.T) {
	j := testJournal(t)
	ctx := context.Background()

	first, _ := j.Enqueue(ctx, KindAccessLog, "entry-1")
	second, _ := j.Enqueue(ctx, KindProjectDelete, int64(101))

	pending, err := j.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != first {
		t.Fatalf("pending = %+v, want both writes oldest first", pending)
	}

	if err := j.MarkSynced(ctx, first); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	synced, err := j.IsSynced(ctx, first)
	if err != nil || !synced {
		t.Errorf("IsSynced(first) = %v, %v; want true", synced, err)
	}

	pending, _ = j.ListUnsynced(ctx, 10)
	if len(pending) != 1 || pending[0].ID != second {
		t.Errorf("pending after sync = %+v, want only second", pending)
	}
}

func TestJournalMarkFailed(t *testing.T) {
	j := testJournal(t)
	ctx := context.Background()

	id, _ := j.Enqueue(ctx, KindProjectUpdate, map[string]any{"id": 101})
	if err := j.MarkFailed(ctx, id, context.DeadlineExceeded); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	w, _ := j.Get(ctx, id)
	if w.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", w.Attempts)
	}

	// A failed write stays pending.
	if synced, _ := j.IsSynced(ctx, id); synced {
		t.Error("failed write reported as synced")
	}
}
