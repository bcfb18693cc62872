package worker

import (
	"context"
	"path/filepath"
	"testing"

	"budgetboard/internal/amqp"
	"budgetboard/internal/core"
	"budgetboard/internal/gateway/memory"
	"budgetboard/internal/storage"
)

func baht(n int64) core.Money { return core.Money{Satang: n * 100} }

func testSetup(t *testing.T) (*SyncWorker, *storage.Journal, *memory.Store) {
	t.Helper()
	journal, err := storage.NewJournal(filepath.Join(t.TempDir(), "outbox.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })

	store := memory.New([]core.Project{
		{ID: 101, Name: "Seeded", Group: "G", Budget: baht(1000), Status: core.StatusActive},
	}, nil)

	return NewSyncWorker(journal, store, store), journal, store
}

func TestHandleWriteMessageProjectAdd(t *testing.T) {
	w, journal, store := testSetup(t)
	ctx := context.Background()

	project := core.Project{ID: 201, Name: "New", Group: "G", Budget: baht(500), Status: core.StatusActive}
	id, err := journal.Enqueue(ctx, storage.KindProjectAdd, project)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.HandleWriteMessage(ctx, amqp.NewWriteMessage(id)); err != nil {
		t.Fatalf("HandleWriteMessage: %v", err)
	}

	projects, _ := store.ListProjects(ctx)
	if len(projects) != 2 || projects[1].ID != 201 {
		t.Errorf("projects = %+v, want seeded plus 201", projects)
	}
	if synced, _ := journal.IsSynced(ctx, id); !synced {
		t.Error("write not marked synced")
	}
}

func TestHandleWriteMessageRedeliveryIsIdempotent(t *testing.T) {
	w, journal, store := testSetup(t)
	ctx := context.Background()

	id, _ := journal.Enqueue(ctx, storage.KindProjectAdd, core.Project{ID: 202, Name: "Once", Status: core.StatusActive})
	msg := amqp.NewWriteMessage(id)

	if err := w.HandleWriteMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleWriteMessage(ctx, msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	projects, _ := store.ListProjects(ctx)
	count := 0
	for _, p := range projects {
		if p.ID == 202 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("project 202 applied %d times, want 1", count)
	}
}

func TestHandleWriteMessageDelete(t *testing.T) {
	w, journal, store := testSetup(t)
	ctx := context.Background()

	id, _ := journal.Enqueue(ctx, storage.KindProjectDelete, int64(101))
	if err := w.HandleWriteMessage(ctx, amqp.NewWriteMessage(id)); err != nil {
		t.Fatalf("HandleWriteMessage: %v", err)
	}

	projects, _ := store.ListProjects(ctx)
	if len(projects) != 0 {
		t.Errorf("projects = %+v, want empty", projects)
	}
}

func TestMissingRemoteProjectIsDiscarded(t *testing.T) {
	w, journal, _ := testSetup(t)
	ctx := context.Background()

	// Updating a project the remote store never saw cannot succeed on retry.
	id, _ := journal.Enqueue(ctx, storage.KindProjectUpdate, core.Project{ID: 999, Name: "Ghost", Status: core.StatusActive})
	if err := w.HandleWriteMessage(ctx, amqp.NewWriteMessage(id)); err != nil {
		t.Fatalf("HandleWriteMessage: %v", err)
	}
	if synced, _ := journal.IsSynced(ctx, id); !synced {
		t.Error("unresolvable write should be discarded, not retried forever")
	}
}

func TestDrainPending(t *testing.T) {
	w, journal, store := testSetup(t)
	ctx := context.Background()

	journal.Enqueue(ctx, storage.KindAccessLog, core.LogEntry{ID: 1, Username: "admin", Role: core.RoleAdmin, Status: core.LogSuccess})
	journal.Enqueue(ctx, storage.KindProjectAdd, core.Project{ID: 303, Name: "Drained", Status: core.StatusActive})

	if err := w.DrainPending(ctx, 100); err != nil {
		t.Fatalf("DrainPending: %v", err)
	}

	logs, _ := store.ListLogs(ctx)
	if len(logs) != 1 {
		t.Errorf("logs = %+v, want 1 entry", logs)
	}
	projects, _ := store.ListProjects(ctx)
	if len(projects) != 2 {
		t.Errorf("projects = %d, want 2", len(projects))
	}

	pending, _ := journal.ListUnsynced(ctx, 100)
	if len(pending) != 0 {
		t.Errorf("pending after drain = %+v, want empty", pending)
	}
}
