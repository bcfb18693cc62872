// Package worker applies journaled gateway writes to the remote store.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"budgetboard/internal/amqp"
	"budgetboard/internal/core"
	"budgetboard/internal/gateway"
	"budgetboard/internal/storage"
)

// SyncWorker drains the outbox journal into the gateway. It is the retry
// path for the dashboard's fire-and-forget writes: the dashboard applies
// mutations locally and journals them; this worker makes the remote store
// catch up.
type SyncWorker struct {
	journal  *storage.Journal
	projects gateway.ProjectStore
	logs     gateway.AccessLogStore
}

func NewSyncWorker(journal *storage.Journal, projects gateway.ProjectStore, logs gateway.AccessLogStore) *SyncWorker {
	return &SyncWorker{
		journal:  journal,
		projects: projects,
		logs:     logs,
	}
}

// HandleWriteMessage processes one dispatch message. Already-synced writes
// are skipped so redelivered messages stay harmless.
func (w *SyncWorker) HandleWriteMessage(ctx context.Context, msg *amqp.WriteMessage) error {
	synced, err := w.journal.IsSynced(ctx, msg.WriteID)
	if err != nil {
		return fmt.Errorf("check write %d: %w", msg.WriteID, err)
	}
	if synced {
		slog.DebugContext(ctx, "Write already synced, skipping", "id", msg.WriteID)
		return nil
	}

	write, err := w.journal.Get(ctx, msg.WriteID)
	if err != nil {
		return fmt.Errorf("load write %d: %w", msg.WriteID, err)
	}
	return w.apply(ctx, write)
}

// DrainPending retries every unsynced write, oldest first. Called on worker
// startup so writes that never got a dispatch message still heal.
func (w *SyncWorker) DrainPending(ctx context.Context, limit int) error {
	pending, err := w.journal.ListUnsynced(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending writes: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Draining pending writes", "count", len(pending))
	for _, write := range pending {
		if err := w.apply(ctx, write); err != nil {
			slog.ErrorContext(ctx, "Pending write still failing",
				"id", write.ID, "kind", write.Kind, "attempts", write.Attempts, "error", err)
		}
	}
	return nil
}

func (w *SyncWorker) apply(ctx context.Context, write storage.PendingWrite) error {
	var err error
	switch write.Kind {
	case storage.KindProjectAdd:
		err = w.applyProject(ctx, write.Payload, w.projects.AddProject)
	case storage.KindProjectUpdate:
		err = w.applyProject(ctx, write.Payload, w.projects.UpdateProject)
	case storage.KindProjectDelete:
		var id int64
		if err = json.Unmarshal(write.Payload, &id); err == nil {
			err = w.projects.DeleteProject(ctx, id)
		}
	case storage.KindAccessLog:
		var entry core.LogEntry
		if err = json.Unmarshal(write.Payload, &entry); err == nil {
			err = w.logs.AppendLog(ctx, entry)
		}
	default:
		// Unknown kinds are marked synced rather than retried forever.
		slog.WarnContext(ctx, "Unknown write kind, discarding", "id", write.ID, "kind", write.Kind)
		return w.journal.MarkSynced(ctx, write.ID)
	}

	if errors.Is(err, gateway.ErrProjectNotFound) {
		// The remote row is already gone (or never landed); retrying cannot
		// change the outcome.
		slog.WarnContext(ctx, "Write targets a missing remote project, discarding",
			"id", write.ID, "kind", write.Kind)
		return w.journal.MarkSynced(ctx, write.ID)
	}
	if err != nil {
		if markErr := w.journal.MarkFailed(ctx, write.ID, err); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record write failure", "id", write.ID, "error", markErr)
		}
		return fmt.Errorf("apply %s write %d: %w", write.Kind, write.ID, err)
	}

	if err := w.journal.MarkSynced(ctx, write.ID); err != nil {
		return fmt.Errorf("mark write %d synced: %w", write.ID, err)
	}
	slog.InfoContext(ctx, "Write synced to gateway", "id", write.ID, "kind", write.Kind)
	return nil
}

func (w *SyncWorker) applyProject(ctx context.Context, payload []byte, op func(context.Context, core.Project) error) error {
	var p core.Project
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode project payload: %w", err)
	}
	return op(ctx, p)
}
