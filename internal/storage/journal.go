// Package storage keeps the outbox journal for best-effort gateway writes.
// Project mutations and access logs are journaled before dispatch, so a
// write the remote store never saw can be retried instead of silently
// drifting.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type WriteKind string

const (
	KindProjectAdd    WriteKind = "project_add"
	KindProjectUpdate WriteKind = "project_update"
	KindProjectDelete WriteKind = "project_delete"
	KindAccessLog     WriteKind = "access_log"
)

// PendingWrite is one journaled gateway write.
type PendingWrite struct {
	ID        int64
	Kind      WriteKind
	Payload   []byte
	CreatedAt time.Time
	Attempts  int
}

type Journal struct {
	db *sql.DB
}

func NewJournal(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Enqueue journals a write and returns its id. The payload is stored as
// JSON; the worker decodes it by kind.
func (j *Journal) Enqueue(ctx context.Context, kind WriteKind, payload any) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO pending_writes (kind, payload) VALUES (?, ?)`,
		string(kind), string(body))
	if err != nil {
		return 0, fmt.Errorf("insert pending write: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.DebugContext(ctx, "Write journaled", "id", id, "kind", kind)
	return id, nil
}

// Get loads a single journaled write, synced or not.
func (j *Journal) Get(ctx context.Context, id int64) (PendingWrite, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, kind, payload, created_at, attempts FROM pending_writes WHERE id = ?`, id)

	var w PendingWrite
	var kind, payload string
	if err := row.Scan(&w.ID, &kind, &payload, &w.CreatedAt, &w.Attempts); err != nil {
		return PendingWrite{}, fmt.Errorf("load pending write %d: %w", id, err)
	}
	w.Kind = WriteKind(kind)
	w.Payload = []byte(payload)
	return w, nil
}

// IsSynced reports whether the write has already been applied remotely.
func (j *Journal) IsSynced(ctx context.Context, id int64) (bool, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT synced_at IS NOT NULL FROM pending_writes WHERE id = ?`, id)
	var synced bool
	if err := row.Scan(&synced); err != nil {
		return false, fmt.Errorf("check synced %d: %w", id, err)
	}
	return synced, nil
}

// ListUnsynced returns writes awaiting sync, oldest first.
func (j *Journal) ListUnsynced(ctx context.Context, limit int) ([]PendingWrite, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, payload, created_at, attempts
		 FROM pending_writes WHERE synced_at IS NULL
		 ORDER BY created_at, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced writes: %w", err)
	}
	defer rows.Close()

	var out []PendingWrite
	for rows.Next() {
		var w PendingWrite
		var kind, payload string
		if err := rows.Scan(&w.ID, &kind, &payload, &w.CreatedAt, &w.Attempts); err != nil {
			return nil, fmt.Errorf("scan pending write: %w", err)
		}
		w.Kind = WriteKind(kind)
		w.Payload = []byte(payload)
		out = append(out, w)
	}
	return out, rows.Err()
}

// MarkSynced records that the write reached the remote store.
func (j *Journal) MarkSynced(ctx context.Context, id int64) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE pending_writes SET synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark synced %d: %w", id, err)
	}
	return nil
}

// MarkFailed bumps the attempt counter and keeps the write pending.
func (j *Journal) MarkFailed(ctx context.Context, id int64, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := j.db.ExecContext(ctx,
		`UPDATE pending_writes SET attempts = attempts + 1, last_error = ? WHERE id = ?`,
		msg, id)
	if err != nil {
		return fmt.Errorf("mark failed %d: %w", id, err)
	}
	return nil
}
