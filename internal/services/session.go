// Package services holds the session state machine that ties the gateway,
// the fallback catalog, and the pure engines together.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetboard/internal/core"
	"budgetboard/internal/gateway"
	"budgetboard/internal/storage"
)

// Dispatcher notifies the sync worker that a journaled write is pending.
type Dispatcher interface {
	PublishWrite(ctx context.Context, writeID int64) error
}

// Session owns the in-memory collections for one authenticated dashboard
// session. It is the single writer of that state; the engines in core stay
// pure and are fed snapshots. Handlers run concurrently, so access goes
// through the mutex even though the source UI was single-threaded.
type Session struct {
	gw       gateway.Gateway
	journal  *storage.Journal
	dispatch Dispatcher
	fallback []core.Project
	now      func() time.Time

	mu            sync.Mutex
	authenticated bool
	role          core.Role
	user          string
	loading       bool
	projects      []core.Project
	expenses      []core.Expense
	logs          []core.LogEntry
	// pendingLogs holds locally recorded attempts not yet observed in a
	// remote fetch; they are served ahead of the fetched list so a refresh
	// cannot clobber them.
	pendingLogs []core.LogEntry
}

type Option func(*Session)

// WithJournal routes best-effort writes through the outbox journal and the
// dispatcher instead of direct fire-and-forget gateway calls.
func WithJournal(j *storage.Journal, d Dispatcher) Option {
	return func(s *Session) {
		s.journal = j
		s.dispatch = d
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session displaying the fallback catalog until a
// login pulls real data.
func NewSession(gw gateway.Gateway, fallback []core.Project, opts ...Option) *Session {
	s := &Session{
		gw:       gw,
		fallback: fallback,
		now:      time.Now,
		projects: append([]core.Project(nil), fallback...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates against the gateway. Every attempt, successful or
// not, lands in the access log; only success changes session identity and
// triggers the fetch-and-reconcile cycle.
func (s *Session) Login(ctx context.Context, username, password string) (gateway.Identity, error) {
	id, err := s.gw.Login(ctx, username, password)
	if err != nil {
		s.RecordLog(ctx, username, core.RoleUnknown, core.LogFailed)
		if errors.Is(err, gateway.ErrInvalidCredentials) {
			return gateway.Identity{}, err
		}
		return gateway.Identity{}, fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.authenticated = true
	s.role = id.Role
	s.user = id.Name
	s.mu.Unlock()

	s.RecordLog(ctx, username, id.Role, core.LogSuccess)

	// A failed refresh is not a failed login; the fallback catalog keeps
	// the dashboard usable.
	if err := s.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "Initial data fetch degraded", "error", err)
	}
	return id, nil
}

// Logout clears the identity. The fetched collections stay; they are simply
// not served while unauthenticated.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.role = ""
	s.user = ""
}

// ChangePassword passes through to the gateway. Rejections surface to the
// caller; no session state changes either way.
func (s *Session) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	return s.gw.ChangePassword(ctx, username, oldPassword, newPassword)
}

// Refresh fetches the three remote collections in parallel and reconciles
// projects against the fallback catalog. Each collection degrades
// independently: a failed fetch keeps the previous value (or, for
// projects, the reconciliation falls back to the catalog).
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	var (
		remoteProjects []core.Project
		remoteExpenses []core.Expense
		remoteLogs     []core.LogEntry
		pErr, eErr, lErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		remoteProjects, pErr = s.gw.ListProjects(gctx)
		return nil
	})
	g.Go(func() error {
		remoteExpenses, eErr = s.gw.ListExpenses(gctx)
		return nil
	})
	g.Go(func() error {
		remoteLogs, lErr = s.gw.ListLogs(gctx)
		return nil
	})
	_ = g.Wait()

	if pErr != nil {
		slog.WarnContext(ctx, "Project fetch failed, reconciling against fallback", "error", pErr)
		remoteProjects = nil
	}
	if dups := core.DuplicateIDs(remoteProjects); len(dups) > 0 {
		slog.WarnContext(ctx, "Remote snapshot has duplicate project ids", "ids", dups)
	}
	merged := core.Reconcile(remoteProjects, s.fallback)

	s.mu.Lock()
	s.projects = merged
	if eErr == nil {
		s.expenses = remoteExpenses
	}
	if lErr == nil {
		s.logs = remoteLogs
		remoteIDs := make(map[int64]struct{}, len(remoteLogs))
		for _, l := range remoteLogs {
			remoteIDs[l.ID] = struct{}{}
		}
		kept := s.pendingLogs[:0]
		for _, l := range s.pendingLogs {
			if _, ok := remoteIDs[l.ID]; !ok {
				kept = append(kept, l)
			}
		}
		s.pendingLogs = kept
	}
	s.mu.Unlock()

	if eErr != nil {
		slog.WarnContext(ctx, "Expense fetch failed, keeping previous list", "error", eErr)
	}
	if lErr != nil {
		slog.WarnContext(ctx, "Access log fetch failed, keeping previous list", "error", lErr)
	}
	return errors.Join(pErr, eErr, lErr)
}

// RecordExpense writes the expenditure through the gateway and mutates
// local state only on an acknowledged success: spent grows, status flips to
// Warning once spent passes budget (and never flips back), and the expense
// joins the local list.
func (s *Session) RecordExpense(ctx context.Context, projectID int64, amount core.Money, date, item, note string) (core.Expense, error) {
	e := core.Expense{
		ID:        s.now().UnixMilli(),
		ProjectID: projectID,
		Date:      date,
		Amount:    amount,
		Item:      item,
		Note:      note,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	found := false
	for _, p := range s.projects {
		if p.ID == projectID {
			found = true
			if p.Status == core.StatusClosed {
				s.mu.Unlock()
				return core.Expense{}, gateway.ErrProjectClosed
			}
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return core.Expense{}, gateway.ErrProjectNotFound
	}

	if err := s.gw.RecordExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == projectID {
			s.projects[i].Spent = s.projects[i].Spent.Add(amount)
			if s.projects[i].Spent.Satang > s.projects[i].Budget.Satang {
				s.projects[i].Status = core.StatusWarning
			}
			break
		}
	}
	s.expenses = append(s.expenses, e)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Expense recorded",
		"project_id", projectID, "amount_satang", amount.Satang, "item", item)
	return e, nil
}

// AddProject applies the project locally right away and forwards the write
// best-effort. There is no rollback; the journal-backed worker is the
// healing path when the forward fails.
func (s *Session) AddProject(ctx context.Context, p core.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.projects = append(s.projects, p)
	s.mu.Unlock()

	s.forward(ctx, storage.KindProjectAdd, p, func(ctx context.Context) error {
		return s.gw.AddProject(ctx, p)
	})
	return nil
}

func (s *Session) UpdateProject(ctx context.Context, p core.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	found := false
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return gateway.ErrProjectNotFound
	}

	s.forward(ctx, storage.KindProjectUpdate, p, func(ctx context.Context) error {
		return s.gw.UpdateProject(ctx, p)
	})
	return nil
}

func (s *Session) DeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	found := false
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return gateway.ErrProjectNotFound
	}

	s.forward(ctx, storage.KindProjectDelete, id, func(ctx context.Context) error {
		return s.gw.DeleteProject(ctx, id)
	})
	return nil
}

// RecordLog prepends a login attempt to the local access log and forwards
// it best-effort. The local prepend is synchronous; a gateway hiccup never
// loses the local record.
func (s *Session) RecordLog(ctx context.Context, username string, role core.Role, status core.LogStatus) core.LogEntry {
	now := s.now()
	entry := core.LogEntry{
		ID:        now.UnixMilli(),
		Timestamp: now.UTC().Format(time.RFC3339),
		Username:  username,
		Role:      role,
		Status:    status,
	}

	s.mu.Lock()
	s.pendingLogs = append([]core.LogEntry{entry}, s.pendingLogs...)
	s.mu.Unlock()

	s.forward(ctx, storage.KindAccessLog, entry, func(ctx context.Context) error {
		return s.gw.AppendLog(ctx, entry)
	})
	return entry
}

// forward sends a best-effort write: journal + dispatch when configured,
// otherwise a detached fire-and-forget gateway call. Failures are logged,
// never returned; the caller's local mutation already happened.
func (s *Session) forward(ctx context.Context, kind storage.WriteKind, payload any, direct func(context.Context) error) {
	if s.journal != nil {
		writeID, err := s.journal.Enqueue(ctx, kind, payload)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to journal write, falling back to direct call",
				"kind", kind, "error", err)
		} else {
			if s.dispatch != nil {
				if err := s.dispatch.PublishWrite(ctx, writeID); err != nil {
					// The startup drain picks the write up later.
					slog.WarnContext(ctx, "Failed to dispatch write, journal retains it",
						"id", writeID, "kind", kind, "error", err)
				}
			}
			return
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := direct(ctx); err != nil {
			slog.ErrorContext(ctx, "Best-effort gateway write failed",
				"kind", kind, "error", err)
		}
	}()
}

// --- read side ---

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Session) Role() core.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Projects returns a snapshot copy of the working collection.
func (s *Session) Projects() []core.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Project(nil), s.projects...)
}

func (s *Session) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...)
}

// Logs returns the access log, newest local entries first.
func (s *Session) Logs() []core.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.LogEntry, 0, len(s.pendingLogs)+len(s.logs))
	out = append(out, s.pendingLogs...)
	return append(out, s.logs...)
}
