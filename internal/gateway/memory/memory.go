// Package memory is an in-process gateway used for development and tests.
// It mirrors the remote store's observable behavior, including the
// write-time Warning derivation on expense recording.
package memory

import (
	"context"
	"strings"
	"sync"

	"budgetboard/internal/core"
	"budgetboard/internal/gateway"
)

// User is a seeded account.
type User struct {
	Username string
	Password string
	Role     core.Role
	Name     string
}

type Store struct {
	mu       sync.Mutex
	users    map[string]User
	projects []core.Project
	expenses []core.Expense
	logs     []core.LogEntry
}

var _ gateway.Gateway = (*Store)(nil)

// New creates a store seeded with the given projects and users. The project
// slice is copied; callers keep ownership of theirs.
func New(projects []core.Project, users []User) *Store {
	s := &Store{users: make(map[string]User, len(users))}
	s.projects = append(s.projects, projects...)
	for _, u := range users {
		s.users[strings.ToLower(u.Username)] = u
	}
	return s
}

func (s *Store) Login(_ context.Context, username, password string) (gateway.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(username)]
	if !ok || u.Password != password {
		return gateway.Identity{}, gateway.ErrInvalidCredentials
	}
	return gateway.Identity{Role: u.Role, Name: u.Name}, nil
}

func (s *Store) ChangePassword(_ context.Context, username, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(username)
	u, ok := s.users[key]
	if !ok {
		return gateway.ErrUnknownUser
	}
	if u.Password != oldPassword {
		return gateway.ErrPasswordMismatch
	}
	if len(newPassword) < 4 {
		return gateway.ErrWeakPassword
	}
	u.Password = newPassword
	s.users[key] = u
	return nil
}

func (s *Store) ListProjects(_ context.Context) ([]core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Project(nil), s.projects...), nil
}

func (s *Store) AddProject(_ context.Context, p core.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, p)
	return nil
}

func (s *Store) UpdateProject(_ context.Context, p core.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			return nil
		}
	}
	return gateway.ErrProjectNotFound
}

func (s *Store) DeleteProject(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			return nil
		}
	}
	return gateway.ErrProjectNotFound
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) RecordExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID != e.ProjectID {
			continue
		}
		if s.projects[i].Status == core.StatusClosed {
			return gateway.ErrProjectClosed
		}
		s.projects[i].Spent = s.projects[i].Spent.Add(e.Amount)
		if s.projects[i].Spent.Satang > s.projects[i].Budget.Satang {
			s.projects[i].Status = core.StatusWarning
		}
		s.expenses = append(s.expenses, e)
		return nil
	}
	return gateway.ErrProjectNotFound
}

func (s *Store) ListLogs(_ context.Context) ([]core.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.LogEntry(nil), s.logs...), nil
}

func (s *Store) AppendLog(_ context.Context, entry core.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	return nil
}
