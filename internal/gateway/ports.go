// Package gateway defines the contract with the remote spreadsheet-backed
// persistence service. The service is a black box reached over HTTP; every
// adapter converts transport failures into wrapped errors and business
// rejections into the sentinel errors below.
package gateway

import (
	"context"
	"errors"

	"budgetboard/internal/core"
)

// Business rejections. Anything not matching one of these is a connectivity
// or data-shape failure the caller degrades on.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("old password does not match")
	ErrWeakPassword       = errors.New("new password rejected by policy")
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectClosed      = errors.New("project is closed")
	ErrUnknownUser        = errors.New("unknown user")
)

// Identity is the result of a successful login.
type Identity struct {
	Role core.Role
	Name string
}

// Ports for the remote gateway.
type (
	Authenticator interface {
		Login(ctx context.Context, username, password string) (Identity, error)
		ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	}

	ProjectStore interface {
		ListProjects(ctx context.Context) ([]core.Project, error)
		AddProject(ctx context.Context, p core.Project) error
		UpdateProject(ctx context.Context, p core.Project) error
		DeleteProject(ctx context.Context, id int64) error
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		// RecordExpense applies the expenditure remotely: it bumps the
		// project's spent, flips its status to Warning when spent passes
		// budget, and appends the expense row. Returns only after the
		// remote store has acknowledged the write.
		RecordExpense(ctx context.Context, e core.Expense) error
	}

	AccessLogStore interface {
		ListLogs(ctx context.Context) ([]core.LogEntry, error)
		AppendLog(ctx context.Context, entry core.LogEntry) error
	}
)

// Gateway is the full remote contract.
type Gateway interface {
	Authenticator
	ProjectStore
	ExpenseStore
	AccessLogStore
}
