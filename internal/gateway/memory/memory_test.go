package memory

import (
	"context"
	"errors"
	"testing"

	"budgetboard/internal/core"
	"budgetboard/internal/gateway"
)

func baht(n int64) core.Money { return core.Money{Satang: n * 100} }

func seeded() *Store {
	return New(
		[]core.Project{
			{ID: 101, Name: "P1", Group: "G", Budget: baht(500), Status: core.StatusActive},
			{ID: 104, Name: "P2", Group: "G", Budget: baht(0), Status: core.StatusClosed},
		},
		[]User{{Username: "admin", Password: "secret", Role: core.RoleAdmin, Name: "Admin"}},
	)
}

func TestLogin(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	id, err := s.Login(ctx, "ADMIN", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id.Role != core.RoleAdmin || id.Name != "Admin" {
		t.Errorf("identity = %+v", id)
	}

	if _, err := s.Login(ctx, "admin", "wrong"); !errors.Is(err, gateway.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Login(ctx, "ghost", "secret"); !errors.Is(err, gateway.ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestChangePassword(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	if err := s.ChangePassword(ctx, "admin", "nope", "newpass"); !errors.Is(err, gateway.ErrPasswordMismatch) {
		t.Errorf("err = %v, want ErrPasswordMismatch", err)
	}
	if err := s.ChangePassword(ctx, "admin", "secret", "x"); !errors.Is(err, gateway.ErrWeakPassword) {
		t.Errorf("err = %v, want ErrWeakPassword", err)
	}
	if err := s.ChangePassword(ctx, "admin", "secret", "newpass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := s.Login(ctx, "admin", "newpass"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestRecordExpense(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	err := s.RecordExpense(ctx, core.Expense{ID: 1, ProjectID: 101, Date: "2026-01-15", Amount: baht(1000), Item: "supplies"})
	if err != nil {
		t.Fatalf("RecordExpense: %v", err)
	}

	projects, _ := s.ListProjects(ctx)
	if projects[0].Spent != baht(1000) {
		t.Errorf("spent = %v, want 1000", projects[0].Spent)
	}
	if projects[0].Status != core.StatusWarning {
		t.Errorf("status = %q, want Warning after overspend", projects[0].Status)
	}

	expenses, _ := s.ListExpenses(ctx)
	if len(expenses) != 1 {
		t.Errorf("got %d expenses, want 1", len(expenses))
	}
}

func TestRecordExpenseRejections(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	tests := []struct {
		name    string
		expense core.Expense
		wantErr error
	}{
		{"closed project", core.Expense{ProjectID: 104, Date: "2026-01-15", Amount: baht(10), Item: "x"}, gateway.ErrProjectClosed},
		{"unknown project", core.Expense{ProjectID: 999, Date: "2026-01-15", Amount: baht(10), Item: "x"}, gateway.ErrProjectNotFound},
		{"invalid amount", core.Expense{ProjectID: 101, Date: "2026-01-15", Amount: baht(0), Item: "x"}, core.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.RecordExpense(ctx, tt.expense); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if expenses, _ := s.ListExpenses(ctx); len(expenses) != 0 {
		t.Errorf("rejected expenses were stored: %d rows", len(expenses))
	}
}

func TestProjectCRUD(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	if err := s.AddProject(ctx, core.Project{ID: 301, Name: "New", Status: core.StatusActive}); err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if err := s.UpdateProject(ctx, core.Project{ID: 301, Name: "Renamed", Status: core.StatusActive}); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if err := s.UpdateProject(ctx, core.Project{ID: 888}); !errors.Is(err, gateway.ErrProjectNotFound) {
		t.Errorf("update missing: err = %v", err)
	}
	if err := s.DeleteProject(ctx, 301); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if err := s.DeleteProject(ctx, 301); !errors.Is(err, gateway.ErrProjectNotFound) {
		t.Errorf("delete missing: err = %v", err)
	}

	projects, _ := s.ListProjects(ctx)
	if len(projects) != 2 {
		t.Errorf("got %d projects, want the 2 seeded", len(projects))
	}
}

func TestLogsAppendOnly(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if err := s.AppendLog(ctx, core.LogEntry{ID: i, Username: "admin", Role: core.RoleAdmin, Status: core.LogSuccess}); err != nil {
			t.Fatalf("AppendLog: %v", err)
		}
	}
	logs, err := s.ListLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 || logs[0].ID != 1 {
		t.Errorf("logs = %+v", logs)
	}
}
