package google

import (
	"testing"

	"budgetboard/internal/core"
)

func TestParseProjects(t *testing.T) {
	rows := [][]interface{}{
		{"101", "Project A", "Group 1", "owner", "50356", "1200.50", "Cat", "Active"},
		{"id", "name", "group", "owner", "budget", "spent", "category", "status"}, // stray header
		{},     // cleared row
		{"  "}, // blank cell
		{"202", "Project B", "Group 2", "", "22000", "", "Cat2", "Warning"},
		{"303", "Short row"},
	}

	got := parseProjects(rows)
	if len(got) != 3 {
		t.Fatalf("parsed %d projects, want 3", len(got))
	}

	p := got[0]
	if p.ID != 101 || p.Name != "Project A" || p.Budget.Satang != 5035600 || p.Spent.Satang != 120050 {
		t.Errorf("first project = %+v", p)
	}
	if got[1].Status != core.StatusWarning {
		t.Errorf("second project status = %q, want Warning", got[1].Status)
	}
	if got[1].Spent.Satang != 0 {
		t.Errorf("blank spent cell = %d, want 0", got[1].Spent.Satang)
	}
	// Missing trailing columns degrade to zero values, never panic.
	if got[2].ID != 303 || got[2].Status != core.StatusActive {
		t.Errorf("short row = %+v", got[2])
	}
}

func TestParseProjectRowInvalidStatus(t *testing.T) {
	p, ok := parseProjectRow([]interface{}{"101", "X", "", "", "1", "0", "", "Paused"})
	if !ok {
		t.Fatal("row rejected")
	}
	if p.Status != core.StatusActive {
		t.Errorf("status = %q, want fallback Active", p.Status)
	}
}

func TestParseExpenses(t *testing.T) {
	rows := [][]interface{}{
		{"1726000000000", "101", "2026-01-15", "1500", "ค่าวัสดุ", "note"},
		{"", "", "", "", ""},           // blank
		{"2", "abc", "2026-01-15", "5", "x"}, // non-numeric project id
		{"3", "202", "garbage-date", "n/a", "y"},
	}

	got := parseExpenses(rows)
	if len(got) != 2 {
		t.Fatalf("parsed %d expenses, want 2", len(got))
	}
	if got[0].ProjectID != 101 || got[0].Amount.Satang != 150000 || got[0].Note != "note" {
		t.Errorf("first expense = %+v", got[0])
	}
	// Bad date and amount survive parsing; bucketing skips them later.
	if got[1].Date != "garbage-date" || got[1].Amount.Satang != 0 {
		t.Errorf("second expense = %+v", got[1])
	}
}

func TestParseLogs(t *testing.T) {
	rows := [][]interface{}{
		{"1726000000001", "2026-01-15T08:00:00Z", "admin", "admin", "Success"},
		{"1726000000002", "2026-01-15T08:01:00Z", "intruder", "분류불가", "Failed"},
		{"not-an-id", "", "", "", ""},
		{"1726000000003", "2026-01-15T08:02:00Z", "someone", "user", "Whatever"},
	}

	got := parseLogs(rows)
	if len(got) != 3 {
		t.Fatalf("parsed %d logs, want 3", len(got))
	}
	if got[0].Role != core.RoleAdmin || got[0].Status != core.LogSuccess {
		t.Errorf("first log = %+v", got[0])
	}
	if got[1].Role != core.RoleUnknown {
		t.Errorf("unrecognized role = %q, want unknown", got[1].Role)
	}
	if got[2].Status != core.LogFailed {
		t.Errorf("unrecognized status = %q, want Failed fallback", got[2].Status)
	}
}

func TestRowRendering(t *testing.T) {
	p := core.Project{ID: 101, Name: "X", Group: "G", Owner: "O", Budget: core.Money{Satang: 5035600}, Spent: core.Money{Satang: 50}, Category: "C", Status: core.StatusActive}
	row := projectRow(p)
	if len(row) != 8 {
		t.Fatalf("project row has %d columns, want 8", len(row))
	}
	if row[0] != "101" || row[4] != 50356.0 || row[7] != "Active" {
		t.Errorf("project row = %v", row)
	}

	roundTripped, ok := parseProjectRow(row)
	if !ok {
		t.Fatal("rendered row failed to parse")
	}
	if roundTripped != p {
		t.Errorf("round trip = %+v, want %+v", roundTripped, p)
	}
}
