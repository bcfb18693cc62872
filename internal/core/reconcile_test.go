package core

import (
	"reflect"
	"testing"
)

func baht(n int64) Money { return Money{Satang: n * 100} }

func testFallback() []Project {
	return []Project{
		{ID: 101, Name: "X", Group: "G", Owner: "A", Budget: baht(50000), Spent: baht(0), Category: "C", Status: StatusActive},
		{ID: 102, Name: "Y", Group: "G2", Budget: baht(8000), Category: "C2", Status: StatusActive},
		{ID: 201, Name: "Z", Group: "G", Budget: baht(12000), Category: "C", Status: StatusClosed},
	}
}

func TestReconcileEmptyRemote(t *testing.T) {
	fallback := testFallback()

	got := Reconcile(nil, fallback)
	if !reflect.DeepEqual(got, fallback) {
		t.Fatalf("Reconcile(nil, fallback) = %+v, want fallback unchanged", got)
	}

	// The result must be a copy, not an alias of the catalog.
	got[0].Name = "mutated"
	if fallback[0].Name != "X" {
		t.Error("Reconcile result aliases the fallback catalog")
	}
}

func TestReconcileFieldRecovery(t *testing.T) {
	remote := []Project{{ID: 101, Name: "", Budget: baht(0), Spent: baht(500), Group: "", Category: "", Status: StatusActive}}

	got := Reconcile(remote, testFallback())
	if len(got) != 1 {
		t.Fatalf("got %d projects, want 1", len(got))
	}
	want := Project{ID: 101, Name: "X", Group: "G", Budget: baht(50000), Spent: baht(500), Category: "C", Status: StatusActive}
	if got[0] != want {
		t.Errorf("merged project = %+v, want %+v", got[0], want)
	}
}

func TestReconcileRemoteWins(t *testing.T) {
	tests := []struct {
		name   string
		remote Project
		check  func(t *testing.T, p Project)
	}{
		{
			name:   "non-empty remote fields pass through",
			remote: Project{ID: 101, Name: "New name", Group: "New group", Budget: baht(999), Spent: baht(10), Category: "New cat", Status: StatusWarning},
			check: func(t *testing.T, p Project) {
				if p.Name != "New name" || p.Group != "New group" || p.Category != "New cat" {
					t.Errorf("remote fields were overridden: %+v", p)
				}
				if p.Budget != baht(999) {
					t.Errorf("budget = %v, want 999", p.Budget)
				}
			},
		},
		{
			name:   "spent zero is honored, never recovered",
			remote: Project{ID: 101, Spent: baht(0), Status: StatusActive},
			check: func(t *testing.T, p Project) {
				if p.Spent.Satang != 0 {
					t.Errorf("spent = %v, want 0", p.Spent)
				}
			},
		},
		{
			name:   "owner and status come from remote",
			remote: Project{ID: 101, Owner: "somebody", Status: StatusClosed},
			check: func(t *testing.T, p Project) {
				if p.Owner != "somebody" || p.Status != StatusClosed {
					t.Errorf("owner/status not taken from remote: %+v", p)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile([]Project{tt.remote}, testFallback())
			if len(got) != 1 {
				t.Fatalf("got %d projects, want 1", len(got))
			}
			tt.check(t, got[0])
		})
	}
}

func TestReconcileRemoteOnlyProject(t *testing.T) {
	remote := []Project{{ID: 999, Name: "", Budget: baht(0), Spent: baht(77), Status: StatusActive}}

	got := Reconcile(remote, testFallback())
	if len(got) != 1 {
		t.Fatalf("got %d projects, want 1", len(got))
	}
	if got[0] != remote[0] {
		t.Errorf("remote-only project changed: %+v", got[0])
	}
}

func TestReconcileOrderAndLength(t *testing.T) {
	remote := []Project{
		{ID: 201, Status: StatusActive},
		{ID: 101, Status: StatusActive},
		{ID: 999, Status: StatusActive},
	}

	got := Reconcile(remote, testFallback())
	if len(got) != len(remote) {
		t.Fatalf("got %d projects, want %d", len(got), len(remote))
	}
	for i := range remote {
		if got[i].ID != remote[i].ID {
			t.Errorf("position %d: id %d, want %d", i, got[i].ID, remote[i].ID)
		}
	}
}

func TestReconcileDuplicateIDsProcessedIndependently(t *testing.T) {
	remote := []Project{
		{ID: 101, Spent: baht(1), Status: StatusActive},
		{ID: 101, Spent: baht(2), Status: StatusActive},
	}

	got := Reconcile(remote, testFallback())
	if len(got) != 2 {
		t.Fatalf("got %d projects, want 2", len(got))
	}
	if got[0].Spent != baht(1) || got[1].Spent != baht(2) {
		t.Errorf("duplicate rows were collapsed: %+v", got)
	}
}

func TestDuplicateIDs(t *testing.T) {
	tests := []struct {
		name     string
		projects []Project
		want     []int64
	}{
		{"no duplicates", testFallback(), nil},
		{"one duplicate", []Project{{ID: 5}, {ID: 7}, {ID: 5}}, []int64{5}},
		{"reported once in first-seen order", []Project{{ID: 7}, {ID: 5}, {ID: 7}, {ID: 5}, {ID: 7}}, []int64{7, 5}},
		{"empty input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DuplicateIDs(tt.projects)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DuplicateIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReconcileDeterministic(t *testing.T) {
	remote := []Project{{ID: 101, Spent: baht(500), Status: StatusActive}, {ID: 999, Status: StatusActive}}
	fallback := testFallback()

	a := Reconcile(remote, fallback)
	b := Reconcile(remote, fallback)
	if !reflect.DeepEqual(a, b) {
		t.Error("Reconcile is not deterministic over identical inputs")
	}
}
