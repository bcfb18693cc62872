package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"budgetboard/internal/core"
)

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	if len(a) == 0 {
		t.Fatal("bundled catalog is empty")
	}
	a[0].Name = "mutated"
	if Default()[0].Name == "mutated" {
		t.Error("Default() shares its backing array between calls")
	}
}

func TestDefaultCoversAllSeries(t *testing.T) {
	g := core.GroupBySeries(Default())
	if len(g.First) == 0 || len(g.Second) == 0 || len(g.Third) == 0 {
		t.Errorf("catalog must seed every series: %d/%d/%d", len(g.First), len(g.Second), len(g.Third))
	}
}

func TestDefaultFieldsPopulated(t *testing.T) {
	for _, p := range Default() {
		if p.Name == "" || p.Group == "" || p.Category == "" {
			t.Errorf("project %d has blank recovery fields: %+v", p.ID, p)
		}
		if p.Spent.Satang != 0 {
			t.Errorf("project %d: catalog must never carry spent, got %v", p.ID, p.Spent)
		}
		if !p.Status.IsValid() {
			t.Errorf("project %d: invalid status %q", p.ID, p.Status)
		}
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file falls back", func(t *testing.T) {
		got := FromFile(filepath.Join(dir, "nope.json"))
		if len(got) != len(Default()) {
			t.Errorf("got %d projects, want bundled defaults", len(got))
		}
	})

	t.Run("empty path falls back", func(t *testing.T) {
		if got := FromFile(""); len(got) != len(Default()) {
			t.Errorf("got %d projects, want bundled defaults", len(got))
		}
	})

	t.Run("valid seed file wins", func(t *testing.T) {
		path := filepath.Join(dir, "seed.json")
		seed := `[{"id": 150, "name": "Seeded", "group": "G", "budget": 1000, "spent": 0, "category": "C", "status": "Active"}]`
		if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
			t.Fatal(err)
		}
		got := FromFile(path)
		if len(got) != 1 || got[0].ID != 150 || got[0].Budget.Satang != 100000 {
			t.Errorf("FromFile(seed) = %+v", got)
		}
	})

	t.Run("malformed seed falls back", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if got := FromFile(path); len(got) != len(Default()) {
			t.Errorf("got %d projects, want bundled defaults", len(got))
		}
	})
}
