package setlist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/franz/score-stand/internal/util"
)

func intp(n int) *int { return &n }

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := Load(filepath.Join(t.TempDir(), "setlists.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestItem_UnmarshalDefaults(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Item
	}{
		{
			name: "zero start becomes one",
			raw:  `{"path":"a.pdf","title":"A","composer":"","start_page":0,"end_page":null}`,
			want: Item{Path: "a.pdf", Title: "A", StartPage: 1},
		},
		{
			name: "missing start becomes one",
			raw:  `{"path":"a.pdf","title":"A"}`,
			want: Item{Path: "a.pdf", Title: "A", StartPage: 1},
		},
		{
			name: "negative end becomes open",
			raw:  `{"path":"a.pdf","start_page":2,"end_page":-3}`,
			want: Item{Path: "a.pdf", StartPage: 2},
		},
		{
			name: "backslash path normalized",
			raw:  `{"path":"Z:\\scores\\suite.pdf","start_page":1}`,
			want: Item{Path: "Z:/scores/suite.pdf", StartPage: 1},
		},
		{
			name: "valid bounds untouched",
			raw:  `{"path":"a.pdf","start_page":3,"end_page":7}`,
			want: Item{Path: "a.pdf", StartPage: 3, EndPage: intp(7)},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got Item
			if err := json.Unmarshal([]byte(c.raw), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("got %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestItem_OpenEndStaysNullOnWire(t *testing.T) {
	raw, err := json.Marshal(Item{Path: "a.pdf", StartPage: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"end_page":null`) {
		t.Errorf("open end must serialize as null, got %s", raw)
	}
}

func TestItem_Resolve(t *testing.T) {
	cases := []struct {
		name      string
		item      Item
		pageCount int
		wantStart int
		wantEnd   int
	}{
		{"open end spans document", Item{StartPage: 1}, 10, 0, 9},
		{"start beyond document falls to first page", Item{StartPage: 50}, 10, 0, 9},
		{"huge start falls to first page", Item{StartPage: 999, EndPage: intp(3)}, 10, 0, 2},
		{"plain range", Item{StartPage: 3, EndPage: intp(7)}, 10, 2, 6},
		{"end clamps to last page", Item{StartPage: 2, EndPage: intp(50)}, 10, 1, 9},
		{"crossed after clamping collapses", Item{StartPage: 8, EndPage: intp(3)}, 10, 7, 7},
		{"single page document", Item{StartPage: 1}, 1, 0, 0},
		{"empty document", Item{StartPage: 4, EndPage: intp(9)}, 0, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			start, end := c.item.Resolve(c.pageCount)
			if start != c.wantStart || end != c.wantEnd {
				t.Errorf("Resolve(%d) = [%d, %d], want [%d, %d]",
					c.pageCount, start, end, c.wantStart, c.wantEnd)
			}
		})
	}
}

func TestManager_CreateAddPersist(t *testing.T) {
	m := newTestManager(t)
	if err := m.Create("Sunday Service"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Add("Sunday Service", Item{
		Path: `Z:\scores\Bach - Air.pdf`, Title: "Air", Composer: "Bach", StartPage: 1,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add("Sunday Service", Item{
		Path: "/mnt/z/scores/Handel - Largo.pdf", Title: "Largo", Composer: "Handel",
		StartPage: 0, EndPage: intp(-2),
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	items, err := m.Items("Sunday Service")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if items[0].Path != "Z:/scores/Bach - Air.pdf" {
		t.Errorf("path not made portable: %q", items[0].Path)
	}
	if items[1].StartPage != 1 || items[1].EndPage != nil {
		t.Errorf("bounds not normalized: %+v", items[1])
	}

	// Mutations persist immediately; a fresh manager sees them.
	fresh, err := Load(m.Path())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := fresh.Items("Sunday Service")
	if err != nil {
		t.Fatalf("Items after reload: %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("reload mismatch:\n got  %+v\n want %+v", got, items)
	}

	raw, _ := os.ReadFile(m.Path())
	if strings.Contains(string(raw), `\\`) {
		t.Errorf("stored document contains backslashes: %s", raw)
	}
}

func TestManager_CreateExistingResets(t *testing.T) {
	m := newTestManager(t)
	m.Create("gig")
	m.Add("gig", Item{Path: "a.pdf", StartPage: 1})
	if err := m.Create("gig"); err != nil {
		t.Fatalf("Create over existing: %v", err)
	}
	items, _ := m.Items("gig")
	if len(items) != 0 {
		t.Errorf("last write wins: expected reset list, got %+v", items)
	}
}

func TestManager_CreateBlankName(t *testing.T) {
	m := newTestManager(t)
	if err := m.Create("   "); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestManager_RenameAndDelete(t *testing.T) {
	m := newTestManager(t)
	m.Create("old name")
	m.Add("old name", Item{Path: "a.pdf", StartPage: 1})

	if err := m.Rename("old name", "new name"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := m.Items("old name"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("old name should be gone, got %v", err)
	}
	items, err := m.Items("new name")
	if err != nil || len(items) != 1 {
		t.Fatalf("items lost in rename: %v %v", items, err)
	}

	if err := m.Rename("ghost", "x"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("renaming a missing setlist should report ErrNotFound, got %v", err)
	}

	if err := m.Delete("new name"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.Delete("new name"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("double delete should report ErrNotFound, got %v", err)
	}
}

func TestManager_RemoveBounds(t *testing.T) {
	m := newTestManager(t)
	m.Create("gig")
	m.Add("gig", Item{Path: "a.pdf", StartPage: 1})

	if err := m.Remove("gig", 5); !errors.Is(err, util.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if err := m.Remove("gig", -1); !errors.Is(err, util.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if err := m.Remove("gig", 0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items, _ := m.Items("gig")
	if len(items) != 0 {
		t.Errorf("item not removed: %+v", items)
	}
}

func TestManager_MoveIsStable(t *testing.T) {
	m := newTestManager(t)
	m.Create("gig")
	for _, p := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		m.Add("gig", Item{Path: p, StartPage: 1})
	}

	if err := m.Move("gig", 0, 2); err != nil {
		t.Fatalf("Move: %v", err)
	}
	items, _ := m.Items("gig")
	var order []string
	for _, it := range items {
		order = append(order, it.Path)
	}
	want := []string{"b.pdf", "c.pdf", "a.pdf", "d.pdf"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order after move = %v, want %v", order, want)
	}

	if err := m.Move("gig", 1, 9); !errors.Is(err, util.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if err := m.Move("gig", 2, 2); err != nil {
		t.Errorf("moving in place should be a no-op, got %v", err)
	}
}

func TestLoad_CorruptDocumentPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setlists.json")
	garbage := []byte("[this is not a setlist")
	if err := os.WriteFile(path, garbage, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m, err := Load(path)
	if !errors.Is(err, util.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if names := m.Names(); len(names) != 0 {
		t.Errorf("corrupt load should start empty, got %v", names)
	}

	after, _ := os.ReadFile(path)
	if string(after) != string(garbage) {
		t.Errorf("corrupt file rewritten: %q", after)
	}
}
