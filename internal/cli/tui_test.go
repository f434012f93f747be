package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/shape"
)

// threeRooms places two single-cell rooms on floor 0 and one on floor 1.
func threeRooms(t *testing.T) *layout.Layout {
	t.Helper()
	b, err := shape.Parse("dot", []string{"#"})
	if err != nil {
		t.Fatal(err)
	}
	dot, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	l := layout.New("tri", 1)
	for i, p := range []layout.Position{{Row: 0, Col: 0}, {Row: 0, Col: 2}, {Row: 1, Col: 0, Floor: 1}} {
		r := &layout.Room{ID: layout.NodeRoomID(i + 1), Position: p, Shape: dot}
		if err := l.AddRoom(r); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func TestFloorGrid(t *testing.T) {
	l := threeRooms(t)
	tests := []struct {
		floor int
		want  string
		rooms int
	}{
		{0, "a·b\n···", 2},
		{1, "···\na··", 1},
		{5, "···\n···", 0},
	}
	for _, tt := range tests {
		g := newFloorGrid(l, tt.floor)
		if got := g.String(); got != tt.want {
			t.Errorf("floor %d:\n%s\nwant:\n%s", tt.floor, got, tt.want)
		}
		if len(g.rooms) != tt.rooms {
			t.Errorf("floor %d has %d rooms, want %d", tt.floor, len(g.rooms), tt.rooms)
		}
	}
}

func TestInspectModelNavigation(t *testing.T) {
	key := func(s string) tea.KeyMsg {
		switch s {
		case "right":
			return tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			return tea.KeyMsg{Type: tea.KeyLeft}
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	step := func(m InspectModel, k string) InspectModel {
		next, _ := m.Update(key(k))
		return next.(InspectModel)
	}

	m := NewInspectModel(threeRooms(t))
	if m.Floor != 0 || len(m.Floors) != 2 {
		t.Fatalf("start floor %d of %v", m.Floor, m.Floors)
	}
	m = step(m, "j")
	if m.Cursor != 1 || m.selected().ID != layout.NodeRoomID(2) {
		t.Errorf("cursor = %d", m.Cursor)
	}
	m = step(m, "j")
	if m.Cursor != 1 {
		t.Errorf("cursor moved past last room: %d", m.Cursor)
	}
	m = step(m, "right")
	if m.Floor != 1 || m.Cursor != 0 || len(m.grid.rooms) != 1 {
		t.Errorf("after right: floor %d cursor %d", m.Floor, m.Cursor)
	}
	m = step(m, "right")
	if m.Floor != 1 {
		t.Errorf("moved past top floor: %d", m.Floor)
	}
	m = step(m, "left")
	if m.Floor != 0 {
		t.Errorf("after left: floor %d", m.Floor)
	}

	view := m.View()
	if !strings.Contains(view, "tri") || !strings.Contains(view, "floor 0") {
		t.Errorf("view missing header:\n%s", view)
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}
