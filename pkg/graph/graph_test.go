package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/roomweaver/pkg/shape"
)

func build(t *testing.T, n int, edges ...[2]int) *Graph {
	t.Helper()
	g := New()
	for i := 1; i <= n; i++ {
		if err := g.AddNode(Node{ID: i, Group: "rooms"}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New()
	for _, id := range []int{5, 1, 3} {
		if err := g.AddNode(Node{ID: id, Group: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddNode(Node{ID: 3}); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("duplicate AddNode error = %v", err)
	}
	if got := g.NodeIDs(); !slices.Equal(got, []int{1, 3, 5}) {
		t.Errorf("NodeIDs() = %v, want [1 3 5]", got)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d", g.NodeCount())
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"valid", Edge{From: 1, To: 2}, nil},
		{"duplicate", Edge{From: 1, To: 2}, ErrDuplicateEdge},
		{"duplicate reversed", Edge{From: 2, To: 1}, ErrDuplicateEdge},
		{"self loop", Edge{From: 3, To: 3}, ErrSelfLoop},
		{"unknown from", Edge{From: 9, To: 1}, ErrUnknownNode},
		{"unknown to", Edge{From: 1, To: 9}, ErrUnknownNode},
		{"negative chance", Edge{From: 1, To: 3, RoomChance: -0.1}, ErrInvalidRoomChance},
		{"chance above one", Edge{From: 1, To: 3, RoomChance: 1.5}, ErrInvalidRoomChance},
	}
	g := build(t, 3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestNeighborsSorted(t *testing.T) {
	g := build(t, 5, [2]int{3, 5}, [2]int{3, 1}, [2]int{4, 3}, [2]int{2, 3})
	if got := g.Neighbors(3); !slices.Equal(got, []int{1, 2, 4, 5}) {
		t.Errorf("Neighbors(3) = %v", got)
	}
	if g.Degree(3) != 4 || g.Degree(1) != 1 {
		t.Errorf("Degree wrong: %d, %d", g.Degree(3), g.Degree(1))
	}
}

func TestTraverse(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1, Group: "a"})
	_ = g.AddNode(Node{ID: 2, Group: "a"})
	_ = g.AddEdge(Edge{From: 1, To: 2, Direction: shape.ForwardFixed})

	fwd, ok := g.Traverse(1, 2)
	if !ok || fwd.Reversed || fwd.From() != 1 || fwd.To() != 2 || fwd.Direction() != shape.ForwardFixed {
		t.Errorf("Traverse(1,2) = %v reversed=%v dir=%v", fwd, fwd.Reversed, fwd.Direction())
	}
	rev, ok := g.Traverse(2, 1)
	if !ok || !rev.Reversed || rev.From() != 2 || rev.To() != 1 || rev.Direction() != shape.ReverseFixed {
		t.Errorf("Traverse(2,1) = %v reversed=%v dir=%v", rev, rev.Reversed, rev.Direction())
	}
	if rev.Flip() != fwd {
		t.Error("Flip() should undo the reversal")
	}
	if _, ok := g.Traverse(1, 3); ok {
		t.Error("Traverse of missing edge should fail")
	}
}

func TestConnected(t *testing.T) {
	tests := []struct {
		name string
		g    *Graph
		want bool
	}{
		{"empty", New(), true},
		{"single", build(t, 1), true},
		{"path", build(t, 3, [2]int{1, 2}, [2]int{2, 3}), true},
		{"split", build(t, 4, [2]int{1, 2}, [2]int{3, 4}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g.Connected(); got != tt.want {
				t.Errorf("Connected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistances(t *testing.T) {
	g := build(t, 5, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{1, 4})
	d := g.Distances(1)
	want := map[int]int{1: 0, 2: 1, 3: 2, 4: 1}
	for id, w := range want {
		if d[id] != w {
			t.Errorf("distance to %d = %d, want %d", id, d[id], w)
		}
	}
	if _, ok := d[5]; ok {
		t.Error("unreachable node should be absent")
	}
}

func TestValidate(t *testing.T) {
	if err := New().Validate(); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("empty graph error = %v", err)
	}

	g := New()
	_ = g.AddNode(Node{ID: 1})
	if err := g.Validate(); !errors.Is(err, ErrMissingGroup) {
		t.Errorf("node without group error = %v", err)
	}

	g = build(t, 2)
	_ = g.AddEdge(Edge{From: 1, To: 2, RoomChance: 0.5})
	if err := g.Validate(); !errors.Is(err, ErrMissingGroup) {
		t.Errorf("room edge without group error = %v", err)
	}

	g = build(t, 2)
	_ = g.AddEdge(Edge{From: 1, To: 2, RequireRoom: true, Group: "halls"})
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
