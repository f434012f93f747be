package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/roomweaver/pkg/shape"
)

func square(name string) *shape.Shape {
	d := shape.Door{Type: shape.TwoWay}
	return shape.NewBuilder(name, 1, 1).Fill().
		Door(0, 0, shape.North, d).
		Door(0, 0, shape.East, d).
		Door(0, 0, shape.South, d).
		Door(0, 0, shape.West, d).
		MustBuild()
}

func TestAdd(t *testing.T) {
	c := New()
	a, err := c.Add(square("a"))
	if err != nil || a != 0 {
		t.Fatalf("Add(a) = %d, %v", a, err)
	}
	b, err := c.Add(square("b"))
	if err != nil || b != 1 {
		t.Fatalf("Add(b) = %d, %v", b, err)
	}
	if _, err := c.Add(square("a")); !errors.Is(err, ErrDuplicateShape) {
		t.Errorf("duplicate Add error = %v", err)
	}
	if id, ok := c.Lookup("b"); !ok || id != b {
		t.Errorf("Lookup(b) = %d, %v", id, ok)
	}
	if c.Shape(5) != nil || c.Shape(shape.NoID) != nil {
		t.Error("Shape() should return nil for unknown ids")
	}
}

func TestAddWithVariations(t *testing.T) {
	c := New()
	bar := shape.NewBuilder("bar", 1, 2).Fill().Door(0, 0, shape.West, shape.Door{Type: shape.TwoWay}).MustBuild()
	ids, err := c.AddWithVariations(bar)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 4 || c.Len() != 4 {
		t.Fatalf("ids = %v, Len() = %d, want 4 variants", ids, c.Len())
	}
	if c.Shape(ids[0]).Name() != "bar" {
		t.Errorf("first variant = %q, want bar", c.Shape(ids[0]).Name())
	}

	again, err := c.AddWithVariations(bar.Rotate180())
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 4 || c.Len() != 4 {
		t.Errorf("re-adding a variant grew the catalog to %d", c.Len())
	}
}

func TestGroups(t *testing.T) {
	c := New()
	a, _ := c.Add(square("a"))
	b, _ := c.Add(square("b"))

	tests := []struct {
		name    string
		group   string
		entries []Entry
		want    error
	}{
		{"valid", "rooms", []Entry{{Shape: a, Min: 1, Max: 2}, {Shape: b}}, nil},
		{"duplicate", "rooms", []Entry{{Shape: a}}, ErrDuplicateGroup},
		{"empty", "none", nil, ErrEmptyGroup},
		{"unknown shape", "ghost", []Entry{{Shape: 9}}, ErrUnknownShape},
		{"negative min", "neg", []Entry{{Shape: a, Min: -1}}, ErrInvalidQuantity},
		{"max below min", "inv", []Entry{{Shape: a, Min: 3, Max: 2}}, ErrInvalidQuantity},
		{"unlimited max", "free", []Entry{{Shape: b, Min: 3}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.AddGroup(tt.group, tt.entries...)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddGroup() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := c.Group("missing"); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("Group(missing) error = %v", err)
	}
	groups := c.Groups()
	if len(groups) != 2 || groups[0].Name != "free" || groups[1].Name != "rooms" {
		t.Errorf("Groups() = %v", groups)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSatisfied(t *testing.T) {
	c := New()
	a, _ := c.Add(square("a"))
	b, _ := c.Add(square("b"))
	_ = c.AddGroup("rooms", Entry{Shape: a, Min: 2}, Entry{Shape: b})

	usage := map[shape.ID]int{a: 1}
	ok, group, id := c.Satisfied(func(id shape.ID) int { return usage[id] })
	if ok || group != "rooms" || id != a {
		t.Errorf("Satisfied() = %v, %q, %d", ok, group, id)
	}
	usage[a] = 2
	if ok, _, _ := c.Satisfied(func(id shape.ID) int { return usage[id] }); !ok {
		t.Error("Satisfied() = false after reaching minimum")
	}
}

func TestEntryAtMax(t *testing.T) {
	if (Entry{Max: 0}).AtMax(100) {
		t.Error("unlimited entry should never be at max")
	}
	if !(Entry{Max: 2}).AtMax(2) || (Entry{Max: 2}).AtMax(1) {
		t.Error("AtMax boundary wrong")
	}
}

func TestPrecompute(t *testing.T) {
	c := New()
	_, _ = c.Add(square("a"))
	tbl, err := c.Precompute(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := tbl.Get(0, 0).Len(); got != 4 {
		t.Errorf("square/square = %d configurations, want 4", got)
	}
}
