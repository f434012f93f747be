package space

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/roomweaver/pkg/shape"
)

var twoWay = shape.Door{Type: shape.TwoWay}

func plus(t *testing.T) *shape.Shape {
	t.Helper()
	b, err := shape.Parse("plus", []string{".#.", "###", ".#."})
	if err != nil {
		t.Fatal(err)
	}
	return b.
		Door(0, 1, shape.North, twoWay).
		Door(1, 2, shape.East, twoWay).
		Door(2, 1, shape.South, twoWay).
		Door(1, 0, shape.West, twoWay).
		Door(1, 1, shape.Top, twoWay).
		Door(1, 1, shape.Bottom, twoWay).
		MustBuild()
}

func TestPlusAgainstItself(t *testing.T) {
	s := Compute(plus(t), plus(t))

	var got []string
	for _, c := range s.Configurations() {
		got = append(got, fmt.Sprintf("%d,%d %s-%s", c.Offset.Row, c.Offset.Col, c.FromDoor.Direction, c.ToDoor.Direction))
	}
	want := []string{
		"-3,0 north-south",
		"0,-3 west-east",
		"0,0 top-bottom",
		"0,0 bottom-top",
		"0,3 east-west",
		"3,0 south-north",
	}
	if !slices.Equal(got, want) {
		t.Errorf("configurations =\n%v\nwant\n%v", got, want)
	}
	for _, c := range s.Configurations() {
		if c.Direction != shape.Both {
			t.Errorf("%v: direction = %v, want both", c, c.Direction)
		}
	}
}

func TestSymmetry(t *testing.T) {
	b, _ := shape.Parse("ell", []string{"#.", "##"})
	ell := b.
		Door(0, 0, shape.North, shape.Door{Type: shape.OneWayExit}).
		Door(1, 1, shape.East, twoWay).
		Door(1, 0, shape.Top, shape.Door{Type: shape.TwoWay, Code: 3}).
		MustBuild()
	bar := shape.NewBuilder("bar", 1, 2).Fill().
		Door(0, 0, shape.West, shape.Door{Type: shape.OneWayEntrance}).
		Door(0, 1, shape.South, twoWay).
		Door(0, 1, shape.Bottom, shape.Door{Type: shape.TwoWay, Code: 1}).
		MustBuild()

	shapes := []*shape.Shape{ell, bar, plus(t)}
	for _, a := range shapes {
		for _, b := range shapes {
			ab, ba := Compute(a, b), Compute(b, a)
			if ab.Len() != ba.Len() {
				t.Errorf("%s->%s has %d configurations, reverse has %d", a.Name(), b.Name(), ab.Len(), ba.Len())
			}
			for _, c := range ab.Configurations() {
				found := false
				for _, r := range ba.Configurations() {
					if r.Offset.Row == -c.Offset.Row && r.Offset.Col == -c.Offset.Col &&
						r.FromDoor.Matches(c.ToDoor) && r.ToDoor.Matches(c.FromDoor) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("%s->%s %v has no mirrored configuration", a.Name(), b.Name(), c)
				}
			}
		}
	}
}

func TestDirectionDerived(t *testing.T) {
	a := shape.NewBuilder("a", 1, 1).Fill().Door(0, 0, shape.East, shape.Door{Type: shape.OneWayExit}).MustBuild()
	b := shape.NewBuilder("b", 1, 1).Fill().Door(0, 0, shape.West, twoWay).MustBuild()

	ab := Compute(a, b)
	if ab.Len() != 1 || ab.Configurations()[0].Direction != shape.ForwardFixed {
		t.Fatalf("a->b = %v", ab.Configurations())
	}
	ba := Compute(b, a)
	if ba.Len() != 1 || ba.Configurations()[0].Direction != shape.ReverseFixed {
		t.Fatalf("b->a = %v", ba.Configurations())
	}
}

func TestIncompatibleDoors(t *testing.T) {
	a := shape.NewBuilder("a", 1, 1).Fill().Door(0, 0, shape.East, shape.Door{Type: shape.OneWayExit}).MustBuild()
	b := shape.NewBuilder("b", 1, 1).Fill().Door(0, 0, shape.West, shape.Door{Type: shape.TwoWayExit}).MustBuild()
	if s := Compute(a, b); !s.Empty() {
		t.Errorf("exit to exit produced %v", s.Configurations())
	}
}

func TestPrecompute(t *testing.T) {
	p := plus(t)
	sq := shape.NewBuilder("square", 1, 1).Fill().
		Door(0, 0, shape.North, twoWay).
		Door(0, 0, shape.East, twoWay).
		Door(0, 0, shape.South, twoWay).
		Door(0, 0, shape.West, twoWay).
		MustBuild()

	tbl, err := Precompute(context.Background(), []*shape.Shape{p, sq}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d", tbl.Len())
	}
	if got := tbl.Get(0, 0).Len(); got != 6 {
		t.Errorf("plus/plus = %d configurations, want 6", got)
	}
	if got := tbl.Get(1, 1).Len(); got != 4 {
		t.Errorf("square/square = %d configurations, want 4", got)
	}
	if tbl.Get(0, 1).Len() != tbl.Get(1, 0).Len() {
		t.Error("pair spaces should have equal size")
	}
	if tbl.Get(2, 0) != nil || tbl.Shape(-1) != nil {
		t.Error("out of range lookups should return nil")
	}
}

func TestPrecomputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Precompute(ctx, []*shape.Shape{plus(t)}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
