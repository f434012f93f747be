package shape

import (
	"errors"
	"testing"
)

var twoWay = Door{Type: TwoWay}

// plus returns a 3x3 plus with outward doors on every arm tip and a
// Top/Bottom pair on the centre cell.
func plus(t *testing.T) *Shape {
	t.Helper()
	b, err := Parse("plus", []string{".#.", "###", ".#."})
	if err != nil {
		t.Fatal(err)
	}
	s, err := b.
		Door(0, 1, North, twoWay).
		Door(1, 2, East, twoWay).
		Door(2, 1, South, twoWay).
		Door(1, 0, West, twoWay).
		Door(1, 1, Top, twoWay).
		Door(1, 1, Bottom, twoWay).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Shape, error)
		want  error
	}{
		{"empty grid", func() (*Shape, error) { return NewBuilder("x", 2, 2).Build() }, ErrEmptyShape},
		{"zero size", func() (*Shape, error) { return NewBuilder("x", 0, 2).Build() }, ErrOutOfBounds},
		{"cell out of bounds", func() (*Shape, error) { return NewBuilder("x", 1, 1).Cell(1, 0).Build() }, ErrOutOfBounds},
		{"door on empty cell", func() (*Shape, error) {
			return NewBuilder("x", 1, 2).Cell(0, 0).Door(0, 1, East, twoWay).Build()
		}, ErrEmptyCell},
		{"slot on empty cell", func() (*Shape, error) {
			return NewBuilder("x", 1, 2).Cell(0, 0).Collectable(0, 1, "gem").Build()
		}, ErrEmptyCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	b, err := Parse("ell", []string{"#.", "##", "#"})
	if err != nil {
		t.Fatal(err)
	}
	s := b.MustBuild()
	if s.Rows() != 3 || s.Cols() != 2 {
		t.Fatalf("size = %dx%d, want 3x2", s.Rows(), s.Cols())
	}
	if s.CellCount() != 4 {
		t.Errorf("CellCount() = %d, want 4", s.CellCount())
	}
	if s.Occupied(0, 1) || !s.Occupied(1, 1) || s.Occupied(2, 1) {
		t.Error("unexpected occupancy")
	}
}

func TestDoorsOrdered(t *testing.T) {
	s := plus(t)
	doors := s.Doors()
	if len(doors) != 6 {
		t.Fatalf("len(Doors()) = %d, want 6", len(doors))
	}
	for i := 1; i < len(doors); i++ {
		a, b := doors[i-1], doors[i]
		if a.Row > b.Row || (a.Row == b.Row && a.Col > b.Col) ||
			(a.Row == b.Row && a.Col == b.Col && a.Direction >= b.Direction) {
			t.Errorf("doors out of order: %v before %v", a, b)
		}
	}
}

func TestIntersects(t *testing.T) {
	s := plus(t)
	tests := []struct {
		dr, dc int
		want   bool
	}{
		{0, 0, true},
		{1, 1, true},
		{2, 2, false}, // corner cells are empty
		{3, 0, false},
		{-2, 0, true},
		{0, 3, false},
	}
	for _, tt := range tests {
		if got := s.Intersects(s, tt.dr, tt.dc); got != tt.want {
			t.Errorf("Intersects(%d,%d) = %v, want %v", tt.dr, tt.dc, got, tt.want)
		}
	}
}

func TestAlignedDoors(t *testing.T) {
	s := plus(t)

	t.Run("south tip to north tip", func(t *testing.T) {
		pairs := s.AlignedDoors(s, 3, 0)
		if len(pairs) != 1 {
			t.Fatalf("got %d pairs, want 1", len(pairs))
		}
		p := pairs[0]
		if p.From.Direction != South || p.To.Direction != North {
			t.Errorf("pair = %v -> %v", p.From, p.To)
		}
		if p.To.Row != 0 || p.To.Col != 1 {
			t.Errorf("To cell = (%d,%d), want (0,1)", p.To.Row, p.To.Col)
		}
	})

	t.Run("stacked", func(t *testing.T) {
		pairs := s.AlignedDoors(s, 0, 0)
		if len(pairs) != 2 {
			t.Fatalf("got %d pairs, want 2", len(pairs))
		}
		for _, p := range pairs {
			if !p.From.Direction.Vertical() || p.To.Direction != p.From.Direction.Opposite() {
				t.Errorf("unexpected pair %v -> %v", p.From, p.To)
			}
		}
	})

	t.Run("no alignment", func(t *testing.T) {
		if pairs := s.AlignedDoors(s, 3, 1); len(pairs) != 0 {
			t.Errorf("got %d pairs, want 0", len(pairs))
		}
	})
}

func TestDoorsAlign(t *testing.T) {
	tests := []struct {
		name     string
		from, to Door
		want     bool
	}{
		{"two way pair", twoWay, twoWay, true},
		{"none", Door{}, twoWay, false},
		{"exit to exit", Door{Type: OneWayExit}, Door{Type: TwoWayExit}, false},
		{"exit to entrance", Door{Type: OneWayExit}, Door{Type: OneWayEntrance}, true},
		{"entrance to entrance", Door{Type: TwoWayEntrance}, Door{Type: OneWayEntrance}, false},
		{"entrance to two way", Door{Type: TwoWayEntrance}, twoWay, true},
		{"codes equal", Door{Type: TwoWay, Code: 4}, Door{Type: TwoWay, Code: 4}, true},
		{"codes intersect", Door{Type: TwoWay, Code: 6}, Door{Type: TwoWay, Code: 3}, true},
		{"codes disjoint", Door{Type: TwoWay, Code: 4}, Door{Type: TwoWay, Code: 3}, false},
		{"code against zero", Door{Type: TwoWay, Code: 4}, twoWay, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DoorsAlign(tt.from, tt.to); got != tt.want {
				t.Errorf("DoorsAlign() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveEdgeDirection(t *testing.T) {
	tests := []struct {
		from, to DoorType
		want     EdgeDirection
	}{
		{TwoWay, TwoWay, Both},
		{OneWayExit, TwoWay, ForwardFixed},
		{TwoWay, OneWayEntrance, ForwardFixed},
		{OneWayEntrance, TwoWay, ReverseFixed},
		{TwoWay, OneWayExit, ReverseFixed},
		{TwoWayExit, TwoWay, ForwardFlexible},
		{TwoWay, TwoWayEntrance, ForwardFlexible},
		{TwoWayEntrance, TwoWay, ReverseFlexible},
		{TwoWay, TwoWayExit, ReverseFlexible},
	}
	for _, tt := range tests {
		if got := DeriveEdgeDirection(tt.from, tt.to); got != tt.want {
			t.Errorf("DeriveEdgeDirection(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestEdgeDirectionAccepts(t *testing.T) {
	tests := []struct {
		required, got EdgeDirection
		want          bool
	}{
		{Both, Both, true},
		{Both, ForwardFixed, false},
		{ForwardFixed, ForwardFixed, true},
		{ForwardFixed, Both, false},
		{ForwardFlexible, ForwardFixed, true},
		{ForwardFlexible, ReverseFixed, false},
		{ReverseFlexible, ReverseFixed, true},
		{ReverseFixed, ForwardFixed, false},
	}
	for _, tt := range tests {
		if got := tt.required.Accepts(tt.got); got != tt.want {
			t.Errorf("%v.Accepts(%v) = %v, want %v", tt.required, tt.got, got, tt.want)
		}
	}
	for e := range edgeDirectionNames {
		if e.Reverse().Reverse() != e {
			t.Errorf("%v reversed twice = %v", e, e.Reverse().Reverse())
		}
	}
}

func TestParseNames(t *testing.T) {
	if d, err := ParseDirection("Up"); err != nil || d != Top {
		t.Errorf("ParseDirection(Up) = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("ParseDirection(sideways) error = %v", err)
	}
	if dt, err := ParseDoorType("one-way-exit"); err != nil || dt != OneWayExit {
		t.Errorf("ParseDoorType(one-way-exit) = %v, %v", dt, err)
	}
	if dt, err := ParseDoorType(""); err != nil || dt != TwoWay {
		t.Errorf("ParseDoorType(\"\") = %v, %v", dt, err)
	}
	if _, err := ParseEdgeDirection("diagonal"); !errors.Is(err, ErrInvalidEdgeDirection) {
		t.Errorf("ParseEdgeDirection(diagonal) error = %v", err)
	}
}

func TestRotations(t *testing.T) {
	b, _ := Parse("ell", []string{"#.", "##"})
	s := b.Door(0, 0, North, twoWay).Collectable(1, 1, "gem").MustBuild()

	r := s.Rotate90()
	// "#." / "##" rotated clockwise is "##" / "#."
	if !r.Occupied(0, 0) || !r.Occupied(0, 1) || !r.Occupied(1, 0) || r.Occupied(1, 1) {
		t.Fatal("Rotate90 occupancy wrong")
	}
	cell, _ := r.Cell(0, 1)
	if !cell.Door(East).Exists() {
		t.Error("north door should face east after Rotate90")
	}
	if slots := r.Slots(); len(slots) != 1 || slots[0].Row != 1 || slots[0].Col != 0 {
		t.Errorf("slot after Rotate90 = %+v", slots)
	}

	if !s.Rotate90().Rotate90().ValueEqual(s.Rotate180()) {
		t.Error("two quarter turns should equal Rotate180")
	}
	if !s.Rotate90().Rotate270().ValueEqual(s) {
		t.Error("Rotate90 then Rotate270 should be identity")
	}
	if !s.MirrorRows().MirrorRows().ValueEqual(s) {
		t.Error("MirrorRows twice should be identity")
	}
	mc, _ := s.MirrorColumns().Cell(0, 1)
	if !mc.Door(North).Exists() {
		t.Error("MirrorColumns should keep north doors")
	}
}

func TestVariations(t *testing.T) {
	if got := len(plus(t).Variations()); got != 1 {
		t.Errorf("symmetric plus has %d variations, want 1", got)
	}

	b, _ := Parse("ell", []string{"#.", "##"})
	if got := len(b.MustBuild().Variations()); got != 4 {
		t.Errorf("doorless ell has %d variations, want 4", got)
	}

	c := NewBuilder("bar", 1, 2).Fill().Door(0, 0, West, twoWay).MustBuild()
	if got := len(c.Variations()); got != 4 {
		t.Errorf("bar with one door has %d variations, want 4", got)
	}
}
