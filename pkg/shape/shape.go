package shape

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrEmptyShape is returned by [Builder.Build] when no cell is occupied.
	ErrEmptyShape = errors.New("shape has no occupied cells")

	// ErrOutOfBounds is returned when a builder call addresses a cell
	// outside the grid.
	ErrOutOfBounds = errors.New("cell out of bounds")

	// ErrEmptyCell is returned when a door or collectable slot is attached
	// to an unoccupied cell.
	ErrEmptyCell = errors.New("cell is not occupied")

	// ErrInvalidDirection is returned by [ParseDirection].
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidDoorType is returned by [ParseDoorType].
	ErrInvalidDoorType = errors.New("invalid door type")

	// ErrInvalidEdgeDirection is returned by [ParseEdgeDirection].
	ErrInvalidEdgeDirection = errors.New("invalid edge direction")
)

// Cell is one occupied grid cell of a shape.
type Cell struct {
	doors       [numDirections]Door
	collectable string
}

// Door returns the door on side d. The zero Door means no door.
func (c Cell) Door(d Direction) Door { return c.doors[d] }

// Collectable returns the collectable group of the cell's slot, or "" when
// the cell has no slot.
func (c Cell) Collectable() string { return c.collectable }

// DoorPosition locates a door on a shape.
type DoorPosition struct {
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Direction Direction `json:"direction"`
	Door      Door      `json:"door"`
}

// String formats the position as "(row,col) direction".
func (p DoorPosition) String() string {
	return fmt.Sprintf("(%d,%d) %s", p.Row, p.Col, p.Direction)
}

// Matches reports whether q names the same door side as p.
func (p DoorPosition) Matches(q DoorPosition) bool {
	return p.Row == q.Row && p.Col == q.Col && p.Direction == q.Direction
}

// DoorPair is a pair of aligned doors: From lies on the receiver shape and
// To on the other shape, both in their own local coordinates.
type DoorPair struct {
	From DoorPosition
	To   DoorPosition
}

// Slot is a collectable slot on a shape. Index is stable for a shape and is
// the key rooms use when recording collectable assignments.
type Slot struct {
	Index int    `json:"index"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Group string `json:"group"`
}

// Shape is an immutable rectangular grid of optional cells. Rotations and
// mirrors return new shapes; a Shape is never modified after [Builder.Build].
//
// Two shapes are the same shape only when they are the same pointer (or the
// same catalog handle); use [Shape.ValueEqual] to compare contents.
type Shape struct {
	name  string
	rows  int
	cols  int
	cells []*Cell // row-major, nil for empty cells
	doors []DoorPosition
	slots []Slot
}

// Name returns the shape name.
func (s *Shape) Name() string { return s.name }

// Rows returns the number of grid rows.
func (s *Shape) Rows() int { return s.rows }

// Cols returns the number of grid columns.
func (s *Shape) Cols() int { return s.cols }

// Cell returns the cell at (row, col) and whether it is occupied.
func (s *Shape) Cell(row, col int) (Cell, bool) {
	if row < 0 || col < 0 || row >= s.rows || col >= s.cols {
		return Cell{}, false
	}
	c := s.cells[row*s.cols+col]
	if c == nil {
		return Cell{}, false
	}
	return *c, true
}

// Occupied reports whether (row, col) is an occupied cell.
func (s *Shape) Occupied(row, col int) bool {
	if row < 0 || col < 0 || row >= s.rows || col >= s.cols {
		return false
	}
	return s.cells[row*s.cols+col] != nil
}

// CellCount returns the number of occupied cells.
func (s *Shape) CellCount() int {
	n := 0
	for _, c := range s.cells {
		if c != nil {
			n++
		}
	}
	return n
}

// Doors returns every door ordered by row, column and direction.
// The returned slice must not be modified.
func (s *Shape) Doors() []DoorPosition { return s.doors }

// Slots returns the collectable slots ordered by row and column.
// The returned slice must not be modified.
func (s *Shape) Slots() []Slot { return s.slots }

// ForEachCell calls fn for every occupied cell in row-major order.
func (s *Shape) ForEachCell(fn func(row, col int, c Cell)) {
	for i, c := range s.cells {
		if c != nil {
			fn(i/s.cols, i%s.cols, *c)
		}
	}
}

// Intersects reports whether other, placed at (dr, dc) relative to s,
// shares at least one occupied cell with s.
func (s *Shape) Intersects(other *Shape, dr, dc int) bool {
	r0, r1 := max(0, dr), min(s.rows, dr+other.rows)
	c0, c1 := max(0, dc), min(s.cols, dc+other.cols)
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			if s.Occupied(r, c) && other.Occupied(r-dr, c-dc) {
				return true
			}
		}
	}
	return false
}

// AlignedDoors returns the door pairs that connect s to other placed at
// (dr, dc) relative to s.
//
// When the shapes overlap, the rooms must lie on different floors, so only
// Top/Bottom doors on shared cells are candidates. When they do not overlap,
// only in-plane doors whose neighbouring cell belongs to other and carries
// the complementary door are candidates. Pairs are returned in the order of
// s's doors.
func (s *Shape) AlignedDoors(other *Shape, dr, dc int) []DoorPair {
	var pairs []DoorPair
	overlap := s.Intersects(other, dr, dc)
	for _, d := range s.doors {
		if d.Direction.Vertical() != overlap {
			continue
		}
		tr, tc := d.Row-dr, d.Col-dc
		if !overlap {
			or, oc := d.Direction.Offset()
			if s.Occupied(d.Row+or, d.Col+oc) {
				continue
			}
			tr, tc = tr+or, tc+oc
		}
		cell, ok := other.Cell(tr, tc)
		if !ok {
			continue
		}
		opp := d.Direction.Opposite()
		door := cell.Door(opp)
		if !door.Exists() || !DoorsAlign(d.Door, door) {
			continue
		}
		pairs = append(pairs, DoorPair{
			From: d,
			To:   DoorPosition{Row: tr, Col: tc, Direction: opp, Door: door},
		})
	}
	return pairs
}

// ValueEqual reports whether s and other have identical dimensions, cells,
// doors and collectable slots. Names are ignored.
func (s *Shape) ValueEqual(other *Shape) bool {
	if s == other {
		return true
	}
	if other == nil || s.rows != other.rows || s.cols != other.cols {
		return false
	}
	for i, c := range s.cells {
		o := other.cells[i]
		if (c == nil) != (o == nil) {
			return false
		}
		if c != nil && *c != *o {
			return false
		}
	}
	return true
}

// String returns a compact description such as "cross 3x3 (5 cells, 4 doors)".
func (s *Shape) String() string {
	return fmt.Sprintf("%s %dx%d (%d cells, %d doors)", s.name, s.rows, s.cols, s.CellCount(), len(s.doors))
}

// index rebuilds the derived door and slot lists.
func (s *Shape) index() {
	s.doors = s.doors[:0]
	s.slots = s.slots[:0]
	for i, c := range s.cells {
		if c == nil {
			continue
		}
		row, col := i/s.cols, i%s.cols
		for _, d := range Directions {
			if c.doors[d].Exists() {
				s.doors = append(s.doors, DoorPosition{Row: row, Col: col, Direction: d, Door: c.doors[d]})
			}
		}
		if c.collectable != "" {
			s.slots = append(s.slots, Slot{Index: len(s.slots), Row: row, Col: col, Group: c.collectable})
		}
	}
	s.doors = slices.Clip(s.doors)
	s.slots = slices.Clip(s.slots)
}
