package shape

import (
	"fmt"
	"strings"
)

// ID is a shape handle issued by a catalog. Shapes are compared by handle,
// never by content.
type ID int

// NoID is the handle of a shape that is not registered in any catalog.
const NoID ID = -1

// Builder assembles a [Shape]. Calls are chained; the first error is kept
// and reported by [Builder.Build].
//
//	s, err := shape.NewBuilder("corridor", 1, 3).
//		Fill().
//		Door(0, 0, shape.West, shape.Door{Type: shape.TwoWay}).
//		Door(0, 2, shape.East, shape.Door{Type: shape.TwoWay}).
//		Build()
type Builder struct {
	name  string
	rows  int
	cols  int
	cells []*Cell
	err   error
}

// NewBuilder returns a builder for an empty rows x cols grid.
func NewBuilder(name string, rows, cols int) *Builder {
	b := &Builder{name: name, rows: rows, cols: cols}
	if rows <= 0 || cols <= 0 {
		b.err = fmt.Errorf("%w: %dx%d grid", ErrOutOfBounds, rows, cols)
		return b
	}
	b.cells = make([]*Cell, rows*cols)
	return b
}

func (b *Builder) at(row, col int) (int, bool) {
	if b.err != nil {
		return 0, false
	}
	if row < 0 || col < 0 || row >= b.rows || col >= b.cols {
		b.err = fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, row, col, b.rows, b.cols)
		return 0, false
	}
	return row*b.cols + col, true
}

// Cell marks (row, col) as occupied.
func (b *Builder) Cell(row, col int) *Builder {
	if i, ok := b.at(row, col); ok && b.cells[i] == nil {
		b.cells[i] = &Cell{}
	}
	return b
}

// Fill marks every cell of the grid as occupied.
func (b *Builder) Fill() *Builder {
	if b.err != nil {
		return b
	}
	for i := range b.cells {
		if b.cells[i] == nil {
			b.cells[i] = &Cell{}
		}
	}
	return b
}

// Door attaches a door to side dir of the occupied cell (row, col).
func (b *Builder) Door(row, col int, dir Direction, door Door) *Builder {
	i, ok := b.at(row, col)
	if !ok {
		return b
	}
	if b.cells[i] == nil {
		b.err = fmt.Errorf("%w: door at (%d,%d)", ErrEmptyCell, row, col)
		return b
	}
	if int(dir) >= numDirections {
		b.err = fmt.Errorf("%w: %d", ErrInvalidDirection, dir)
		return b
	}
	b.cells[i].doors[dir] = door
	return b
}

// Collectable adds a collectable slot of the given group to (row, col).
func (b *Builder) Collectable(row, col int, group string) *Builder {
	i, ok := b.at(row, col)
	if !ok {
		return b
	}
	if b.cells[i] == nil {
		b.err = fmt.Errorf("%w: collectable at (%d,%d)", ErrEmptyCell, row, col)
		return b
	}
	b.cells[i].collectable = group
	return b
}

// Build validates the grid and returns the finished shape.
func (b *Builder) Build() (*Shape, error) {
	if b.err != nil {
		return nil, fmt.Errorf("shape %q: %w", b.name, b.err)
	}
	s := &Shape{name: b.name, rows: b.rows, cols: b.cols, cells: make([]*Cell, len(b.cells))}
	for i, c := range b.cells {
		if c != nil {
			cc := *c
			s.cells[i] = &cc
		}
	}
	if s.CellCount() == 0 {
		return nil, fmt.Errorf("shape %q: %w", b.name, ErrEmptyShape)
	}
	s.index()
	return s, nil
}

// Parse builds a doorless shape from a text grid: '#' (or any character
// other than '.' and ' ') marks an occupied cell. Rows may differ in length;
// the grid is as wide as the longest row.
func Parse(name string, grid []string) (*Builder, error) {
	cols := 0
	for _, line := range grid {
		cols = max(cols, len(line))
	}
	b := NewBuilder(name, len(grid), cols)
	for r, line := range grid {
		for c, ch := range line {
			if !strings.ContainsRune(". ", ch) {
				b.Cell(r, c)
			}
		}
	}
	return b, b.err
}

// MustBuild is like Build but panics on error. Intended for tests and
// package-level fixtures.
func (b *Builder) MustBuild() *Shape {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
