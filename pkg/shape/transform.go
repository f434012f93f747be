package shape

// remap builds a new shape of size rows x cols where each source cell
// (r, c) lands at pos(r, c) and each door direction is mapped by dir.
func (s *Shape) remap(name string, rows, cols int, pos func(r, c int) (int, int), dir func(Direction) Direction) *Shape {
	out := &Shape{name: name, rows: rows, cols: cols, cells: make([]*Cell, rows*cols)}
	for i, c := range s.cells {
		if c == nil {
			continue
		}
		nr, nc := pos(i/s.cols, i%s.cols)
		nc2 := &Cell{collectable: c.collectable}
		for _, d := range Directions {
			nc2.doors[dir(d)] = c.doors[d]
		}
		out.cells[nr*cols+nc] = nc2
	}
	out.index()
	return out
}

func rotateCW(d Direction) Direction {
	switch d {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	case West:
		return North
	}
	return d
}

// Rotate90 returns the shape rotated a quarter turn clockwise.
func (s *Shape) Rotate90() *Shape {
	return s.remap(s.name+"@r90", s.cols, s.rows,
		func(r, c int) (int, int) { return c, s.rows - 1 - r },
		rotateCW)
}

// Rotate180 returns the shape rotated a half turn.
func (s *Shape) Rotate180() *Shape {
	return s.remap(s.name+"@r180", s.rows, s.cols,
		func(r, c int) (int, int) { return s.rows - 1 - r, s.cols - 1 - c },
		func(d Direction) Direction { return rotateCW(rotateCW(d)) })
}

// Rotate270 returns the shape rotated a quarter turn counter-clockwise.
func (s *Shape) Rotate270() *Shape {
	return s.remap(s.name+"@r270", s.cols, s.rows,
		func(r, c int) (int, int) { return s.cols - 1 - c, r },
		func(d Direction) Direction { return rotateCW(rotateCW(rotateCW(d))) })
}

// MirrorRows returns the shape flipped top to bottom. North and South doors
// swap.
func (s *Shape) MirrorRows() *Shape {
	return s.remap(s.name+"@mr", s.rows, s.cols,
		func(r, c int) (int, int) { return s.rows - 1 - r, c },
		func(d Direction) Direction {
			if d == North || d == South {
				return d.Opposite()
			}
			return d
		})
}

// MirrorColumns returns the shape flipped left to right. East and West doors
// swap.
func (s *Shape) MirrorColumns() *Shape {
	return s.remap(s.name+"@mc", s.rows, s.cols,
		func(r, c int) (int, int) { return r, s.cols - 1 - c },
		func(d Direction) Direction {
			if d == East || d == West {
				return d.Opposite()
			}
			return d
		})
}

// Variations returns s followed by its distinct rotations and mirrors.
// Variants value-equal to an earlier entry are dropped, so a fully
// symmetric shape yields only itself.
func (s *Shape) Variations() []*Shape {
	m := s.MirrorRows()
	candidates := []*Shape{
		s, s.Rotate90(), s.Rotate180(), s.Rotate270(),
		m, m.Rotate90(), m.Rotate180(), m.Rotate270(),
	}
	out := make([]*Shape, 0, len(candidates))
	for _, c := range candidates {
		dup := false
		for _, o := range out {
			if o.ValueEqual(c) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}
