// Package shape models room shapes: immutable rectangular grids of optional
// cells whose sides may carry doors.
//
// # Cells and Doors
//
// Each occupied cell has up to six doors, one per [Direction]. North, East,
// South and West lead to the neighbouring cell on the same floor; Top and
// Bottom lead to the floor above or below. A [Door] has a [DoorType] and a
// bitmask [Code]. Two doors can be connected when the type table of
// [DoorsAlign] holds and their codes are equal or share a bit.
//
// A cell may also carry a collectable slot, named by the collectable group
// it accepts. Slots are listed by [Shape.Slots] with stable indices.
//
// # Building Shapes
//
// Use [NewBuilder] for programmatic construction or [Parse] for a text grid:
//
//	b, _ := shape.Parse("ell", []string{
//		"#.",
//		"##",
//	})
//	s, err := b.Door(0, 0, shape.North, shape.Door{Type: shape.TwoWay}).Build()
//
// # Variants
//
// [Shape.Rotate90], [Shape.Rotate180], [Shape.Rotate270], [Shape.MirrorRows]
// and [Shape.MirrorColumns] return new shapes; door directions follow the
// transform. [Shape.Variations] lists the distinct ones.
//
// # Alignment
//
// [Shape.AlignedDoors] answers the central placement question: if shape B is
// placed at offset (dr, dc) relative to shape A, which door pairs connect
// them? Overlapping placements put the rooms on different floors and only
// connect through Top/Bottom doors; disjoint placements connect through
// in-plane doors facing each other across a cell boundary.
//
// Shapes are safe for concurrent read access.
package shape
