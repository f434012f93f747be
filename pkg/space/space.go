package space

import (
	"fmt"

	"github.com/matzehuels/roomweaver/pkg/shape"
)

// Offset is the position of the to shape's origin relative to the from
// shape's origin.
type Offset struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Configuration is one way of placing shape B next to (or above/below)
// shape A so that a pair of doors lines up.
type Configuration struct {
	Offset    Offset              `json:"offset"`
	FromDoor  shape.DoorPosition  `json:"from_door"`
	ToDoor    shape.DoorPosition  `json:"to_door"`
	Direction shape.EdgeDirection `json:"direction"`
}

// Stacked reports whether the configuration connects the shapes through a
// Top/Bottom door pair, placing them on different floors.
func (c Configuration) Stacked() bool { return c.FromDoor.Direction.Vertical() }

// FloorStep returns the sign of the floor change from A to B: +1 when B
// must sit above A, -1 below, and 0 for in-plane configurations.
func (c Configuration) FloorStep() int { return c.FromDoor.Direction.FloorStep() }

// String formats the configuration for debugging.
func (c Configuration) String() string {
	return fmt.Sprintf("(%d,%d) %v -> %v [%v]", c.Offset.Row, c.Offset.Col, c.FromDoor, c.ToDoor, c.Direction)
}

// Space is the configuration space of an ordered shape pair: every
// alignment of To against From. It is immutable.
type Space struct {
	From    *shape.Shape
	To      *shape.Shape
	configs []Configuration
}

// Compute enumerates every configuration of to relative to from. Offsets
// are scanned row-major from (-rows(to), -cols(to)) to (rows(from),
// cols(from)) inclusive; within an offset configurations follow the door
// order of from.
func Compute(from, to *shape.Shape) *Space {
	s := &Space{From: from, To: to}
	for dr := -to.Rows(); dr <= from.Rows(); dr++ {
		for dc := -to.Cols(); dc <= from.Cols(); dc++ {
			for _, p := range from.AlignedDoors(to, dr, dc) {
				s.configs = append(s.configs, Configuration{
					Offset:    Offset{Row: dr, Col: dc},
					FromDoor:  p.From,
					ToDoor:    p.To,
					Direction: shape.DeriveEdgeDirection(p.From.Door.Type, p.To.Door.Type),
				})
			}
		}
	}
	return s
}

// Configurations returns the configurations. The slice must not be modified;
// callers that reorder it should copy it first.
func (s *Space) Configurations() []Configuration { return s.configs }

// Len returns the number of configurations.
func (s *Space) Len() int { return len(s.configs) }

// Empty reports whether the shapes cannot be connected at all.
func (s *Space) Empty() bool { return len(s.configs) == 0 }
