package shape

import (
	"fmt"
	"strings"
)

// Direction is the side of a cell a door opens on. North, East, South and
// West lie in the floor plane; Top and Bottom pierce the ceiling and floor.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
	Top
	Bottom

	numDirections = 6
)

// Directions lists every direction in declaration order.
var Directions = [numDirections]Direction{North, East, South, West, Top, Bottom}

var directionNames = [numDirections]string{"north", "east", "south", "west", "top", "bottom"}

// String returns the lowercase direction name.
func (d Direction) String() string {
	if int(d) < numDirections {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", d)
}

// ParseDirection parses a direction name (case-insensitive). Single-letter
// abbreviations n, e, s, w, t and b are accepted.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	case "top", "t", "up":
		return Top, nil
	case "bottom", "b", "down":
		return Bottom, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Opposite returns the complementary direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Top:
		return Bottom
	default:
		return Top
	}
}

// Vertical reports whether d is Top or Bottom.
func (d Direction) Vertical() bool { return d == Top || d == Bottom }

// Offset returns the row and column step toward the neighbouring cell.
// Vertical directions return (0, 0).
func (d Direction) Offset() (dr, dc int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	}
	return 0, 0
}

// FloorStep returns +1 for Top, -1 for Bottom and 0 otherwise.
func (d Direction) FloorStep() int {
	switch d {
	case Top:
		return 1
	case Bottom:
		return -1
	}
	return 0
}

// DoorType describes which ways a door may be traversed.
// The zero value None means the cell side has no door.
type DoorType uint8

const (
	None DoorType = iota
	TwoWay
	TwoWayExit
	TwoWayEntrance
	OneWayExit
	OneWayEntrance
)

var doorTypeNames = map[DoorType]string{
	None:           "none",
	TwoWay:         "two_way",
	TwoWayExit:     "two_way_exit",
	TwoWayEntrance: "two_way_entrance",
	OneWayExit:     "one_way_exit",
	OneWayEntrance: "one_way_entrance",
}

// String returns the snake_case door type name.
func (t DoorType) String() string {
	if s, ok := doorTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("door_type(%d)", t)
}

// ParseDoorType parses a door type name. Dashes and underscores are
// interchangeable and case is ignored.
func ParseDoorType(s string) (DoorType, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if norm == "" {
		return TwoWay, nil
	}
	for t, name := range doorTypeNames {
		if name == norm {
			return t, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidDoorType, s)
}

// IsExit reports whether the door is an exit (two-way or one-way).
func (t DoorType) IsExit() bool { return t == TwoWayExit || t == OneWayExit }

// IsEntrance reports whether the door is an entrance (two-way or one-way).
func (t DoorType) IsEntrance() bool { return t == TwoWayEntrance || t == OneWayEntrance }

// Code is a door bitmask. Zero means the door carries no code.
type Code uint32

// CodesAlign reports whether two door codes may be connected: they are
// equal, share at least one bit, or are both zero.
func CodesAlign(a, b Code) bool {
	return a == b || a&b != 0
}

// Door is the door data attached to one side of a cell.
type Door struct {
	Type DoorType `json:"type"`
	Code Code     `json:"code,omitempty"`
}

// Exists reports whether the door is present.
func (d Door) Exists() bool { return d.Type != None }

// typesAlign applies the door type compatibility table, read from -> to.
func typesAlign(from, to DoorType) bool {
	if from == None || to == None {
		return false
	}
	switch {
	case from == TwoWay:
		return true
	case from.IsExit():
		return !to.IsExit()
	case from.IsEntrance():
		return !to.IsEntrance()
	}
	return false
}

// DoorsAlign reports whether a door on the from room can be connected to a
// door on the to room: both the type table and the code rule must hold.
func DoorsAlign(from, to Door) bool {
	return typesAlign(from.Type, to.Type) && CodesAlign(from.Code, to.Code)
}

// EdgeDirection is the traversal requirement of a connection, read from the
// from room toward the to room.
type EdgeDirection uint8

const (
	Both EdgeDirection = iota
	ForwardFlexible
	ForwardFixed
	ReverseFlexible
	ReverseFixed
)

var edgeDirectionNames = map[EdgeDirection]string{
	Both:            "both",
	ForwardFlexible: "forward_flexible",
	ForwardFixed:    "forward_fixed",
	ReverseFlexible: "reverse_flexible",
	ReverseFixed:    "reverse_fixed",
}

// String returns the snake_case edge direction name.
func (e EdgeDirection) String() string {
	if s, ok := edgeDirectionNames[e]; ok {
		return s
	}
	return fmt.Sprintf("edge_direction(%d)", e)
}

// ParseEdgeDirection parses an edge direction name. An empty string is Both.
func ParseEdgeDirection(s string) (EdgeDirection, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if norm == "" {
		return Both, nil
	}
	for e, name := range edgeDirectionNames {
		if name == norm {
			return e, nil
		}
	}
	return Both, fmt.Errorf("%w: %q", ErrInvalidEdgeDirection, s)
}

// Reverse returns the direction as read from the other end.
func (e EdgeDirection) Reverse() EdgeDirection {
	switch e {
	case ForwardFlexible:
		return ReverseFlexible
	case ForwardFixed:
		return ReverseFixed
	case ReverseFlexible:
		return ForwardFlexible
	case ReverseFixed:
		return ForwardFixed
	}
	return Both
}

// accepts[required] is the set of door-derived directions that satisfy a
// required edge direction.
var accepts = map[EdgeDirection][]EdgeDirection{
	Both:            {Both, ForwardFlexible, ReverseFlexible},
	ForwardFlexible: {Both, ForwardFlexible, ReverseFlexible, ForwardFixed},
	ForwardFixed:    {ForwardFixed},
	ReverseFlexible: {Both, ForwardFlexible, ReverseFlexible, ReverseFixed},
	ReverseFixed:    {ReverseFixed},
}

// Accepts reports whether a connection whose doors yield got satisfies the
// requirement e.
func (e EdgeDirection) Accepts(got EdgeDirection) bool {
	for _, d := range accepts[e] {
		if d == got {
			return true
		}
	}
	return false
}

// DeriveEdgeDirection derives the traversal direction implied by a pair of
// connected door types.
func DeriveEdgeDirection(from, to DoorType) EdgeDirection {
	switch {
	case from == OneWayExit || to == OneWayEntrance:
		return ForwardFixed
	case from == OneWayEntrance || to == OneWayExit:
		return ReverseFixed
	case from == TwoWayExit || to == TwoWayEntrance:
		return ForwardFlexible
	case from == TwoWayEntrance || to == TwoWayExit:
		return ReverseFlexible
	}
	return Both
}

// MarshalText implements [encoding.TextMarshaler].
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (t DoorType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *DoorType) UnmarshalText(b []byte) error {
	v, err := ParseDoorType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (e EdgeDirection) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (e *EdgeDirection) UnmarshalText(b []byte) error {
	v, err := ParseEdgeDirection(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}
