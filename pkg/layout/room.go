package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/roomweaver/pkg/shape"
)

// ErrInvalidRoomID is returned by [ParseRoomID].
var ErrInvalidRoomID = errors.New("invalid room ID")

// RoomKind tells whether a room realises a graph node or was inserted on an
// edge.
type RoomKind uint8

const (
	NodeRoom RoomKind = iota
	EdgeRoom
)

// RoomID identifies a room by the graph element it came from. Node rooms
// use A = node ID; edge rooms use A = edge from, B = edge to.
type RoomID struct {
	Kind RoomKind
	A, B int
}

// NodeRoomID returns the ID of the room placed for node n.
func NodeRoomID(n int) RoomID { return RoomID{Kind: NodeRoom, A: n} }

// EdgeRoomID returns the ID of the room inserted on the edge from-to, using
// the edge's stored orientation.
func EdgeRoomID(from, to int) RoomID { return RoomID{Kind: EdgeRoom, A: from, B: to} }

// IsEdge reports whether the room was inserted on an edge.
func (id RoomID) IsEdge() bool { return id.Kind == EdgeRoom }

// Less orders node rooms before edge rooms, then by A and B.
func (id RoomID) Less(o RoomID) bool {
	if id.Kind != o.Kind {
		return id.Kind < o.Kind
	}
	if id.A != o.A {
		return id.A < o.A
	}
	return id.B < o.B
}

// String returns "n<id>" for node rooms and "e<from>-<to>" for edge rooms.
func (id RoomID) String() string {
	if id.Kind == EdgeRoom {
		return fmt.Sprintf("e%d-%d", id.A, id.B)
	}
	return fmt.Sprintf("n%d", id.A)
}

// MarshalText implements [encoding.TextMarshaler] so RoomIDs can key JSON
// objects.
func (id RoomID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (id *RoomID) UnmarshalText(b []byte) error {
	v, err := ParseRoomID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ParseRoomID parses the output of [RoomID.String].
func ParseRoomID(s string) (RoomID, error) {
	if len(s) < 2 {
		return RoomID{}, fmt.Errorf("%w: %q", ErrInvalidRoomID, s)
	}
	switch s[0] {
	case 'n':
		n, err := strconv.Atoi(s[1:])
		if err != nil {
			return RoomID{}, fmt.Errorf("%w: %q", ErrInvalidRoomID, s)
		}
		return NodeRoomID(n), nil
	case 'e':
		// Node IDs may be negative, so split on the first '-' after a digit.
		body := s[1:]
		i := strings.Index(body[1:], "-")
		if i < 0 {
			return RoomID{}, fmt.Errorf("%w: %q", ErrInvalidRoomID, s)
		}
		a, errA := strconv.Atoi(body[:i+1])
		b, errB := strconv.Atoi(body[i+2:])
		if errA != nil || errB != nil {
			return RoomID{}, fmt.Errorf("%w: %q", ErrInvalidRoomID, s)
		}
		return EdgeRoomID(a, b), nil
	}
	return RoomID{}, fmt.Errorf("%w: %q", ErrInvalidRoomID, s)
}

// RoomPair is an unordered pair of rooms; the lesser ID is always A.
type RoomPair struct {
	A, B RoomID
}

// NewRoomPair returns the normalised pair of a and b.
func NewRoomPair(a, b RoomID) RoomPair {
	if b.Less(a) {
		a, b = b, a
	}
	return RoomPair{A: a, B: b}
}

// String formats the pair as "a|b".
func (p RoomPair) String() string { return p.A.String() + "|" + p.B.String() }

// Position is a point on the world grid. Floor grows upward.
type Position struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Floor int `json:"floor"`
}

// Add returns p offset by q.
func (p Position) Add(q Position) Position {
	return Position{Row: p.Row + q.Row, Col: p.Col + q.Col, Floor: p.Floor + q.Floor}
}

// String formats the position as "(row,col,floor)".
func (p Position) String() string { return fmt.Sprintf("(%d,%d,%d)", p.Row, p.Col, p.Floor) }

// Box is an axis-aligned block of world cells with inclusive bounds.
type Box struct {
	Min Position `json:"min"`
	Max Position `json:"max"`
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Position) bool {
	return p.Row >= b.Min.Row && p.Row <= b.Max.Row &&
		p.Col >= b.Min.Col && p.Col <= b.Max.Col &&
		p.Floor >= b.Min.Floor && p.Floor <= b.Max.Floor
}

// Intersects reports whether the boxes share a cell.
func (b Box) Intersects(o Box) bool {
	return b.Min.Row <= o.Max.Row && o.Min.Row <= b.Max.Row &&
		b.Min.Col <= o.Max.Col && o.Min.Col <= b.Max.Col &&
		b.Min.Floor <= o.Max.Floor && o.Min.Floor <= b.Max.Floor
}

// Room is a shape placed on the world grid.
type Room struct {
	ID       RoomID   `json:"id"`
	Position Position `json:"position"`
	ShapeID  shape.ID `json:"shape"`

	// Shape is the placed shape; it is resolved from ShapeID when a layout
	// is decoded.
	Shape *shape.Shape `json:"-"`

	// Draw is a random value taken when the room was placed, for callers
	// that decorate rooms deterministically.
	Draw int64 `json:"draw"`

	// Collectables maps a shape slot index to the collectable placed there.
	Collectables map[int]int `json:"collectables,omitempty"`

	Name  string   `json:"name,omitempty"`
	Color string   `json:"color,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Floor returns the floor the room sits on.
func (r *Room) Floor() int { return r.Position.Floor }

// World converts a local shape cell to a world position.
func (r *Room) World(row, col int) Position {
	return Position{Row: r.Position.Row + row, Col: r.Position.Col + col, Floor: r.Position.Floor}
}

// Cells returns the world positions of every occupied cell.
func (r *Room) Cells() []Position {
	var out []Position
	r.Shape.ForEachCell(func(row, col int, _ shape.Cell) {
		out = append(out, r.World(row, col))
	})
	return out
}

// Contains reports whether the room occupies world position p.
func (r *Room) Contains(p Position) bool {
	return p.Floor == r.Position.Floor && r.Shape.Occupied(p.Row-r.Position.Row, p.Col-r.Position.Col)
}

// Label returns the display name, or the room ID when unnamed.
func (r *Room) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID.String()
}

func (r *Room) clone() *Room {
	c := *r
	if r.Collectables != nil {
		c.Collectables = make(map[int]int, len(r.Collectables))
		for k, v := range r.Collectables {
			c.Collectables[k] = v
		}
	}
	return &c
}

// DoorConnection joins two rooms through one door on each. From and To keep
// the orientation the connection was made in. Shaft is set when the rooms
// are more than one floor apart.
type DoorConnection struct {
	From      RoomID              `json:"from"`
	To        RoomID              `json:"to"`
	FromDoor  shape.DoorPosition  `json:"from_door"`
	ToDoor    shape.DoorPosition  `json:"to_door"`
	Direction shape.EdgeDirection `json:"direction"`
	Shaft     *Box                `json:"shaft,omitempty"`
}

// Pair returns the unordered room pair of the connection.
func (c *DoorConnection) Pair() RoomPair { return NewRoomPair(c.From, c.To) }
