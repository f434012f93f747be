package layout

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/roomweaver/pkg/shape"
)

var (
	// ErrDuplicateRoom is returned by [Layout.AddRoom] for a room ID that is
	// already placed.
	ErrDuplicateRoom = errors.New("room already placed")

	// ErrUnknownRoom is returned when a connection references a room that
	// is not placed.
	ErrUnknownRoom = errors.New("unknown room")

	// ErrCollision is returned when a room or shaft would overlap an
	// existing room cell or shaft.
	ErrCollision = errors.New("collision")

	// ErrDuplicateConnection is returned by [Layout.AddConnection] when the
	// room pair is already connected.
	ErrDuplicateConnection = errors.New("rooms already connected")

	// ErrDoorInUse is returned when a connection would reuse a door.
	ErrDoorInUse = errors.New("door already in use")

	// ErrNoShape is returned when a room has no shape attached.
	ErrNoShape = errors.New("room has no shape")
)

// namespace seeds deterministic layout IDs.
var namespace = uuid.MustParse("8f6f0f8e-5b0a-4c47-9d0e-6b1c2f3a4d5e")

// NewID returns the deterministic ID of the layout generated for name and
// seed. The same pair always yields the same ID.
func NewID(name string, seed int64) string {
	return uuid.NewSHA1(namespace, []byte(name+"\x00"+strconv.FormatInt(seed, 10))).String()
}

type doorKey struct {
	room RoomID
	row  int
	col  int
	dir  shape.Direction
}

// Layout is a set of placed rooms and the door connections between them.
//
// A Layout indexes every occupied world cell, so collision checks are map
// lookups. It is not safe for concurrent mutation. Search code extends
// copies made with [Layout.Copy] and discards the copy on failure.
type Layout struct {
	ID   string
	Name string
	Seed int64

	rooms  map[RoomID]*Room
	conns  map[RoomPair]*DoorConnection
	shapes map[shape.ID]*shape.Shape
	usage  map[shape.ID]int
	cells  map[Position]RoomID
	shafts []Box
	doors  map[doorKey]struct{}

	rebases int
}

// New returns an empty layout.
func New(name string, seed int64) *Layout {
	return &Layout{
		ID:     NewID(name, seed),
		Name:   name,
		Seed:   seed,
		rooms:  make(map[RoomID]*Room),
		conns:  make(map[RoomPair]*DoorConnection),
		shapes: make(map[shape.ID]*shape.Shape),
		usage:  make(map[shape.ID]int),
		cells:  make(map[Position]RoomID),
		doors:  make(map[doorKey]struct{}),
	}
}

// Copy returns a deep copy of the layout for extension and counts one more
// rebase on l. The copy starts with a zero rebase counter.
func (l *Layout) Copy() *Layout {
	l.rebases++
	return l.Clone()
}

// Clone returns a deep copy without touching the rebase counter.
func (l *Layout) Clone() *Layout {
	c := &Layout{
		ID:     l.ID,
		Name:   l.Name,
		Seed:   l.Seed,
		rooms:  make(map[RoomID]*Room, len(l.rooms)),
		conns:  make(map[RoomPair]*DoorConnection, len(l.conns)),
		shapes: maps.Clone(l.shapes),
		usage:  maps.Clone(l.usage),
		cells:  maps.Clone(l.cells),
		shafts: slices.Clone(l.shafts),
		doors:  maps.Clone(l.doors),
	}
	for id, r := range l.rooms {
		c.rooms[id] = r.clone()
	}
	for p, conn := range l.conns {
		cc := *conn
		if conn.Shaft != nil {
			b := *conn.Shaft
			cc.Shaft = &b
		}
		c.conns[p] = &cc
	}
	return c
}

// Rebases returns how many times the layout has been copied for extension.
func (l *Layout) Rebases() int { return l.rebases }

// Fits reports whether s placed with its origin at pos overlaps no room
// cell and no shaft.
func (l *Layout) Fits(s *shape.Shape, pos Position) bool {
	fits := true
	s.ForEachCell(func(row, col int, _ shape.Cell) {
		if !fits {
			return
		}
		p := Position{Row: pos.Row + row, Col: pos.Col + col, Floor: pos.Floor}
		if _, taken := l.cells[p]; taken || l.inShaft(p) {
			fits = false
		}
	})
	return fits
}

func (l *Layout) inShaft(p Position) bool {
	for _, b := range l.shafts {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// AddRoom places r. The room's shape must be set and its cells must be
// free. Usage of the room's shape is incremented.
func (l *Layout) AddRoom(r *Room) error {
	if r.Shape == nil {
		return fmt.Errorf("%s: %w", r.ID, ErrNoShape)
	}
	if _, ok := l.rooms[r.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRoom, r.ID)
	}
	if !l.Fits(r.Shape, r.Position) {
		return fmt.Errorf("%w: room %s at %s", ErrCollision, r.ID, r.Position)
	}
	l.rooms[r.ID] = r
	for _, p := range r.Cells() {
		l.cells[p] = r.ID
	}
	l.shapes[r.ShapeID] = r.Shape
	l.usage[r.ShapeID]++
	return nil
}

// DoorFree reports whether the door at the local position of room id is
// not yet part of a connection.
func (l *Layout) DoorFree(id RoomID, d shape.DoorPosition) bool {
	_, used := l.doors[doorKey{id, d.Row, d.Col, d.Direction}]
	return !used
}

// ShaftFits reports whether b overlaps no room cell and no other shaft.
func (l *Layout) ShaftFits(b Box) bool {
	for _, s := range l.shafts {
		if s.Intersects(b) {
			return false
		}
	}
	for p := range l.cells {
		if b.Contains(p) {
			return false
		}
	}
	return true
}

// AddConnection records a door connection between two placed rooms. Both
// doors must be unused and a shaft, if any, must fit.
func (l *Layout) AddConnection(c *DoorConnection) error {
	if _, ok := l.rooms[c.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoom, c.From)
	}
	if _, ok := l.rooms[c.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoom, c.To)
	}
	pair := c.Pair()
	if _, ok := l.conns[pair]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateConnection, pair)
	}
	if !l.DoorFree(c.From, c.FromDoor) {
		return fmt.Errorf("%w: %s %s", ErrDoorInUse, c.From, c.FromDoor)
	}
	if !l.DoorFree(c.To, c.ToDoor) {
		return fmt.Errorf("%w: %s %s", ErrDoorInUse, c.To, c.ToDoor)
	}
	if c.Shaft != nil {
		if !l.ShaftFits(*c.Shaft) {
			return fmt.Errorf("%w: shaft of %s", ErrCollision, pair)
		}
		l.shafts = append(l.shafts, *c.Shaft)
	}
	l.conns[pair] = c
	l.doors[doorKey{c.From, c.FromDoor.Row, c.FromDoor.Col, c.FromDoor.Direction}] = struct{}{}
	l.doors[doorKey{c.To, c.ToDoor.Row, c.ToDoor.Col, c.ToDoor.Direction}] = struct{}{}
	return nil
}

// Room returns the room with the given ID.
func (l *Layout) Room(id RoomID) (*Room, bool) {
	r, ok := l.rooms[id]
	return r, ok
}

// Rooms returns every room ordered by ID.
func (l *Layout) Rooms() []*Room {
	out := slices.Collect(maps.Values(l.rooms))
	slices.SortFunc(out, func(a, b *Room) int {
		switch {
		case a.ID.Less(b.ID):
			return -1
		case b.ID.Less(a.ID):
			return 1
		}
		return 0
	})
	return out
}

// RoomAt returns the room occupying world position p.
func (l *Layout) RoomAt(p Position) (*Room, bool) {
	id, ok := l.cells[p]
	if !ok {
		return nil, false
	}
	return l.rooms[id], true
}

// Connection returns the connection between a and b in either order.
func (l *Layout) Connection(a, b RoomID) (*DoorConnection, bool) {
	c, ok := l.conns[NewRoomPair(a, b)]
	return c, ok
}

// Connections returns every connection ordered by room pair.
func (l *Layout) Connections() []*DoorConnection {
	out := slices.Collect(maps.Values(l.conns))
	slices.SortFunc(out, func(a, b *DoorConnection) int {
		pa, pb := a.Pair(), b.Pair()
		switch {
		case pa.A.Less(pb.A):
			return -1
		case pb.A.Less(pa.A):
			return 1
		case pa.B.Less(pb.B):
			return -1
		case pb.B.Less(pa.B):
			return 1
		}
		return 0
	})
	return out
}

// Neighbors returns the rooms connected to id, ordered by ID.
func (l *Layout) Neighbors(id RoomID) []RoomID {
	var out []RoomID
	for p := range l.conns {
		switch id {
		case p.A:
			out = append(out, p.B)
		case p.B:
			out = append(out, p.A)
		}
	}
	slices.SortFunc(out, func(a, b RoomID) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	return out
}

// Shafts returns the shaft boxes in the order they were added.
func (l *Layout) Shafts() []Box { return slices.Clone(l.shafts) }

// Usage returns how many rooms use shape id.
func (l *Layout) Usage(id shape.ID) int { return l.usage[id] }

// Shapes returns the shapes in use keyed by handle.
func (l *Layout) Shapes() map[shape.ID]*shape.Shape { return maps.Clone(l.shapes) }

// RoomCount returns the number of rooms.
func (l *Layout) RoomCount() int { return len(l.rooms) }

// ConnectionCount returns the number of door connections.
func (l *Layout) ConnectionCount() int { return len(l.conns) }

// Floors returns the distinct floors that hold room cells, ascending.
func (l *Layout) Floors() []int {
	set := make(map[int]struct{})
	for _, r := range l.rooms {
		set[r.Position.Floor] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Bounds returns the bounding box of all room cells and shafts. ok is false
// for an empty layout.
func (l *Layout) Bounds() (b Box, ok bool) {
	extend := func(p Position) {
		if !ok {
			b, ok = Box{Min: p, Max: p}, true
			return
		}
		b.Min = Position{Row: min(b.Min.Row, p.Row), Col: min(b.Min.Col, p.Col), Floor: min(b.Min.Floor, p.Floor)}
		b.Max = Position{Row: max(b.Max.Row, p.Row), Col: max(b.Max.Col, p.Col), Floor: max(b.Max.Floor, p.Floor)}
	}
	for p := range l.cells {
		extend(p)
	}
	for _, s := range l.shafts {
		extend(s.Min)
		extend(s.Max)
	}
	return b, ok
}

// SetCollectable records that collectable id was placed in slot of room.
func (l *Layout) SetCollectable(room RoomID, slot, id int) error {
	r, ok := l.rooms[room]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoom, room)
	}
	if r.Collectables == nil {
		r.Collectables = make(map[int]int)
	}
	r.Collectables[slot] = id
	return nil
}
