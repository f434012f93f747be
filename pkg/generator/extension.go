package generator

import (
	"slices"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/graph"
	"github.com/matzehuels/roomweaver/pkg/graph/decompose"
	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/shape"
	"github.com/matzehuels/roomweaver/pkg/space"
)

// vertex is a room the chain needs: a graph node, or a room inserted on an
// edge.
type vertex struct {
	id    layout.RoomID
	group string
	floor int
	name  string
	color string
	tags  []string
}

// step connects two vertices in chain order. dir is read from -> to.
type step struct {
	from, to vertex
	dir      shape.EdgeDirection
	code     shape.Code
}

// extension grows one layout copy by one chain. Any failure leaves the copy
// in an unspecified state; the caller discards it.
type extension struct {
	*search
	l *layout.Layout
}

func (x *extension) nodeVertex(id int) vertex {
	n, _ := x.gen.graph.Node(id)
	return vertex{
		id:    layout.NodeRoomID(n.ID),
		group: n.Group,
		floor: n.Floor,
		name:  n.Name,
		color: n.Color,
		tags:  n.Tags,
	}
}

func (x *extension) edgeVertex(e *graph.Edge) vertex {
	from, _ := x.gen.graph.Node(e.From)
	return vertex{
		id:    layout.EdgeRoomID(e.From, e.To),
		group: e.Group,
		floor: from.Floor + e.FloorDelta,
		name:  e.Name,
		color: e.Color,
		tags:  e.Tags,
	}
}

// steps expands a chain, drawing room insertions for probabilistic edges
// before any placement happens.
func (x *extension) steps(c decompose.Chain) []step {
	out := make([]step, 0, len(c.Edges))
	for _, t := range c.Edges {
		e := t.Edge
		a, b := x.nodeVertex(t.From()), x.nodeVertex(t.To())
		dir := t.Direction()

		room := e.RequireRoom || e.RoomChance >= 1
		if !room && e.RoomChance > 0 {
			room = x.rand.Float64() < e.RoomChance
		}
		if !room {
			out = append(out, step{from: a, to: b, dir: dir, code: e.Code})
			continue
		}
		r := x.edgeVertex(e)
		out = append(out,
			step{from: a, to: r, dir: dir, code: e.Code},
			step{from: r, to: b, dir: dir, code: e.Code},
		)
	}
	return out
}

// addChain places the rooms and connections of c. It reports false when
// the chain does not fit this copy, and an error when c is not attached to
// the rooms placed so far.
func (x *extension) addChain(c decompose.Chain) (bool, error) {
	steps := x.steps(c)
	for i := 0; i < len(steps); i++ {
		s := steps[i]
		u, uok := x.l.Room(s.from.id)
		v, vok := x.l.Room(s.to.id)

		if uok && !vok && i+1 < len(steps) && steps[i+1].from.id == s.to.id {
			next := steps[i+1]
			if w, ok := x.l.Room(next.to.id); ok {
				if !x.insert(u, s, w, next) {
					return false, nil
				}
				i++
				continue
			}
		}

		switch {
		case !uok && !vok:
			if !x.placeFresh(s.from) {
				return false, nil
			}
			u, _ = x.l.Room(s.from.id)
			if !x.grow(u, s.to, s.dir, s.code) {
				return false, nil
			}
		case uok && !vok:
			if !x.grow(u, s.to, s.dir, s.code) {
				return false, nil
			}
		case !uok && vok:
			return false, rwerrors.Wrap(rwerrors.ErrCodeStructural, ErrDetachedStep,
				"step %d of chain %s: room %s is unplaced, room %s is placed", i, c, s.from.id, s.to.id)
		default:
			if !x.connect(u, v, s.dir, s.code) {
				return false, nil
			}
		}
	}
	return true, nil
}

// eligible returns the shapes of group that are below their maximum
// quantity, shuffled.
func (x *extension) eligible(group string) []shape.ID {
	g, err := x.gen.catalog.Group(group)
	if err != nil {
		return nil
	}
	var ids []shape.ID
	for _, e := range g.Entries {
		if !e.AtMax(x.l.Usage(e.Shape)) {
			ids = append(ids, e.Shape)
		}
	}
	x.rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// configs returns a shuffled copy of the configuration space of from -> to.
func (x *extension) configs(from, to shape.ID) []space.Configuration {
	sp := x.gen.table.Get(from, to)
	if sp == nil {
		return nil
	}
	cs := slices.Clone(sp.Configurations())
	x.rand.Shuffle(len(cs), func(i, j int) { cs[i], cs[j] = cs[j], cs[i] })
	return cs
}

func (x *extension) newRoom(v vertex, id shape.ID, pos layout.Position) *layout.Room {
	return &layout.Room{
		ID:       v.id,
		Position: pos,
		ShapeID:  id,
		Shape:    x.gen.catalog.Shape(id),
		Draw:     x.rand.Int63(),
		Name:     v.name,
		Color:    v.color,
		Tags:     v.tags,
	}
}

// placeFresh places v with its origin at (0, 0, floor).
func (x *extension) placeFresh(v vertex) bool {
	pos := layout.Position{Floor: v.floor}
	for _, id := range x.eligible(v.group) {
		if !x.l.Fits(x.gen.catalog.Shape(id), pos) {
			continue
		}
		return x.l.AddRoom(x.newRoom(v, id, pos)) == nil
	}
	return false
}

// grow places v against the existing anchor room and connects them.
func (x *extension) grow(anchor *layout.Room, v vertex, dir shape.EdgeDirection, code shape.Code) bool {
	dz := v.floor - anchor.Floor()
	for _, id := range x.eligible(v.group) {
		for _, c := range x.configs(anchor.ShapeID, id) {
			pos, shaft, ok := x.fit(anchor, id, c, dz, dir, code)
			if !ok {
				continue
			}
			if err := x.l.AddRoom(x.newRoom(v, id, pos)); err != nil {
				return false
			}
			return x.l.AddConnection(&layout.DoorConnection{
				From:      anchor.ID,
				To:        v.id,
				FromDoor:  c.FromDoor,
				ToDoor:    c.ToDoor,
				Direction: c.Direction,
				Shaft:     shaft,
			}) == nil
		}
	}
	return false
}

// insert places v between the existing rooms u and w. Both connections are
// validated before anything is committed.
func (x *extension) insert(u *layout.Room, uv step, w *layout.Room, vw step) bool {
	v := uv.to
	dz := v.floor - u.Floor()
	for _, id := range x.eligible(v.group) {
		for _, c1 := range x.configs(u.ShapeID, id) {
			pos, shaft1, ok := x.fit(u, id, c1, dz, uv.dir, uv.code)
			if !ok {
				continue
			}
			c2, shaft2, ok := x.join(id, pos, w, vw.dir, vw.code, func(d shape.DoorPosition) bool {
				return !d.Matches(c1.ToDoor)
			})
			if !ok {
				continue
			}
			if shaft1 != nil && shaft2 != nil && shaft1.Intersects(*shaft2) {
				continue
			}
			if err := x.l.AddRoom(x.newRoom(v, id, pos)); err != nil {
				return false
			}
			first := &layout.DoorConnection{
				From: u.ID, To: v.id,
				FromDoor: c1.FromDoor, ToDoor: c1.ToDoor,
				Direction: c1.Direction, Shaft: shaft1,
			}
			second := &layout.DoorConnection{
				From: v.id, To: w.ID,
				FromDoor: c2.FromDoor, ToDoor: c2.ToDoor,
				Direction: c2.Direction, Shaft: shaft2,
			}
			return x.l.AddConnection(first) == nil && x.l.AddConnection(second) == nil
		}
	}
	return false
}

// connect adds a door connection between two placed rooms.
func (x *extension) connect(a, b *layout.Room, dir shape.EdgeDirection, code shape.Code) bool {
	c, shaft, ok := x.join(a.ShapeID, a.Position, b, dir, code, func(d shape.DoorPosition) bool {
		return x.l.DoorFree(a.ID, d)
	})
	if !ok {
		return false
	}
	return x.l.AddConnection(&layout.DoorConnection{
		From:      a.ID,
		To:        b.ID,
		FromDoor:  c.FromDoor,
		ToDoor:    c.ToDoor,
		Direction: c.Direction,
		Shaft:     shaft,
	}) == nil
}

// join finds the first configuration that links a room of shape from at pos
// with the placed room b at their actual offset. free reports whether a door
// of the from room is still available.
func (x *extension) join(from shape.ID, pos layout.Position, b *layout.Room, dir shape.EdgeDirection, code shape.Code, free func(shape.DoorPosition) bool) (space.Configuration, *layout.Box, bool) {
	sp := x.gen.table.Get(from, b.ShapeID)
	if sp == nil {
		return space.Configuration{}, nil, false
	}
	off := space.Offset{Row: b.Position.Row - pos.Row, Col: b.Position.Col - pos.Col}
	dz := b.Floor() - pos.Floor
	for _, c := range sp.Configurations() {
		if c.Offset != off || !floorOK(c, dz) || !codeOK(c, code) || !dir.Accepts(c.Direction) {
			continue
		}
		if !free(c.FromDoor) || !x.l.DoorFree(b.ID, c.ToDoor) {
			continue
		}
		shaft := shaftFor(pos, c.FromDoor, dz)
		if shaft != nil && !x.l.ShaftFits(*shaft) {
			continue
		}
		return c, shaft, true
	}
	return space.Configuration{}, nil, false
}

// fit checks configuration c for placing a room of shape id against anchor
// and returns the new room's position and shaft.
func (x *extension) fit(anchor *layout.Room, id shape.ID, c space.Configuration, dz int, dir shape.EdgeDirection, code shape.Code) (layout.Position, *layout.Box, bool) {
	if !floorOK(c, dz) || !codeOK(c, code) || !dir.Accepts(c.Direction) {
		return layout.Position{}, nil, false
	}
	if !x.l.DoorFree(anchor.ID, c.FromDoor) {
		return layout.Position{}, nil, false
	}
	pos := layout.Position{
		Row:   anchor.Position.Row + c.Offset.Row,
		Col:   anchor.Position.Col + c.Offset.Col,
		Floor: anchor.Position.Floor + dz,
	}
	if !x.l.Fits(x.gen.catalog.Shape(id), pos) {
		return layout.Position{}, nil, false
	}
	shaft := shaftFor(anchor.Position, c.FromDoor, dz)
	if shaft != nil && !x.l.ShaftFits(*shaft) {
		return layout.Position{}, nil, false
	}
	return pos, shaft, true
}

// floorOK reports whether c can bridge a floor change of dz. Stacked
// configurations need the change in the door's direction; in-plane ones
// need none.
func floorOK(c space.Configuration, dz int) bool {
	switch c.FloorStep() {
	case 1:
		return dz >= 1
	case -1:
		return dz <= -1
	}
	return dz == 0
}

func codeOK(c space.Configuration, code shape.Code) bool {
	return shape.CodesAlign(code, c.FromDoor.Door.Code) && shape.CodesAlign(code, c.ToDoor.Door.Code)
}

// shaftFor returns the shaft needed by a connection that leaves the room at
// origin through door and spans dz floors, or nil when |dz| <= 1.
func shaftFor(origin layout.Position, door shape.DoorPosition, dz int) *layout.Box {
	if dz >= -1 && dz <= 1 {
		return nil
	}
	row, col := origin.Row+door.Row, origin.Col+door.Col
	lo, hi := origin.Floor+1, origin.Floor+dz-1
	if dz < 0 {
		lo, hi = origin.Floor+dz+1, origin.Floor-1
	}
	return &layout.Box{
		Min: layout.Position{Row: row, Col: col, Floor: lo},
		Max: layout.Position{Row: row, Col: col, Floor: hi},
	}
}
