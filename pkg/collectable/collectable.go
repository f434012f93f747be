// Package collectable distributes collectables over the slots of a placed
// layout.
//
// Shapes mark some cells as collectable slots, each tagged with a group
// name. [Place] fills slots group by group (in name order), picking each
// slot at random with a weight that grows with the room-graph distance to
// the nearest slot filled so far:
//
//	weight = (distance + 1) ^ WeightExponent
//
// so collectables spread out across the layout instead of clustering.
// Rooms are compared by hops along door connections. Before the first slot
// is filled every room counts as maximally distant.
//
// Placement draws from the same [rng.Random] the search used, so it is
// reproducible for a given seed. It never moves rooms.
package collectable

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/rng"
)

// DefaultWeightExponent favours distant slots quadratically.
const DefaultWeightExponent = 2.0

var (
	// ErrNotEnoughSlots is returned when a group has more collectables than
	// free slots.
	ErrNotEnoughSlots = errors.New("not enough collectable slots")

	// ErrInvalidExponent is returned for a negative or non-finite exponent.
	ErrInvalidExponent = errors.New("weight exponent must be a finite value >= 0")
)

// Groups maps a slot group name to the collectable IDs placed in it.
type Groups map[string][]int

// Options tunes placement.
type Options struct {
	// WeightExponent shapes the distance bias. Zero samples uniformly.
	WeightExponent float64 `json:"weight_exponent,omitempty" toml:"weight_exponent" yaml:"weight_exponent"`
}

// Assignment records one placed collectable.
type Assignment struct {
	Group string        `json:"group"`
	ID    int           `json:"id"`
	Room  layout.RoomID `json:"room"`
	Slot  int           `json:"slot"`
}

// candidate is a free slot.
type candidate struct {
	room layout.RoomID
	slot int
}

// Place assigns every collectable in groups to a free slot of its group and
// records it on the layout. It stops at the first group that runs out of
// slots; collectables placed before that stay on the layout.
func Place(l *layout.Layout, groups Groups, r *rng.Random, opts Options) ([]Assignment, error) {
	if opts.WeightExponent < 0 || math.IsNaN(opts.WeightExponent) || math.IsInf(opts.WeightExponent, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExponent, opts.WeightExponent)
	}

	free := freeSlots(l)
	filled := mapset.New[layout.RoomID]()
	for _, room := range l.Rooms() {
		if len(room.Collectables) > 0 {
			filled.Put(room.ID)
		}
	}

	var out []Assignment
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		for _, id := range groups[name] {
			cands := free[name]
			if len(cands) == 0 {
				return out, fmt.Errorf("%w: group %q has no slot for collectable %d", ErrNotEnoughSlots, name, id)
			}
			dist := distances(l, filled)
			i := pick(cands, dist, l.RoomCount(), opts.WeightExponent, r)
			c := cands[i]
			if err := l.SetCollectable(c.room, c.slot, id); err != nil {
				return out, err
			}
			free[name] = slices.Delete(cands, i, i+1)
			filled.Put(c.room)
			out = append(out, Assignment{Group: name, ID: id, Room: c.room, Slot: c.slot})
		}
	}
	return out, nil
}

// freeSlots lists the unfilled slots of every group in room order, then
// slot order.
func freeSlots(l *layout.Layout) map[string][]candidate {
	out := make(map[string][]candidate)
	for _, room := range l.Rooms() {
		for _, s := range room.Shape.Slots() {
			if _, taken := room.Collectables[s.Index]; taken {
				continue
			}
			out[s.Group] = append(out[s.Group], candidate{room: room.ID, slot: s.Index})
		}
	}
	return out
}

// distances runs a multi-source BFS over door connections from the filled
// rooms. Rooms it cannot reach are absent.
func distances(l *layout.Layout, filled mapset.Set[layout.RoomID]) map[layout.RoomID]int {
	dist := make(map[layout.RoomID]int, l.RoomCount())
	var queue []layout.RoomID
	filled.Each(func(id layout.RoomID) {
		dist[id] = 0
		queue = append(queue, id)
	})
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range l.Neighbors(cur) {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// pick draws one candidate index by weight. Rooms without a distance use
// maxDist.
func pick(cands []candidate, dist map[layout.RoomID]int, maxDist int, exp float64, r *rng.Random) int {
	weights := make([]float64, len(cands))
	total := 0.0
	for i, c := range cands {
		d, ok := dist[c.room]
		if !ok {
			d = maxDist
		}
		weights[i] = math.Pow(float64(d+1), exp)
		total += weights[i]
	}
	x := r.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(cands) - 1
}

// Assignments lists the collectables already recorded on l, in room order
// then slot order. It recovers the result of [Place] from a stored layout.
func Assignments(l *layout.Layout) []Assignment {
	var out []Assignment
	for _, room := range l.Rooms() {
		for _, s := range room.Shape.Slots() {
			if id, ok := room.Collectables[s.Index]; ok {
				out = append(out, Assignment{Group: s.Group, ID: id, Room: room.ID, Slot: s.Index})
			}
		}
	}
	return out
}
