package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/matzehuels/roomweaver/pkg/shape"
	"github.com/matzehuels/roomweaver/pkg/space"
)

var (
	// ErrDuplicateShape is returned by [Catalog.Add] when a shape with the
	// same name is already registered.
	ErrDuplicateShape = errors.New("duplicate shape name")

	// ErrUnknownShape is returned when a group entry references a shape ID
	// that the catalog did not issue.
	ErrUnknownShape = errors.New("unknown shape")

	// ErrDuplicateGroup is returned by [Catalog.AddGroup] for a name that is
	// already taken.
	ErrDuplicateGroup = errors.New("duplicate shape group")

	// ErrUnknownGroup is returned by [Catalog.Group] lookups that miss.
	ErrUnknownGroup = errors.New("unknown shape group")

	// ErrEmptyGroup is returned when a group has no entries.
	ErrEmptyGroup = errors.New("shape group has no entries")

	// ErrInvalidQuantity is returned when an entry has a negative minimum or
	// a positive maximum below its minimum.
	ErrInvalidQuantity = errors.New("invalid shape quantity")
)

// Entry is one shape of a group with its usage bounds. Max <= 0 means
// unlimited. Usage is counted per shape across the whole layout, so a shape
// listed in several groups shares one counter.
type Entry struct {
	Shape shape.ID `json:"shape"`
	Min   int      `json:"min,omitempty"`
	Max   int      `json:"max,omitempty"`
}

// Unlimited reports whether the entry has no maximum.
func (e Entry) Unlimited() bool { return e.Max <= 0 }

// AtMax reports whether used reaches the entry's maximum.
func (e Entry) AtMax(used int) bool { return !e.Unlimited() && used >= e.Max }

// Group is a named set of shapes that a node or inserted room may take.
type Group struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Catalog is the shape arena: it owns every shape a run may place, hands out
// [shape.ID] handles and holds the shape groups. Build it once, then share
// it read-only.
type Catalog struct {
	shapes []*shape.Shape
	byName map[string]shape.ID
	groups map[string]*Group
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		byName: make(map[string]shape.ID),
		groups: make(map[string]*Group),
	}
}

// Add registers s and returns its handle.
func (c *Catalog) Add(s *shape.Shape) (shape.ID, error) {
	if _, ok := c.byName[s.Name()]; ok {
		return shape.NoID, fmt.Errorf("%w: %q", ErrDuplicateShape, s.Name())
	}
	id := shape.ID(len(c.shapes))
	c.shapes = append(c.shapes, s)
	c.byName[s.Name()] = id
	return id, nil
}

// AddWithVariations registers s and each of its distinct rotations and
// mirrors. A variant value-equal to a shape already in the catalog reuses
// that shape's handle. The first returned handle belongs to s, or to the
// registered shape s equals.
func (c *Catalog) AddWithVariations(s *shape.Shape) ([]shape.ID, error) {
	var ids []shape.ID
	for _, v := range s.Variations() {
		id, ok := c.find(v)
		if !ok {
			var err error
			if id, err = c.Add(v); err != nil {
				return nil, err
			}
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c *Catalog) find(s *shape.Shape) (shape.ID, bool) {
	for i, o := range c.shapes {
		if o == s || o.ValueEqual(s) {
			return shape.ID(i), true
		}
	}
	return shape.NoID, false
}

// Shape returns the shape for id, or nil if id was not issued here.
func (c *Catalog) Shape(id shape.ID) *shape.Shape {
	if id < 0 || int(id) >= len(c.shapes) {
		return nil
	}
	return c.shapes[id]
}

// Lookup returns the handle of the shape named name.
func (c *Catalog) Lookup(name string) (shape.ID, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Shapes returns every shape indexed by handle. The slice must not be
// modified.
func (c *Catalog) Shapes() []*shape.Shape { return c.shapes }

// Len returns the number of shapes.
func (c *Catalog) Len() int { return len(c.shapes) }

// AddGroup registers a shape group.
func (c *Catalog) AddGroup(name string, entries ...Entry) error {
	if _, ok := c.groups[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateGroup, name)
	}
	g := &Group{Name: name, Entries: slices.Clone(entries)}
	if err := c.validateGroup(g); err != nil {
		return err
	}
	c.groups[name] = g
	return nil
}

// Group returns the named group.
func (c *Catalog) Group(name string) (*Group, error) {
	g, ok := c.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
	return g, nil
}

// Groups returns all groups sorted by name.
func (c *Catalog) Groups() []*Group {
	out := make([]*Group, 0, len(c.groups))
	for _, g := range c.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Validate checks every group entry.
func (c *Catalog) Validate() error {
	for _, g := range c.Groups() {
		if err := c.validateGroup(g); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) validateGroup(g *Group) error {
	if len(g.Entries) == 0 {
		return fmt.Errorf("group %q: %w", g.Name, ErrEmptyGroup)
	}
	for _, e := range g.Entries {
		if c.Shape(e.Shape) == nil {
			return fmt.Errorf("group %q: %w: id %d", g.Name, ErrUnknownShape, e.Shape)
		}
		if e.Min < 0 || (!e.Unlimited() && e.Max < e.Min) {
			return fmt.Errorf("group %q: %w: shape %q min %d max %d",
				g.Name, ErrInvalidQuantity, c.shapes[e.Shape].Name(), e.Min, e.Max)
		}
	}
	return nil
}

// Satisfied reports whether usage meets every entry's minimum. It returns
// the first unmet entry's group and shape when it does not.
func (c *Catalog) Satisfied(usage func(shape.ID) int) (ok bool, group string, id shape.ID) {
	for _, g := range c.Groups() {
		for _, e := range g.Entries {
			if usage(e.Shape) < e.Min {
				return false, g.Name, e.Shape
			}
		}
	}
	return true, "", shape.NoID
}

// Precompute computes the configuration space table for every shape pair.
func (c *Catalog) Precompute(ctx context.Context, workers int) (*space.Table, error) {
	return space.Precompute(ctx, c.shapes, workers)
}
