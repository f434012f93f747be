package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/roomweaver/pkg/catalog"
	"github.com/matzehuels/roomweaver/pkg/collectable"
	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/generator"
	"github.com/matzehuels/roomweaver/pkg/graph"
	"github.com/matzehuels/roomweaver/pkg/shape"
)

// Blueprint is the on-disk description of a generation job: the room
// graph, the shape catalog and the search tunables.
type Blueprint struct {
	Name         string            `json:"name" toml:"name" yaml:"name"`
	Seed         int64             `json:"seed,omitempty" toml:"seed,omitempty" yaml:"seed,omitempty"`
	Options      generator.Options `json:"options" toml:"options" yaml:"options"`
	Collectables CollectableSpec   `json:"collectables" toml:"collectables" yaml:"collectables,omitempty"`
	Shapes       []ShapeSpec       `json:"shapes" toml:"shapes" yaml:"shapes"`
	Groups       []GroupSpec       `json:"groups" toml:"groups" yaml:"groups"`
	Nodes        []NodeSpec        `json:"nodes" toml:"nodes" yaml:"nodes"`
	Edges        []EdgeSpec        `json:"edges,omitempty" toml:"edges,omitempty" yaml:"edges,omitempty"`
}

// ShapeSpec describes a room shape. Grid rows use '.' or ' ' for empty
// cells and any other character for an occupied one.
type ShapeSpec struct {
	Name       string     `json:"name" toml:"name" yaml:"name"`
	Grid       []string   `json:"grid" toml:"grid" yaml:"grid"`
	Variations bool       `json:"variations,omitempty" toml:"variations,omitempty" yaml:"variations,omitempty"`
	Doors      []DoorSpec `json:"doors,omitempty" toml:"doors,omitempty" yaml:"doors,omitempty"`
	Slots      []SlotSpec `json:"slots,omitempty" toml:"slots,omitempty" yaml:"slots,omitempty"`
}

// DoorSpec places a door on a shape cell. An empty Type is two-way.
type DoorSpec struct {
	Row       int    `json:"row" toml:"row" yaml:"row"`
	Col       int    `json:"col" toml:"col" yaml:"col"`
	Direction string `json:"direction" toml:"direction" yaml:"direction"`
	Type      string `json:"type,omitempty" toml:"type,omitempty" yaml:"type,omitempty"`
	Code      uint32 `json:"code,omitempty" toml:"code,omitempty" yaml:"code,omitempty"`
}

// SlotSpec marks a shape cell as a collectable slot.
type SlotSpec struct {
	Row   int    `json:"row" toml:"row" yaml:"row"`
	Col   int    `json:"col" toml:"col" yaml:"col"`
	Group string `json:"group" toml:"group" yaml:"group"`
}

// GroupSpec is a named shape group.
type GroupSpec struct {
	Name    string      `json:"name" toml:"name" yaml:"name"`
	Entries []EntrySpec `json:"entries" toml:"entries" yaml:"entries"`
}

// EntrySpec references a shape by name with its quantity bounds. Max <= 0
// means unlimited.
type EntrySpec struct {
	Shape string `json:"shape" toml:"shape" yaml:"shape"`
	Min   int    `json:"min,omitempty" toml:"min,omitempty" yaml:"min,omitempty"`
	Max   int    `json:"max,omitempty" toml:"max,omitempty" yaml:"max,omitempty"`
}

// NodeSpec is a graph node.
type NodeSpec struct {
	ID    int      `json:"id" toml:"id" yaml:"id"`
	Floor int      `json:"floor,omitempty" toml:"floor,omitempty" yaml:"floor,omitempty"`
	Group string   `json:"group" toml:"group" yaml:"group"`
	Name  string   `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Color string   `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	Tags  []string `json:"tags,omitempty" toml:"tags,omitempty" yaml:"tags,omitempty"`
}

// EdgeSpec is a graph edge.
type EdgeSpec struct {
	From        int      `json:"from" toml:"from" yaml:"from"`
	To          int      `json:"to" toml:"to" yaml:"to"`
	Direction   string   `json:"direction,omitempty" toml:"direction,omitempty" yaml:"direction,omitempty"`
	Code        uint32   `json:"code,omitempty" toml:"code,omitempty" yaml:"code,omitempty"`
	FloorDelta  int      `json:"floor_delta,omitempty" toml:"floor_delta,omitempty" yaml:"floor_delta,omitempty"`
	RoomChance  float64  `json:"room_chance,omitempty" toml:"room_chance,omitempty" yaml:"room_chance,omitempty"`
	RequireRoom bool     `json:"require_room,omitempty" toml:"require_room,omitempty" yaml:"require_room,omitempty"`
	Group       string   `json:"group,omitempty" toml:"group,omitempty" yaml:"group,omitempty"`
	Name        string   `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Color       string   `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	Tags        []string `json:"tags,omitempty" toml:"tags,omitempty" yaml:"tags,omitempty"`
}

// CollectableSpec lists the collectables to place after generation.
type CollectableSpec struct {
	WeightExponent float64          `json:"weight_exponent,omitempty" toml:"weight_exponent,omitempty" yaml:"weight_exponent,omitempty"`
	Groups         map[string][]int `json:"groups,omitempty" toml:"groups,omitempty" yaml:"groups,omitempty"`
}

// Model is a blueprint resolved into the types the generator consumes.
type Model struct {
	Name               string
	Seed               int64
	Graph              *graph.Graph
	Catalog            *catalog.Catalog
	Options            generator.Options
	Collectables       collectable.Groups
	CollectableOptions collectable.Options
}

// Decode reads a blueprint in the given format.
func Decode(r io.Reader, format Format) (*Blueprint, error) {
	var b Blueprint
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&b)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&b)
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&b)
	default:
		return nil, rwerrors.New(rwerrors.ErrCodeUnsupported, "unsupported blueprint format %q", format)
	}
	if err != nil {
		return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidFormat, err, "decode %s blueprint", format)
	}
	return &b, nil
}

// Encode writes b in the given format.
func Encode(w io.Writer, b *Blueprint, format Format) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(b)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(b); err == nil {
			err = enc.Close()
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(b)
	default:
		return rwerrors.New(rwerrors.ErrCodeUnsupported, "unsupported blueprint format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s blueprint: %w", format, err)
	}
	return nil
}

// Load reads the blueprint file at path, choosing the format from its
// extension.
func Load(path string) (*Blueprint, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeFileNotFound, err, "blueprint %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Save writes b to path in the format implied by its extension.
func Save(b *Blueprint, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Encode(f, b, format)
}

// Canonical returns a stable JSON encoding of b, for hashing.
func (b *Blueprint) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build resolves the blueprint into a graph and catalog. Shape and group
// problems carry [rwerrors.ErrCodeInvalidCatalog], node and edge problems
// [rwerrors.ErrCodeInvalidGraph].
func (b *Blueprint) Build() (*Model, error) {
	if err := rwerrors.ValidateName("blueprint", b.Name); err != nil {
		return nil, err
	}
	cat, err := b.buildCatalog()
	if err != nil {
		return nil, err
	}
	g, err := b.buildGraph()
	if err != nil {
		return nil, err
	}
	opts := b.Options
	opts.Name = b.Name
	return &Model{
		Name:               b.Name,
		Seed:               b.Seed,
		Graph:              g,
		Catalog:            cat,
		Options:            opts,
		Collectables:       collectable.Groups(b.Collectables.Groups),
		CollectableOptions: collectable.Options{WeightExponent: b.Collectables.WeightExponent},
	}, nil
}

func (b *Blueprint) buildCatalog() (*catalog.Catalog, error) {
	cat := catalog.New()
	variants := make(map[string][]shape.ID)
	for _, spec := range b.Shapes {
		s, err := spec.build()
		if err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidCatalog, err, "shape %q", spec.Name)
		}
		var ids []shape.ID
		if spec.Variations {
			ids, err = cat.AddWithVariations(s)
		} else {
			var id shape.ID
			id, err = cat.Add(s)
			ids = []shape.ID{id}
		}
		if err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidCatalog, err, "shape %q", spec.Name)
		}
		variants[spec.Name] = ids
	}

	for _, gs := range b.Groups {
		var entries []catalog.Entry
		for _, es := range gs.Entries {
			ids, ok := variants[es.Shape]
			if !ok {
				return nil, rwerrors.New(rwerrors.ErrCodeInvalidCatalog, "group %q: unknown shape %q", gs.Name, es.Shape)
			}
			// The minimum applies to the shape as written; its variants
			// share the maximum.
			for i, id := range ids {
				e := catalog.Entry{Shape: id, Max: es.Max}
				if i == 0 {
					e.Min = es.Min
				}
				entries = append(entries, e)
			}
		}
		if err := cat.AddGroup(gs.Name, entries...); err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidCatalog, err, "group %q", gs.Name)
		}
	}
	return cat, nil
}

func (spec ShapeSpec) build() (*shape.Shape, error) {
	bld, err := shape.Parse(spec.Name, spec.Grid)
	if err != nil {
		return nil, err
	}
	for _, d := range spec.Doors {
		dir, err := shape.ParseDirection(d.Direction)
		if err != nil {
			return nil, err
		}
		typ, err := shape.ParseDoorType(d.Type)
		if err != nil {
			return nil, err
		}
		bld.Door(d.Row, d.Col, dir, shape.Door{Type: typ, Code: shape.Code(d.Code)})
	}
	for _, s := range spec.Slots {
		bld.Collectable(s.Row, s.Col, s.Group)
	}
	return bld.Build()
}

func (b *Blueprint) buildGraph() (*graph.Graph, error) {
	g := graph.New()
	for _, n := range b.Nodes {
		err := g.AddNode(graph.Node{
			ID:    n.ID,
			Floor: n.Floor,
			Group: n.Group,
			Name:  n.Name,
			Color: n.Color,
			Tags:  n.Tags,
		})
		if err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidGraph, err, "node %d", n.ID)
		}
	}
	for _, e := range b.Edges {
		dir, err := shape.ParseEdgeDirection(e.Direction)
		if err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidGraph, err, "edge %d-%d", e.From, e.To)
		}
		err = g.AddEdge(graph.Edge{
			From:        e.From,
			To:          e.To,
			Direction:   dir,
			Code:        shape.Code(e.Code),
			FloorDelta:  e.FloorDelta,
			RoomChance:  e.RoomChance,
			RequireRoom: e.RequireRoom,
			Group:       e.Group,
			Name:        e.Name,
			Color:       e.Color,
			Tags:        e.Tags,
		})
		if err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidGraph, err, "edge %d-%d", e.From, e.To)
		}
	}
	return g, nil
}
