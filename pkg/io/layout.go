package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/shape"
)

// layoutVersion is bumped when the layout document changes shape.
const layoutVersion = 1

// layoutDoc is the JSON form of a layout. Shapes are stored once and rooms
// refer to them by handle.
type layoutDoc struct {
	Version     int                      `json:"version"`
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Seed        int64                    `json:"seed"`
	Shapes      map[shape.ID]shapeDoc    `json:"shapes"`
	Rooms       []*layout.Room           `json:"rooms"`
	Connections []*layout.DoorConnection `json:"connections"`
}

type shapeDoc struct {
	Name  string               `json:"name"`
	Grid  []string             `json:"grid"`
	Doors []shape.DoorPosition `json:"doors,omitempty"`
	Slots []shape.Slot         `json:"slots,omitempty"`
}

func encodeShape(s *shape.Shape) shapeDoc {
	grid := make([]string, s.Rows())
	for r := range grid {
		var sb strings.Builder
		for c := 0; c < s.Cols(); c++ {
			if s.Occupied(r, c) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		grid[r] = sb.String()
	}
	return shapeDoc{Name: s.Name(), Grid: grid, Doors: s.Doors(), Slots: s.Slots()}
}

func (d shapeDoc) decode() (*shape.Shape, error) {
	b, err := shape.Parse(d.Name, d.Grid)
	if err != nil {
		return nil, err
	}
	for _, dp := range d.Doors {
		b.Door(dp.Row, dp.Col, dp.Direction, dp.Door)
	}
	for _, s := range d.Slots {
		b.Collectable(s.Row, s.Col, s.Group)
	}
	return b.Build()
}

// WriteLayout encodes l as indented JSON.
func WriteLayout(w io.Writer, l *layout.Layout) error {
	doc := layoutDoc{
		Version:     layoutVersion,
		ID:          l.ID,
		Name:        l.Name,
		Seed:        l.Seed,
		Shapes:      make(map[shape.ID]shapeDoc),
		Rooms:       l.Rooms(),
		Connections: l.Connections(),
	}
	for id, s := range l.Shapes() {
		doc.Shapes[id] = encodeShape(s)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadLayout decodes a layout written by [WriteLayout]. Rooms and
// connections are replayed through the layout's own checks, so a document
// with overlapping rooms or reused doors is rejected.
func ReadLayout(r io.Reader) (*layout.Layout, error) {
	var doc layoutDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if doc.Version != layoutVersion {
		return nil, rwerrors.New(rwerrors.ErrCodeUnsupported, "layout version %d", doc.Version)
	}

	shapes := make(map[shape.ID]*shape.Shape, len(doc.Shapes))
	for id, sd := range doc.Shapes {
		s, err := sd.decode()
		if err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidFormat, err, "shape %d", id)
		}
		shapes[id] = s
	}

	l := layout.New(doc.Name, doc.Seed)
	if doc.ID != "" {
		l.ID = doc.ID
	}
	for _, room := range doc.Rooms {
		s, ok := shapes[room.ShapeID]
		if !ok {
			return nil, rwerrors.New(rwerrors.ErrCodeInvalidFormat, "room %s: unknown shape %d", room.ID, room.ShapeID)
		}
		room.Shape = s
		if err := l.AddRoom(room); err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidFormat, err, "room %s", room.ID)
		}
	}
	for _, c := range doc.Connections {
		if err := l.AddConnection(c); err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidFormat, err, "connection %s", c.Pair())
		}
	}
	return l, nil
}

// ExportLayout writes l to path as JSON.
func ExportLayout(l *layout.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayout(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportLayout reads a layout JSON file.
func ImportLayout(path string) (*layout.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeFileNotFound, err, "layout %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}
