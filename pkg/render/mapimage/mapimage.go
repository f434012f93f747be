// Package mapimage draws floor maps of a placed layout as PNG images.
//
// Each floor is drawn on the same grid (the bounding box of the whole
// layout) so maps of different floors line up when stacked. Rooms are
// filled cell by cell with walls along their outline; in-plane doors are
// notches in the wall, open when the door is connected. Top and Bottom doors
// are drawn as small markers, vertical shafts passing through a floor as
// hatched squares, and filled collectable slots as dots.
//
// A visibility map hides rooms or draws them as explored (greyed out),
// which is how a game would show a partially discovered map.
package mapimage

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/shape"
)

// ErrEmptyLayout is returned when the layout has no rooms.
var ErrEmptyLayout = errors.New("layout has no rooms")

// Visibility controls how a room is drawn.
type Visibility uint8

const (
	Visible Visibility = iota
	Explored
	Hidden
)

// Default drawing parameters.
const (
	DefaultCellSize = 24
	DefaultMargin   = 12
)

// Palette colours rooms without an explicit colour, indexed by the room's
// placement draw.
var Palette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3",
	"#fdb462", "#b3de69", "#fccde5", "#bc80bd", "#ccebc5",
}

const (
	background    = "#20232a"
	wallColor     = "#0b0c0f"
	exploredColor = "#5c6270"
	shaftColor    = "#c0c4cc"
	markerColor   = "#f5f5f5"
	itemColor     = "#ffd700"
)

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	cell       float64
	margin     float64
	labels     bool
	visibility map[layout.RoomID]Visibility
}

// WithCellSize sets the size of one grid cell in pixels.
func WithCellSize(px int) Option {
	return func(r *renderer) {
		if px > 0 {
			r.cell = float64(px)
		}
	}
}

// WithMargin sets the border around the map in pixels.
func WithMargin(px int) Option {
	return func(r *renderer) {
		if px >= 0 {
			r.margin = float64(px)
		}
	}
}

// WithLabels draws each room's label in its first cell.
func WithLabels(on bool) Option {
	return func(r *renderer) { r.labels = on }
}

// WithVisibility filters rooms. Rooms missing from a non-nil map are
// hidden; a nil map shows every room.
func WithVisibility(v map[layout.RoomID]Visibility) Option {
	return func(r *renderer) { r.visibility = v }
}

func (r *renderer) visibilityOf(id layout.RoomID) Visibility {
	if r.visibility == nil {
		return Visible
	}
	v, ok := r.visibility[id]
	if !ok {
		return Hidden
	}
	return v
}

// RenderFloor draws one floor of l.
func RenderFloor(l *layout.Layout, floor int, opts ...Option) (image.Image, error) {
	bounds, ok := l.Bounds()
	if !ok || l.RoomCount() == 0 {
		return nil, ErrEmptyLayout
	}
	r := renderer{cell: DefaultCellSize, margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}

	rows := bounds.Max.Row - bounds.Min.Row + 1
	cols := bounds.Max.Col - bounds.Min.Col + 1
	dc := gg.NewContext(int(float64(cols)*r.cell+2*r.margin), int(float64(rows)*r.cell+2*r.margin))
	dc.SetHexColor(background)
	dc.Clear()

	// origin maps a world cell to its top-left pixel.
	origin := func(row, col int) (float64, float64) {
		return r.margin + float64(col-bounds.Min.Col)*r.cell, r.margin + float64(row-bounds.Min.Row)*r.cell
	}

	for _, c := range l.Connections() {
		if c.Shaft == nil || floor < c.Shaft.Min.Floor || floor > c.Shaft.Max.Floor {
			continue
		}
		if r.visibilityOf(c.From) == Hidden && r.visibilityOf(c.To) == Hidden {
			continue
		}
		x, y := origin(c.Shaft.Min.Row, c.Shaft.Min.Col)
		r.drawShaft(dc, x, y)
	}

	for _, room := range l.Rooms() {
		if room.Floor() != floor {
			continue
		}
		vis := r.visibilityOf(room.ID)
		if vis == Hidden {
			continue
		}
		r.drawRoom(dc, l, room, vis, origin)
	}
	return dc.Image(), nil
}

func (r *renderer) drawShaft(dc *gg.Context, x, y float64) {
	dc.SetHexColor(shaftColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x+1, y+1, r.cell-2, r.cell-2)
	dc.Stroke()
	for i := 0.25; i < 1; i += 0.25 {
		dc.DrawLine(x+i*r.cell, y, x, y+i*r.cell)
		dc.DrawLine(x+r.cell, y+i*r.cell, x+i*r.cell, y+r.cell)
	}
	dc.DrawLine(x+r.cell, y, x, y+r.cell)
	dc.Stroke()
}

func (r *renderer) drawRoom(dc *gg.Context, l *layout.Layout, room *layout.Room, vis Visibility, origin func(row, col int) (float64, float64)) {
	fill := room.Color
	if fill == "" {
		fill = Palette[int(uint64(room.Draw)%uint64(len(Palette)))]
	}
	if vis == Explored {
		fill = exploredColor
	}
	s := room.Shape

	s.ForEachCell(func(row, col int, _ shape.Cell) {
		w := room.World(row, col)
		x, y := origin(w.Row, w.Col)
		dc.SetHexColor(fill)
		dc.DrawRectangle(x, y, r.cell, r.cell)
		dc.Fill()

		dc.SetHexColor(wallColor)
		dc.SetLineWidth(2)
		for _, d := range []shape.Direction{shape.North, shape.East, shape.South, shape.West} {
			dr, dcol := d.Offset()
			if s.Occupied(row+dr, col+dcol) {
				continue
			}
			x1, y1, x2, y2 := edge(x, y, r.cell, d)
			dc.DrawLine(x1, y1, x2, y2)
		}
		dc.Stroke()
	})

	for _, dp := range s.Doors() {
		w := room.World(dp.Row, dp.Col)
		x, y := origin(w.Row, w.Col)
		open := !l.DoorFree(room.ID, dp)
		r.drawDoor(dc, x, y, dp.Direction, open, fill)
	}

	dc.SetHexColor(itemColor)
	for _, slot := range s.Slots() {
		if _, ok := room.Collectables[slot.Index]; !ok {
			continue
		}
		w := room.World(slot.Row, slot.Col)
		x, y := origin(w.Row, w.Col)
		dc.DrawCircle(x+r.cell/2, y+r.cell/2, r.cell/8)
		dc.Fill()
	}

	if cells := room.Cells(); r.labels && len(cells) > 0 {
		x, y := origin(cells[0].Row, cells[0].Col)
		dc.SetHexColor(wallColor)
		dc.DrawStringAnchored(room.Label(), x+r.cell/2, y+r.cell/2, 0.5, 0.5)
	}
}

// drawDoor draws an in-plane door as a notch in the wall, open doors in the
// room colour so the wall appears broken. Vertical doors are corner markers.
func (r *renderer) drawDoor(dc *gg.Context, x, y float64, d shape.Direction, open bool, fill string) {
	third := r.cell / 3
	switch d {
	case shape.Top, shape.Bottom:
		cx, cy := x+r.cell-third/2-1, y+third/2+1
		if d == shape.Bottom {
			cx, cy = x+third/2+1, y+r.cell-third/2-1
		}
		dc.SetHexColor(markerColor)
		dc.DrawRegularPolygon(3, cx, cy, third/2, rotation(d))
		if open {
			dc.Fill()
		} else {
			dc.SetLineWidth(1)
			dc.Stroke()
		}
		return
	}

	x1, y1, x2, y2 := edge(x, y, r.cell, d)
	mx, my := (x1+x2)/2, (y1+y2)/2
	dx, dy := (x2-x1)/6, (y2-y1)/6
	if open {
		dc.SetHexColor(fill)
		dc.SetLineWidth(3)
	} else {
		dc.SetHexColor(markerColor)
		dc.SetLineWidth(2)
	}
	dc.DrawLine(mx-dx, my-dy, mx+dx, my+dy)
	dc.Stroke()
}

func rotation(d shape.Direction) float64 {
	if d == shape.Top {
		return -gg.Radians(90)
	}
	return gg.Radians(90)
}

// edge returns the wall segment of the cell at (x, y) facing d.
func edge(x, y, size float64, d shape.Direction) (x1, y1, x2, y2 float64) {
	switch d {
	case shape.North:
		return x, y, x + size, y
	case shape.South:
		return x, y + size, x + size, y + size
	case shape.East:
		return x + size, y, x + size, y + size
	default:
		return x, y, x, y + size
	}
}

// RenderPNG draws one floor and encodes it as PNG.
func RenderPNG(l *layout.Layout, floor int, opts ...Option) ([]byte, error) {
	img, err := RenderFloor(l, floor, opts...)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContextForImage(img)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode floor %d: %w", floor, err)
	}
	return buf.Bytes(), nil
}

// RenderFloors draws every floor that holds rooms, keyed by floor.
func RenderFloors(l *layout.Layout, opts ...Option) (map[int][]byte, error) {
	out := make(map[int][]byte)
	for _, z := range l.Floors() {
		png, err := RenderPNG(l, z, opts...)
		if err != nil {
			return nil, err
		}
		out[z] = png
	}
	if len(out) == 0 {
		return nil, ErrEmptyLayout
	}
	return out, nil
}
