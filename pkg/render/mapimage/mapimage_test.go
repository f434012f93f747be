package mapimage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/shape"
)

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	d := shape.Door{Type: shape.TwoWay}
	s := shape.NewBuilder("square", 1, 1).Fill().
		Door(0, 0, shape.East, d).
		Door(0, 0, shape.West, d).
		MustBuild()

	l := layout.New("map", 1)
	rooms := []*layout.Room{
		{ID: layout.NodeRoomID(1), Shape: s, Color: "#ff0000"},
		{ID: layout.NodeRoomID(2), Shape: s, Color: "#00ff00", Position: layout.Position{Col: 2}},
		{ID: layout.NodeRoomID(3), Shape: s, Color: "#0000ff", Position: layout.Position{Col: 1, Floor: 1}},
	}
	for _, r := range rooms {
		if err := l.AddRoom(r); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func hex(t *testing.T, s string) color.RGBA {
	t.Helper()
	c := color.RGBA{A: 0xff}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		t.Fatal(err)
	}
	return c
}

func at(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestRenderFloor(t *testing.T) {
	l := testLayout(t)
	opts := []Option{WithCellSize(20), WithMargin(0)}

	img, err := RenderFloor(l, 0, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 20 {
		t.Fatalf("size = %dx%d, want 60x20", b.Dx(), b.Dy())
	}
	if got := at(img, 10, 10); got != hex(t, "#ff0000") {
		t.Errorf("room 1 pixel = %v", got)
	}
	if got := at(img, 30, 10); got != hex(t, background) {
		t.Errorf("empty cell pixel = %v, want background", got)
	}

	up, err := RenderFloor(l, 1, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if got := at(up, 30, 10); got != hex(t, "#0000ff") {
		t.Errorf("floor 1 room pixel = %v", got)
	}
}

func TestRenderFloorVisibility(t *testing.T) {
	l := testLayout(t)
	vis := map[layout.RoomID]Visibility{
		layout.NodeRoomID(1): Explored,
	}
	img, err := RenderFloor(l, 0, WithCellSize(20), WithMargin(0), WithVisibility(vis))
	if err != nil {
		t.Fatal(err)
	}
	if got := at(img, 10, 10); got != hex(t, exploredColor) {
		t.Errorf("explored room pixel = %v", got)
	}
	if got := at(img, 50, 10); got != hex(t, background) {
		t.Errorf("room missing from the visibility map should be hidden, got %v", got)
	}
}

func TestRenderFloors(t *testing.T) {
	floors, err := RenderFloors(testLayout(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(floors) != 2 {
		t.Fatalf("floors = %d, want 2", len(floors))
	}
	if _, err := png.Decode(bytes.NewReader(floors[1])); err != nil {
		t.Errorf("floor 1 is not a PNG: %v", err)
	}

	if _, err := RenderFloors(layout.New("empty", 1)); !errors.Is(err, ErrEmptyLayout) {
		t.Errorf("empty layout error = %v", err)
	}
}
