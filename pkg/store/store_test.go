package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/shape"
)

// pair returns a two-room layout: a vault on floor 0 below a tower room
// reached by a ladder.
func pair(t *testing.T, name string, seed int64) *layout.Layout {
	t.Helper()
	d := shape.Door{Type: shape.TwoWay}
	s := shape.NewBuilder("cell", 1, 1).Fill().
		Door(0, 0, shape.Top, d).
		Door(0, 0, shape.Bottom, d).
		Collectable(0, 0, "key").
		MustBuild()

	l := layout.New(name, seed)
	for i, floor := range []int{0, 1} {
		r := &layout.Room{ID: layout.NodeRoomID(i), Shape: s, Position: layout.Position{Floor: floor}}
		if err := l.AddRoom(r); err != nil {
			t.Fatal(err)
		}
	}
	err := l.AddConnection(&layout.DoorConnection{
		From:     layout.NodeRoomID(0),
		To:       layout.NodeRoomID(1),
		FromDoor: shape.DoorPosition{Direction: shape.Top, Door: d},
		ToDoor:   shape.DoorPosition{Direction: shape.Bottom, Door: d},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := l.SetCollectable(layout.NodeRoomID(1), 0, 42); err != nil {
		t.Fatal(err)
	}
	return l
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	a, b := pair(t, "keep", 1), pair(t, "keep", 2)

	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, b); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Saving again replaces.
	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save() again error = %v", err)
	}

	got, err := s.Load(ctx, a.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ID != a.ID || got.RoomCount() != 2 || got.ConnectionCount() != 1 {
		t.Errorf("loaded %s with %d rooms, %d connections", got.ID, got.RoomCount(), got.ConnectionCount())
	}
	if r, _ := got.Room(layout.NodeRoomID(1)); r.Collectables[0] != 42 {
		t.Errorf("collectables = %v", r.Collectables)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d layouts, want 2", len(list))
	}
	seen := map[string]Summary{}
	for _, sum := range list {
		seen[sum.ID] = sum
	}
	if sum, ok := seen[b.ID]; !ok || sum.Seed != 2 || sum.Rooms != 2 || len(sum.Floors) != 2 {
		t.Errorf("summary of b = %+v", sum)
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Load(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after delete error = %v", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v", err)
	}
	if _, err := s.Load(ctx, "../../etc/passwd"); !rwerrors.Is(err, rwerrors.ErrCodeInvalidInput) {
		t.Errorf("Load(bad id) error = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "layouts.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestSQLiteStoreMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tests := []struct {
		spec    string
		want    string
		wantErr bool
	}{
		{dir, "*store.FileStore", false},
		{"file://" + dir, "*store.FileStore", false},
		{"sqlite://" + filepath.Join(dir, "x.db"), "*store.SQLiteStore", false},
		{"ftp://host/layouts", "", true},
	}
	for _, tt := range tests {
		s, err := Open(ctx, tt.spec)
		if (err != nil) != tt.wantErr {
			t.Errorf("Open(%q) error = %v", tt.spec, err)
			continue
		}
		if err != nil {
			continue
		}
		if got := fmt.Sprintf("%T", s); got != tt.want {
			t.Errorf("Open(%q) = %s, want %s", tt.spec, got, tt.want)
		}
		s.Close()
	}
}

func TestMongoRecordBSON(t *testing.T) {
	l := pair(t, "keep", 9)
	rec, err := newMongoRecord(l)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := bson.Marshal(rec)
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}
	if id, ok := bson.Raw(raw).Lookup("_id").StringValueOK(); !ok || id != l.ID {
		t.Errorf("_id = %q, want %q", id, l.ID)
	}

	var back mongoRecord
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("bson.Unmarshal() error = %v", err)
	}
	if !back.CreatedAt.Equal(rec.CreatedAt) || back.Seed != 9 || back.Rooms != 2 {
		t.Errorf("summary = %+v", back.Summary)
	}
	got, err := decode(back.Data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != l.ID {
		t.Errorf("decoded ID = %s", got.ID)
	}
}
