// Package store persists generated layouts.
//
// Layouts are stored in the JSON layout document of package io together with
// a small [Summary] used for listing. Three backends implement [Store]:
//   - file: one JSON file per layout, for the CLI
//   - sqlite: a single database file, for the API server on one host
//   - mongo: a shared collection, for several API instances
//
// # Usage
//
//	s, err := store.Open(ctx, "sqlite:///var/lib/roomweaver/layouts.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.Save(ctx, l); err != nil {
//	    return err
//	}
//	l, err = s.Load(ctx, id)
//
// Layout IDs are derived from the blueprint name and seed, so saving the
// same layout twice replaces the first copy.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	pio "github.com/matzehuels/roomweaver/pkg/io"
	"github.com/matzehuels/roomweaver/pkg/layout"
)

// ErrNotFound is returned when no layout has the requested ID.
var ErrNotFound = errors.New("layout not found")

// Summary describes a stored layout without decoding it.
type Summary struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Seed        int64     `json:"seed" bson:"seed"`
	Rooms       int       `json:"rooms" bson:"rooms"`
	Connections int       `json:"connections" bson:"connections"`
	Floors      []int     `json:"floors" bson:"floors"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for layout storage backends.
type Store interface {
	// Save stores l under l.ID, replacing any previous copy.
	Save(ctx context.Context, l *layout.Layout) error

	// Load returns the layout with the given ID, or an error wrapping
	// ErrNotFound.
	Load(ctx context.Context, id string) (*layout.Layout, error)

	// List returns the stored layouts, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a layout. Deleting a missing layout returns an error
	// wrapping ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Summarize builds the listing entry for l.
func Summarize(l *layout.Layout) Summary {
	return Summary{
		ID:          l.ID,
		Name:        l.Name,
		Seed:        l.Seed,
		Rooms:       l.RoomCount(),
		Connections: l.ConnectionCount(),
		Floors:      l.Floors(),
		CreatedAt:   time.Now().UTC(),
	}
}

func encode(l *layout.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := pio.WriteLayout(&buf, l); err != nil {
		return nil, fmt.Errorf("encode layout %s: %w", l.ID, err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (*layout.Layout, error) {
	return pio.ReadLayout(bytes.NewReader(data))
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Open returns the backend named by a URL-like spec:
//
//	file://<dir>          (or a bare directory path)
//	sqlite://<path>
//	mongodb://<host>/...  (database "roomweaver", collection "layouts")
func Open(ctx context.Context, spec string) (Store, error) {
	switch {
	case strings.HasPrefix(spec, "sqlite://"):
		return NewSQLiteStore(strings.TrimPrefix(spec, "sqlite://"))
	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		return NewMongoStore(ctx, MongoConfig{URI: spec})
	case strings.HasPrefix(spec, "file://"):
		return NewFileStore(strings.TrimPrefix(spec, "file://"))
	case strings.Contains(spec, "://"):
		return nil, rwerrors.New(rwerrors.ErrCodeUnsupported, "unknown store %q", spec)
	}
	return NewFileStore(spec)
}

// ValidateID rejects IDs that are not layout identifiers. Backends call it
// before touching storage so an ID never escapes into a path or query.
func ValidateID(id string) error {
	return rwerrors.ValidateLayoutID(id)
}
