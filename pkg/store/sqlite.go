package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/roomweaver/pkg/layout"
)

// SQLiteStore keeps layouts in one SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path. ":memory:" opens a
// private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS layouts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			seed INTEGER NOT NULL,
			rooms INTEGER NOT NULL,
			connections INTEGER NOT NULL,
			floors TEXT NOT NULL DEFAULT '[]',
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_layouts_created_at ON layouts(created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, l *layout.Layout) error {
	if err := ValidateID(l.ID); err != nil {
		return err
	}
	data, err := encode(l)
	if err != nil {
		return err
	}
	sum := Summarize(l)
	floors, err := json.Marshal(sum.Floors)
	if err != nil {
		return fmt.Errorf("marshal floors: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO layouts (id, name, seed, rooms, connections, floors, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			seed = excluded.seed,
			rooms = excluded.rooms,
			connections = excluded.connections,
			floors = excluded.floors,
			data = excluded.data,
			created_at = excluded.created_at`,
		sum.ID, sum.Name, sum.Seed, sum.Rooms, sum.Connections, string(floors), data, sum.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save layout %s: %w", l.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*layout.Layout, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM layouts WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", id, err)
	}
	return decode(data)
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, seed, rooms, connections, floors, created_at
		 FROM layouts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			floors  string
			created int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Seed, &sum.Rooms, &sum.Connections, &floors, &created); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		if err := json.Unmarshal([]byte(floors), &sum.Floors); err != nil {
			return nil, fmt.Errorf("layout %s floors: %w", sum.ID, err)
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete layout %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
