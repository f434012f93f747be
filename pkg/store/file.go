package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/matzehuels/roomweaver/pkg/layout"
)

// FileStore keeps each layout as <id>.json in a directory, with its summary
// in <id>.meta.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store. If baseDir is empty, defaults to
// ~/.config/roomweaver/layouts/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "roomweaver", "layouts")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) layoutPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) metaPath(id string) string {
	return filepath.Join(s.baseDir, id+".meta.json")
}

func (s *FileStore) Save(ctx context.Context, l *layout.Layout) error {
	if err := ValidateID(l.ID); err != nil {
		return err
	}
	data, err := encode(l)
	if err != nil {
		return err
	}
	meta, err := json.MarshalIndent(Summarize(l), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.layoutPath(l.ID), data, 0600); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	if err := os.WriteFile(s.metaPath(l.ID), meta, 0600); err != nil {
		return fmt.Errorf("write summary file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*layout.Layout, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.layoutPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return decode(data)
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.baseDir, "*.meta.json"))
	if err != nil {
		return nil, fmt.Errorf("list layout dir: %w", err)
	}
	out := make([]Summary, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var sum Summary
		if err := json.Unmarshal(data, &sum); err != nil {
			continue
		}
		out = append(out, sum)
	}
	sortNewest(out)
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.layoutPath(id)); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("remove layout file: %w", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove summary file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for layout files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

// sortNewest orders summaries newest first, then by ID.
func sortNewest(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
