package space

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/roomweaver/pkg/shape"
)

// Table holds the configuration space of every ordered pair of a shape set.
// Shapes are addressed by their [shape.ID], which is their index in the
// slice passed to [Precompute]. A Table is immutable and safe for
// concurrent use.
type Table struct {
	shapes []*shape.Shape
	spaces []*Space // n*n, row = from
}

// Precompute computes all n*n configuration spaces. Rows of the table are
// computed concurrently by at most workers goroutines (GOMAXPROCS when
// workers <= 0). It returns ctx.Err() if ctx is cancelled first.
func Precompute(ctx context.Context, shapes []*shape.Shape, workers int) (*Table, error) {
	n := len(shapes)
	t := &Table{shapes: shapes, spaces: make([]*Space, n*n)}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range shapes {
		g.Go(func() error {
			for j := range shapes {
				if err := ctx.Err(); err != nil {
					return err
				}
				t.spaces[i*n+j] = Compute(shapes[i], shapes[j])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// Len returns the number of shapes in the table.
func (t *Table) Len() int { return len(t.shapes) }

// Shape returns the shape with the given id, or nil if out of range.
func (t *Table) Shape(id shape.ID) *shape.Shape {
	if int(id) < 0 || int(id) >= len(t.shapes) {
		return nil
	}
	return t.shapes[id]
}

// Get returns the configuration space of (from, to), or nil if either id is
// out of range.
func (t *Table) Get(from, to shape.ID) *Space {
	n := len(t.shapes)
	if int(from) < 0 || int(to) < 0 || int(from) >= n || int(to) >= n {
		return nil
	}
	return t.spaces[int(from)*n+int(to)]
}

// Count returns the total number of configurations across all pairs.
func (t *Table) Count() int {
	total := 0
	for _, s := range t.spaces {
		total += s.Len()
	}
	return total
}
