package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roomweaver/pkg/catalog"
	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/graph"
	"github.com/matzehuels/roomweaver/pkg/graph/decompose"
	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/observability"
	"github.com/matzehuels/roomweaver/pkg/rng"
	"github.com/matzehuels/roomweaver/pkg/space"
)

// ErrDetachedStep is returned when a chain step reaches a placed room from
// one that is not placed yet. Threaded chains always start at a placed room
// or at none, so this means the decomposition is broken.
var ErrDetachedStep = errors.New("chain step leaves from an unplaced room")

// State is the outcome of a search.
type State uint8

const (
	Searching State = iota
	Accepted
	Failed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Accepted:
		return "accepted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", s)
}

// MarshalText implements [encoding.TextMarshaler].
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Result describes a finished search. Layout is nil unless State is
// Accepted.
type Result struct {
	State      State          `json:"state"`
	Layout     *layout.Layout `json:"-"`
	Seed       int64          `json:"seed"`
	Restarts   int            `json:"restarts"`
	Attempts   int            `json:"attempts"`
	Backtracks int            `json:"backtracks"`
	Duration   time.Duration  `json:"duration"`

	// Reason explains a Failed result.
	Reason string `json:"reason,omitempty"`

	// Random is the generator state after the search. Post-processing such
	// as collectable placement continues the same stream from here.
	Random *rng.Random `json:"-"`
}

// Generator places the rooms of one graph. It is immutable after [New] and
// safe for concurrent [Generator.Run] calls with different seeds.
type Generator struct {
	graph   *graph.Graph
	catalog *catalog.Catalog
	table   *space.Table
	decomp  *decompose.Decomposition
	opts    Options
	log     *log.Logger
}

// New validates its inputs, decomposes g into chains and returns a
// generator ready to run.
//
// Validation failures carry [rwerrors.ErrCodeInvalidGraph],
// [rwerrors.ErrCodeInvalidCatalog] or [rwerrors.ErrCodeInvalidOptions]; a
// graph that cannot be threaded into chains returns a structural error.
func New(g *graph.Graph, cat *catalog.Catalog, table *space.Table, opts Options) (*Generator, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, rwerrors.New(rwerrors.ErrCodeInvalidGraph, "graph is nil")
	}
	if err := g.Validate(); err != nil {
		return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	if cat == nil {
		return nil, rwerrors.New(rwerrors.ErrCodeInvalidCatalog, "catalog is nil")
	}
	if err := cat.Validate(); err != nil {
		return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidCatalog, err, "invalid catalog")
	}
	if table == nil || table.Len() != cat.Len() {
		return nil, rwerrors.New(rwerrors.ErrCodeInvalidCatalog, "configuration table does not match the catalog")
	}
	for _, n := range g.Nodes() {
		if _, err := cat.Group(n.Group); err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidGraph, err, "node %d", n.ID)
		}
	}
	for _, e := range g.Edges() {
		if !e.MayHaveRoom() {
			continue
		}
		if _, err := cat.Group(e.Group); err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidGraph, err, "edge %s", e)
		}
	}

	d, err := decompose.Decompose(g, decompose.Options{MaxBranchLength: opts.MaxBranchLength})
	if err != nil {
		return nil, err
	}

	return &Generator{
		graph:   g,
		catalog: cat,
		table:   table,
		decomp:  d,
		opts:    opts,
		log:     opts.Logger,
	}, nil
}

// Chains returns the chain order the search consumes.
func (g *Generator) Chains() []decompose.Chain { return g.decomp.Chains }

// Decomposition returns the cycles, branches and chains of the graph.
func (g *Generator) Decomposition() *decompose.Decomposition { return g.decomp }

// Options returns the effective options.
func (g *Generator) Options() Options { return g.opts }

// Run searches for a layout with a generator seeded from seed.
//
// A search that exhausts its rebases or restarts is not an error: it returns
// a Result with State Failed. Errors are reserved for cancellation and
// structural problems.
func (g *Generator) Run(ctx context.Context, seed int64) (Result, error) {
	s := &search{
		gen:   g,
		name:  g.opts.Name,
		seed:  seed,
		rand:  rng.New(seed),
		hooks: observability.Search(),
	}
	start := time.Now()
	res, err := s.run(ctx)
	res.Seed = seed
	res.Duration = time.Since(start)
	res.Random = s.rand
	return res, err
}

// search holds the mutable state of one run.
type search struct {
	gen   *Generator
	name  string
	seed  int64
	rand  *rng.Random
	hooks observability.SearchHooks

	stack      []*layout.Layout
	restarts   int
	attempts   int
	backtracks int
}

func (s *search) run(ctx context.Context) (Result, error) {
	g := s.gen
	chains := g.decomp.Chains
	g.log.Debug("search started", "name", s.name, "seed", s.seed, "chains", len(chains))

	base, ok := s.base()
	if !ok {
		return s.fail("no shape fits the first room"), nil
	}
	s.stack = []*layout.Layout{base}
	index := 0

	for {
		if err := ctx.Err(); err != nil {
			return Result{State: Failed}, rwerrors.Wrap(rwerrors.ErrCodeCancelled, err, "layout search cancelled")
		}

		if index >= len(chains) {
			top := s.stack[len(s.stack)-1]
			satisfied, group, id := g.catalog.Satisfied(top.Usage)
			if satisfied {
				g.log.Info("layout accepted", "name", s.name, "seed", s.seed, "rooms", top.RoomCount(), "attempts", s.attempts)
				return Result{
					State:      Accepted,
					Layout:     top.Clone(),
					Restarts:   s.restarts,
					Attempts:   s.attempts,
					Backtracks: s.backtracks,
				}, nil
			}
			if s.restarts >= g.opts.MaxRestarts {
				return s.fail(fmt.Sprintf("group %q: shape %q below its minimum after %d restarts",
					group, g.catalog.Shape(id).Name(), s.restarts)), nil
			}
			s.restarts++
			s.hooks.OnRestart(ctx, s.restarts)
			g.log.Debug("completion check failed, restarting", "group", group, "restart", s.restarts)
			if base, ok = s.base(); !ok {
				return s.fail("no shape fits the first room"), nil
			}
			s.stack = []*layout.Layout{base}
			index = 0
			continue
		}

		top := s.stack[len(s.stack)-1]
		// Rebases counts copies already taken, so the top is spent once it
		// has been copied allowance times.
		if top.Rebases() >= g.opts.Allowance(index) {
			s.stack = s.stack[:len(s.stack)-1]
			s.backtracks++
			s.hooks.OnBacktrack(ctx, index)
			if len(s.stack) == 0 {
				return s.fail(fmt.Sprintf("rebase allowance exhausted at chain %d", index)), nil
			}
			index--
			g.log.Debug("backtrack", "chain", index)
			continue
		}

		next := top.Copy()
		s.attempts++
		placed, err := s.extend(next, chains[index])
		if err != nil {
			return s.fail(err.Error()), err
		}
		if placed {
			s.stack = append(s.stack, next)
			s.hooks.OnChainPlaced(ctx, index, next.RoomCount())
			g.log.Debug("chain placed", "chain", index, "rooms", next.RoomCount())
			index++
		}
	}
}

func (s *search) fail(reason string) Result {
	s.gen.log.Info("layout search failed", "name", s.name, "seed", s.seed, "reason", reason)
	return Result{
		State:      Failed,
		Restarts:   s.restarts,
		Attempts:   s.attempts,
		Backtracks: s.backtracks,
		Reason:     reason,
	}
}

// base returns the layout every chain extension starts from. It is empty
// unless the graph has no edges, in which case the single room is placed
// directly.
func (s *search) base() (*layout.Layout, bool) {
	g := s.gen
	l := layout.New(s.name, s.seed)
	if len(g.decomp.Chains) > 0 {
		return l, true
	}
	ids := g.graph.NodeIDs()
	if len(ids) == 0 {
		return l, true
	}
	x := extension{search: s, l: l}
	return l, x.placeFresh(x.nodeVertex(ids[0]))
}

func (s *search) extend(l *layout.Layout, c decompose.Chain) (bool, error) {
	x := extension{search: s, l: l}
	return x.addChain(c)
}
