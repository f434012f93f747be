package decompose

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zyedidia/generic/mapset"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/graph"
)

var (
	// ErrUnattachable is returned by [Chains] when no remaining chain
	// touches the rooms placed by earlier chains. This happens for
	// disconnected graphs.
	ErrUnattachable = errors.New("chain cannot be attached to earlier chains")

	// ErrMissingEdge is returned when a cycle or branch steps between two
	// nodes that the graph does not connect.
	ErrMissingEdge = errors.New("decomposition references a missing edge")
)

// Chain is an ordered sequence of edges in which each edge starts where the
// previous one ended. A cyclic chain also ends where it starts.
type Chain struct {
	Edges  []graph.Traversal
	Cyclic bool
}

// Len returns the number of edges.
func (c Chain) Len() int { return len(c.Edges) }

// Nodes returns the node sequence the chain walks. A cyclic chain repeats
// its first node at the end.
func (c Chain) Nodes() []int {
	if len(c.Edges) == 0 {
		return nil
	}
	out := make([]int, 0, len(c.Edges)+1)
	out = append(out, c.Edges[0].From())
	for _, e := range c.Edges {
		out = append(out, e.To())
	}
	return out
}

// Reversed returns the chain walked backwards, every edge flipped.
func (c Chain) Reversed() Chain {
	out := Chain{Edges: make([]graph.Traversal, len(c.Edges)), Cyclic: c.Cyclic}
	for i, e := range c.Edges {
		out.Edges[len(c.Edges)-1-i] = e.Flip()
	}
	return out
}

// Rotated returns a cyclic chain rotated so that its first edge starts at
// node. The chain is returned unchanged if no edge starts there.
func (c Chain) Rotated(node int) Chain {
	for i, e := range c.Edges {
		if e.From() == node {
			out := Chain{Edges: make([]graph.Traversal, 0, len(c.Edges)), Cyclic: c.Cyclic}
			out.Edges = append(out.Edges, c.Edges[i:]...)
			out.Edges = append(out.Edges, c.Edges[:i]...)
			return out
		}
	}
	return c
}

// String formats the chain as its node walk, e.g. "1-2-3-1".
func (c Chain) String() string {
	nodes := c.Nodes()
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, "-")
}

// Options tunes chain decomposition.
type Options struct {
	// MaxBranchLength splits non-cyclic chains longer than this many edges
	// into consecutive pieces. Zero or negative disables splitting.
	MaxBranchLength int
}

// Decomposition is the full result of decomposing a graph, kept together
// so tools can show each stage.
type Decomposition struct {
	Cycles   [][]int
	Branches [][]int
	Chains   []Chain
}

// Chains decomposes g into an ordered, edge-disjoint chain cover: every
// edge appears in exactly one chain, and every chain after the first
// starts at (or, for cycles, passes through) a node an earlier chain
// visited. Cycles come first, then branches.
//
// A graph with a single node and no edges decomposes into zero chains.
// A graph that cannot be threaded into one sequence yields an error with
// code [rwerrors.ErrCodeStructural].
func Chains(g *graph.Graph, opts Options) ([]Chain, error) {
	d, err := Decompose(g, opts)
	if err != nil {
		return nil, err
	}
	return d.Chains, nil
}

// Decompose runs cycle, branch and chain decomposition.
func Decompose(g *graph.Graph, opts Options) (*Decomposition, error) {
	d := &Decomposition{Cycles: Cycles(g)}
	d.Branches = Branches(g, d.Cycles)

	var raw []Chain
	for _, c := range d.Cycles {
		seq := append(append([]int(nil), c...), c[0])
		ch, err := toChain(g, seq)
		if err != nil {
			return nil, err
		}
		ch.Cyclic = true
		raw = append(raw, ch)
	}
	for _, b := range d.Branches {
		ch, err := toChain(g, b)
		if err != nil {
			return nil, err
		}
		raw = append(raw, ch)
	}

	chains := dedupe(raw)
	chains = splitLong(chains, opts.MaxBranchLength)
	for i := range chains {
		normalise(chains[i].Edges)
	}

	threaded, err := thread(chains)
	if err != nil {
		return nil, err
	}
	if err := checkCoverage(g, threaded); err != nil {
		return nil, err
	}
	d.Chains = threaded
	return d, nil
}

func toChain(g *graph.Graph, seq []int) (Chain, error) {
	var ch Chain
	for i := 0; i+1 < len(seq); i++ {
		t, ok := g.Traverse(seq[i], seq[i+1])
		if !ok {
			return Chain{}, rwerrors.Wrap(rwerrors.ErrCodeStructural, ErrMissingEdge, "%d-%d", seq[i], seq[i+1])
		}
		ch.Edges = append(ch.Edges, t)
	}
	return ch, nil
}

// dedupe drops edges already used by an earlier chain, then splits each
// chain wherever consecutive kept edges no longer share an endpoint. A
// cycle stays cyclic only if it kept every edge.
func dedupe(raw []Chain) []Chain {
	used := mapset.New[*graph.Edge]()
	var out []Chain
	for _, c := range raw {
		var kept []graph.Traversal
		for _, e := range c.Edges {
			if !used.Has(e.Edge) {
				used.Put(e.Edge)
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			continue
		}
		cyclic := c.Cyclic && len(kept) == len(c.Edges)

		start := 0
		for i := 1; i <= len(kept); i++ {
			if i == len(kept) || !shareEndpoint(kept[i-1], kept[i]) {
				out = append(out, Chain{Edges: kept[start:i:i], Cyclic: cyclic && start == 0 && i == len(kept)})
				start = i
			}
		}
	}
	return out
}

func shareEndpoint(a, b graph.Traversal) bool {
	return a.From() == b.From() || a.From() == b.To() || a.To() == b.From() || a.To() == b.To()
}

func splitLong(chains []Chain, limit int) []Chain {
	if limit <= 0 {
		return chains
	}
	var out []Chain
	for _, c := range chains {
		if c.Cyclic || len(c.Edges) <= limit {
			out = append(out, c)
			continue
		}
		for i := 0; i < len(c.Edges); i += limit {
			end := min(i+limit, len(c.Edges))
			out = append(out, Chain{Edges: c.Edges[i:end:end]})
		}
	}
	return out
}

// normalise orients edges so that edges[i].To() == edges[i+1].From().
func normalise(edges []graph.Traversal) {
	if len(edges) < 2 {
		return
	}
	if e0, e1 := edges[0], edges[1]; e0.To() != e1.From() && e0.To() != e1.To() {
		edges[0] = e0.Flip()
	}
	for i := 1; i < len(edges); i++ {
		if edges[i].From() != edges[i-1].To() {
			edges[i] = edges[i].Flip()
		}
	}
}

// thread orders chains so each one attaches to nodes visited before it.
func thread(pool []Chain) ([]Chain, error) {
	if len(pool) == 0 {
		return nil, nil
	}
	visited := mapset.New[int]()
	visit := func(c Chain) {
		for _, n := range c.Nodes() {
			visited.Put(n)
		}
	}

	out := []Chain{pool[0]}
	visit(pool[0])
	pool = append([]Chain(nil), pool[1:]...)

	for len(pool) > 0 {
		idx := -1
		var next Chain
		for i, c := range pool {
			first, last := c.Edges[0], c.Edges[len(c.Edges)-1]
			switch {
			case visited.Has(first.From()):
				next = c
			case visited.Has(last.To()):
				next = c.Reversed()
			case c.Cyclic:
				for _, e := range c.Edges {
					if visited.Has(e.From()) {
						next = c.Rotated(e.From())
						break
					}
				}
				if next.Edges == nil {
					continue
				}
			default:
				continue
			}
			idx = i
			break
		}
		if idx < 0 {
			// Nothing touches the placed part by an endpoint, so cut a chain
			// that passes through it. Both halves then attach at the cut.
			var ok bool
			if pool, ok = splitAtVisited(pool, visited); !ok {
				return nil, rwerrors.Wrap(rwerrors.ErrCodeStructural, ErrUnattachable,
					"%d chains left, first is %s", len(pool), pool[0])
			}
			continue
		}
		out = append(out, next)
		visit(next)
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return out, nil
}

// checkCoverage rejects graphs whose chains leave nodes unreached, which
// happens when isolated nodes sit beside connected ones.
func checkCoverage(g *graph.Graph, chains []Chain) error {
	if g.NodeCount() <= 1 {
		return nil
	}
	reached := mapset.New[int]()
	for _, c := range chains {
		for _, n := range c.Nodes() {
			reached.Put(n)
		}
	}
	for _, id := range g.NodeIDs() {
		if !reached.Has(id) {
			return rwerrors.Wrap(rwerrors.ErrCodeStructural, ErrUnattachable, "node %d is not connected", id)
		}
	}
	return nil
}

// splitAtVisited replaces the first open chain with a visited interior node
// by its two halves around that node.
func splitAtVisited(pool []Chain, visited mapset.Set[int]) ([]Chain, bool) {
	for i, c := range pool {
		if c.Cyclic {
			continue
		}
		for k := 1; k < len(c.Edges); k++ {
			if !visited.Has(c.Edges[k].From()) {
				continue
			}
			head := Chain{Edges: slices.Clone(c.Edges[:k])}
			tail := Chain{Edges: slices.Clone(c.Edges[k:])}
			return slices.Replace(pool, i, i+1, head, tail), true
		}
	}
	return pool, false
}
