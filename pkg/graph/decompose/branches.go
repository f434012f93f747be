package decompose

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/matzehuels/roomweaver/pkg/graph"
)

// Trunk returns the node set the branches grow from: the union of the
// cycles' nodes, or, for an acyclic graph, the single node with the most
// neighbours (lowest ID on ties). The empty graph has an empty trunk.
func Trunk(g *graph.Graph, cycles [][]int) mapset.Set[int] {
	trunk := mapset.New[int]()
	for _, c := range cycles {
		for _, n := range c {
			trunk.Put(n)
		}
	}
	if trunk.Size() > 0 {
		return trunk
	}
	best, bestDeg := 0, -1
	for _, id := range g.NodeIDs() {
		if d := g.Degree(id); d > bestDeg {
			best, bestDeg = id, d
		}
	}
	if bestDeg >= 0 {
		trunk.Put(best)
	}
	return trunk
}

// Branches returns acyclic node sequences that, together with the cycles,
// cover every edge of g.
//
// A DFS is started from every trunk node in ascending order and walks only
// through non-trunk nodes, recording each node's parent and the trunk root
// that claimed it. Branches are emitted when the walk:
//
//   - moves from the root to another trunk node (a two-node branch),
//   - moves from a non-trunk node to a trunk node (root ... node, trunk),
//   - reaches a non-trunk node already claimed by an earlier walk (both
//     parent chains joined, up to their common ancestor, or up to both
//     roots when the roots differ),
//   - reaches a non-trunk node with a single neighbour (a dead end,
//     root ... leaf).
//
// Branches may share edges; the chain decomposer drops repeats.
func Branches(g *graph.Graph, cycles [][]int) [][]int {
	trunk := Trunk(g, cycles)
	roots := make([]int, 0, trunk.Size())
	trunk.Each(func(n int) { roots = append(roots, n) })
	slices.Sort(roots)

	parent := make(map[int]int)
	owner := make(map[int]int)
	var branches [][]int

	// chain returns n, parent(n), ..., up to its trunk root.
	chain := func(n int) []int {
		out := []int{n}
		for !trunk.Has(n) {
			n = parent[n]
			out = append(out, n)
		}
		return out
	}
	// fromRoot returns root ... n.
	fromRoot := func(n int) []int {
		c := chain(n)
		slices.Reverse(c)
		return c
	}

	for _, root := range roots {
		stack := []int{root}
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			nbrs := g.Neighbors(u)
			if u != root && len(nbrs) == 1 {
				branches = append(branches, fromRoot(u))
			}
			// Push in reverse so the lowest neighbour is explored first.
			var next []int
			for _, v := range nbrs {
				if u != root && v == parent[u] {
					continue
				}
				switch {
				case trunk.Has(v):
					if u == root {
						branches = append(branches, []int{root, v})
					} else {
						branches = append(branches, append(fromRoot(u), v))
					}
				case claimed(owner, v):
					branches = append(branches, join(fromRoot(u), chain(v)))
				default:
					parent[v] = u
					owner[v] = root
					next = append(next, v)
				}
			}
			for i := len(next) - 1; i >= 0; i-- {
				stack = append(stack, next[i])
			}
		}
	}
	return branches
}

func claimed(owner map[int]int, n int) bool {
	_, ok := owner[n]
	return ok
}

// join links the path a (root ... u) to the path b (v ... root') where u and
// v are adjacent. When both paths end at the same root the shared tail is
// cut at the lowest common ancestor.
func join(a, b []int) []int {
	if a[0] == b[len(b)-1] {
		onA := make(map[int]int, len(a))
		for i, n := range a {
			onA[n] = i
		}
		for j, n := range b {
			if i, ok := onA[n]; ok {
				return append(slices.Clone(a[i:]), b[:j+1]...)
			}
		}
	}
	return append(slices.Clone(a), b...)
}
