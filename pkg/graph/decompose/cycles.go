package decompose

import (
	"slices"
	"strconv"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/matzehuels/roomweaver/pkg/graph"
)

const (
	white = iota
	gray
	black
)

// Cycles returns the distinct simple cycles found by depth-first search.
//
// A DFS is started from every node in ascending ID order, each with fresh
// white/gray/black colouring, walking neighbours in ascending order. An edge
// that reaches a gray node other than the tree parent closes a cycle, which
// is materialised by walking parent pointers from the current node back to
// the gray node. Cycles with the same node set are reported once.
//
// Each cycle starts at the gray node it was closed on and follows the DFS
// tree down to the node that closed it. The search is iterative, so deep
// graphs cannot overflow the goroutine stack.
//
// The result is every fundamental cycle of every DFS tree, which covers
// every node that lies on any cycle; it is not an enumeration of all simple
// cycles.
func Cycles(g *graph.Graph) [][]int {
	var cycles [][]int
	seen := mapset.New[string]()

	type frame struct {
		node int
		next int
	}

	for _, root := range g.NodeIDs() {
		color := make(map[int]int, g.NodeCount())
		parent := map[int]int{root: root}
		color[root] = gray
		stack := []frame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			nbrs := g.Neighbors(top.node)
			if top.next >= len(nbrs) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			u := top.node
			v := nbrs[top.next]
			top.next++

			if v == parent[u] && u != root {
				continue
			}
			switch color[v] {
			case white:
				color[v] = gray
				parent[v] = u
				stack = append(stack, frame{node: v})
			case gray:
				cycle := []int{u}
				for x := u; x != v; {
					x = parent[x]
					cycle = append(cycle, x)
				}
				slices.Reverse(cycle)
				if k := cycleKey(cycle); !seen.Has(k) {
					seen.Put(k)
					cycles = append(cycles, cycle)
				}
			}
		}
	}
	return cycles
}

// cycleKey identifies a cycle by its sorted node set.
func cycleKey(nodes []int) string {
	sorted := slices.Clone(nodes)
	slices.Sort(sorted)
	var b strings.Builder
	for i, n := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
