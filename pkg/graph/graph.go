package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/matzehuels/roomweaver/pkg/shape"
)

var (
	// ErrDuplicateNode is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Graph.AddEdge] when either endpoint is
	// missing.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [Graph.AddEdge] for an edge from a node to
	// itself. A room cannot connect to itself.
	ErrSelfLoop = errors.New("self loop")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the unordered
	// pair is already connected. Edges are stored once per pair.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrInvalidRoomChance is returned when an edge's RoomChance lies
	// outside [0, 1].
	ErrInvalidRoomChance = errors.New("room chance must be within [0, 1]")

	// ErrMissingGroup is returned by [Graph.Validate] when a node, or an
	// edge that may receive a room, names no shape group.
	ErrMissingGroup = errors.New("missing shape group")

	// ErrEmptyGraph is returned by [Graph.Validate] for a graph without nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")
)

// Node is a room to be placed. Floor is the floor the room must sit on;
// Group names the shape group its shape is drawn from.
type Node struct {
	ID    int    `json:"id"`
	Floor int    `json:"floor,omitempty"`
	Group string `json:"group"`

	// Display metadata copied onto the placed room.
	Name  string   `json:"name,omitempty"`
	Color string   `json:"color,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Label returns the display name, or "node <id>" when unnamed.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node %d", n.ID)
}

// Edge is a required connection between two nodes.
//
// An edge may be realised through an inserted room: always when RequireRoom
// is set, otherwise with probability RoomChance. The inserted room takes its
// shape from Group and sits FloorDelta floors above the From node.
// Direction and Code constrain the doors used, read from From to To.
type Edge struct {
	From      int                 `json:"from"`
	To        int                 `json:"to"`
	Direction shape.EdgeDirection `json:"direction,omitempty"`
	Code      shape.Code          `json:"code,omitempty"`

	FloorDelta  int     `json:"floor_delta,omitempty"`
	RoomChance  float64 `json:"room_chance,omitempty"`
	RequireRoom bool    `json:"require_room,omitempty"`
	Group       string  `json:"group,omitempty"`

	// Display metadata for an inserted room.
	Name  string   `json:"name,omitempty"`
	Color string   `json:"color,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// MayHaveRoom reports whether the edge can be realised through a room.
func (e *Edge) MayHaveRoom() bool { return e.RequireRoom || e.RoomChance > 0 }

// Other returns the endpoint opposite id.
func (e *Edge) Other(id int) int {
	if e.From == id {
		return e.To
	}
	return e.From
}

// String formats the edge as "from-to".
func (e *Edge) String() string { return fmt.Sprintf("%d-%d", e.From, e.To) }

type pair [2]int

func key(a, b int) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// Graph is an undirected connectivity graph of rooms. Each unordered node
// pair holds at most one [Edge], stored in the orientation it was added
// with; [Graph.Traverse] reads it either way.
//
// The zero value is not usable; create graphs with [New]. A Graph is not
// safe for concurrent mutation, but a fully built graph may be shared
// read-only.
type Graph struct {
	nodes map[int]*Node
	ids   []int // sorted
	edges []*Edge
	adj   map[int][]int // sorted neighbour ids
	index map[pair]*Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int]*Node),
		adj:   make(map[int][]int),
		index: make(map[pair]*Edge),
	}
}

// AddNode adds n to the graph.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
	}
	node := &n
	g.nodes[n.ID] = node
	i, _ := slices.BinarySearch(g.ids, n.ID)
	g.ids = slices.Insert(g.ids, i, n.ID)
	return nil
}

// AddEdge connects two existing nodes.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, e.To)
	}
	if e.From == e.To {
		return fmt.Errorf("%w: %d", ErrSelfLoop, e.From)
	}
	k := key(e.From, e.To)
	if _, exists := g.index[k]; exists {
		return fmt.Errorf("%w: %d-%d", ErrDuplicateEdge, e.From, e.To)
	}
	if e.RoomChance < 0 || e.RoomChance > 1 {
		return fmt.Errorf("edge %d-%d: %w: %v", e.From, e.To, ErrInvalidRoomChance, e.RoomChance)
	}
	edge := &e
	g.edges = append(g.edges, edge)
	g.index[k] = edge
	g.link(e.From, e.To)
	g.link(e.To, e.From)
	return nil
}

func (g *Graph) link(a, b int) {
	i, _ := slices.BinarySearch(g.adj[a], b)
	g.adj[a] = slices.Insert(g.adj[a], i, b)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in ascending ID order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.ids))
	for i, id := range g.ids {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeIDs returns all node IDs in ascending order. The slice must not be
// modified.
func (g *Graph) NodeIDs() []int { return g.ids }

// Edges returns all edges in insertion order. The returned slice may be
// modified; the edges it points to belong to the graph.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// Edge returns the edge between a and b in its stored orientation.
func (g *Graph) Edge(a, b int) (*Edge, bool) {
	e, ok := g.index[key(a, b)]
	return e, ok
}

// Traverse returns the edge between a and b read from a toward b.
func (g *Graph) Traverse(a, b int) (Traversal, bool) {
	e, ok := g.index[key(a, b)]
	if !ok {
		return Traversal{}, false
	}
	return Traversal{Edge: e, Reversed: e.From != a}, true
}

// Neighbors returns the neighbours of id in ascending order. The slice must
// not be modified.
func (g *Graph) Neighbors(id int) []int { return g.adj[id] }

// Degree returns the number of edges incident to id.
func (g *Graph) Degree(id int) int { return len(g.adj[id]) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Connected reports whether every node is reachable from the lowest node.
// The empty graph is connected.
func (g *Graph) Connected() bool {
	if len(g.ids) == 0 {
		return true
	}
	seen := mapset.New[int]()
	stack := []int{g.ids[0]}
	seen.Put(g.ids[0])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range g.adj[n] {
			if !seen.Has(m) {
				seen.Put(m)
				stack = append(stack, m)
			}
		}
	}
	return seen.Size() == len(g.ids)
}

// Distances returns the hop distance from src to every reachable node.
func (g *Graph) Distances(src int) map[int]int {
	dist := map[int]int{src: 0}
	queue := []int{src}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range g.adj[n] {
			if _, ok := dist[m]; !ok {
				dist[m] = dist[n] + 1
				queue = append(queue, m)
			}
		}
	}
	return dist
}

// Validate checks the graph is non-empty and every node and room-capable
// edge names a shape group. Connectivity is checked by chain decomposition.
func (g *Graph) Validate() error {
	if len(g.nodes) == 0 {
		return ErrEmptyGraph
	}
	for _, id := range g.ids {
		if g.nodes[id].Group == "" {
			return fmt.Errorf("node %d: %w", id, ErrMissingGroup)
		}
	}
	for _, e := range g.edges {
		if e.MayHaveRoom() && e.Group == "" {
			return fmt.Errorf("edge %s: %w", e, ErrMissingGroup)
		}
	}
	return nil
}

// Traversal is an edge read in a chosen direction. When Reversed is set the
// stored edge runs the other way and its direction requirement is read
// reversed.
type Traversal struct {
	Edge     *Edge
	Reversed bool
}

// From returns the node the traversal starts at.
func (t Traversal) From() int {
	if t.Reversed {
		return t.Edge.To
	}
	return t.Edge.From
}

// To returns the node the traversal ends at.
func (t Traversal) To() int {
	if t.Reversed {
		return t.Edge.From
	}
	return t.Edge.To
}

// Direction returns the required edge direction read from From() to To().
func (t Traversal) Direction() shape.EdgeDirection {
	if t.Reversed {
		return t.Edge.Direction.Reverse()
	}
	return t.Edge.Direction
}

// Flip returns the traversal read the other way.
func (t Traversal) Flip() Traversal { return Traversal{Edge: t.Edge, Reversed: !t.Reversed} }

// String formats the traversal as "from->to".
func (t Traversal) String() string { return fmt.Sprintf("%d->%d", t.From(), t.To()) }
