// Package graph provides the undirected room connectivity graph that layout
// generation consumes.
//
// # Overview
//
// A [Node] is a room to place: it names the floor it must sit on and the
// shape group its shape comes from. An [Edge] is a required connection
// between two rooms. Edges carry the constraints of that connection: the
// traversal [shape.EdgeDirection], a door code, and whether (and with what
// probability) the connection is realised through an inserted room.
//
// Each unordered node pair holds at most one edge, stored in the orientation
// it was added with. [Graph.Traverse] returns a [Traversal], the edge read in
// a chosen direction, so algorithms can walk the graph either way without
// duplicating edges.
//
//	g := graph.New()
//	g.AddNode(graph.Node{ID: 1, Group: "halls"})
//	g.AddNode(graph.Node{ID: 2, Group: "halls"})
//	g.AddEdge(graph.Edge{From: 1, To: 2})
//
// Neighbour lists and node listings are kept in ascending ID order, which
// makes every traversal built on them deterministic.
//
// # Validation
//
// [Graph.AddNode] and [Graph.AddEdge] reject duplicates, self loops, unknown
// endpoints and out-of-range room chances as they happen. [Graph.Validate]
// checks whole-graph properties before generation. Connectivity is enforced
// by the chain decomposer in package decompose, which cannot thread a
// disconnected graph.
package graph
