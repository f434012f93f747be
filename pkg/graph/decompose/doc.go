// Package decompose splits a room graph into the ordered chain sequence that
// layout generation grows room by room.
//
// # Overview
//
// Generation places a whole chain of rooms at a time and backtracks chain by
// chain, so the graph must first be covered by chains: paths or cycles in
// which consecutive edges share a node. Decomposition runs in three stages:
//
//  1. [Cycles] finds the distinct simple cycles with an iterative
//     white/gray/black depth-first search.
//  2. [Branches] grows acyclic node sequences outward from the trunk (the
//     cycle nodes, or the best-connected node of a tree) until every
//     remaining edge is covered.
//  3. [Chains] converts both into edge sequences, drops edges already
//     claimed by an earlier chain, splits long branches, orients every edge
//     along its chain and threads the chains into one order in which each
//     chain attaches to rooms placed before it.
//
// # Guarantees
//
// The chains returned by [Chains] contain every graph edge exactly once.
// Within a chain, edge i ends where edge i+1 starts. Every chain after the
// first starts at a node an earlier chain visited; a cyclic chain may
// instead be rotated to start at such a node.
//
// Cycles are placed first because closing a loop is the hardest placement
// problem; branches hang off the loops afterwards.
//
// A disconnected graph cannot be threaded. [Chains] reports it with
// [ErrUnattachable] wrapped in an error with code STRUCTURAL.
package decompose
