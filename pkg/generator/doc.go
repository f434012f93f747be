// Package generator turns a room graph into a placed [layout.Layout].
//
// # Search
//
// The graph is first decomposed into an ordered list of chains (see
// [decompose.Chains]); each chain starts at a room that an earlier chain has
// already placed. The search keeps a stack of partial layouts, one per chain
// placed so far. Each iteration copies the top layout and tries to extend
// the copy by the next chain:
//
//   - success pushes the copy and moves on to the next chain;
//   - failure discards the copy and tries again from the same top;
//   - a top that has been copied more often than its allowance is popped,
//     returning to the previous chain.
//
// The allowance for chain index i is
//
//	max(1, ceil(MaxRebases * exp(-i * RebaseDecayRate)))
//
// so early chains, whose placement constrains everything after them, get the
// most retries. When every chain is placed the layout must still satisfy the
// minimum quantities of the catalog's shape groups; if it does not, the
// search restarts from an empty layout, at most MaxRestarts times.
//
// # Placement
//
// Each chain edge is a step between two rooms. Edges that require a room, or
// whose RoomChance draw succeeds, become two steps through an edge room.
// Placing a room tries the eligible shapes of its group in random order and,
// for each shape, the configurations against the anchor room in random
// order. A configuration is accepted when the floor change, door code and
// edge direction match, the room does not collide, and any vertical shaft
// (for connections spanning more than one floor) is free.
//
// # Determinism
//
// A run draws every random value from an [rng.Random] seeded with the run's
// seed, in a fixed order, so the same graph, catalog and seed always produce
// the same layout. A [Generator] is read-only after [New] and may run many
// seeds concurrently.
//
// # Usage
//
//	table, err := cat.Precompute(ctx, 0)
//	if err != nil {
//	    return err
//	}
//	gen, err := generator.New(g, cat, table, generator.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	res, err := gen.Run(ctx, 42)
//	if err != nil {
//	    return err
//	}
//	if res.State == generator.Accepted {
//	    fmt.Println(res.Layout.RoomCount())
//	}
//
// [layout.Layout]: github.com/matzehuels/roomweaver/pkg/layout.Layout
// [decompose.Chains]: github.com/matzehuels/roomweaver/pkg/graph/decompose.Chains
// [rng.Random]: github.com/matzehuels/roomweaver/pkg/rng.Random
package generator
