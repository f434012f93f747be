// Package io reads and writes blueprints and generated layouts.
//
// # Blueprints
//
// A [Blueprint] describes one generation job: the shapes, the shape groups,
// the graph of rooms to connect and the search tunables. Blueprints are
// written by hand, so TOML, YAML and JSON are all accepted; the format is
// chosen from the file extension by [Load] and [Save]:
//
//	name = "keep"
//	seed = 7
//
//	[options]
//	max_rebases = 200
//	rebase_decay_rate = 0.1
//
//	[[shapes]]
//	name = "hall"
//	grid = ["##", "##"]
//	variations = true
//	doors = [
//	  { row = 0, col = 0, direction = "north" },
//	  { row = 1, col = 1, direction = "east", type = "one_way_exit" },
//	]
//
//	[[groups]]
//	name = "rooms"
//	entries = [{ shape = "hall", max = 4 }]
//
//	[[nodes]]
//	id = 1
//	group = "rooms"
//
// A shape with variations = true is registered with every distinct rotation
// and mirror. Its group entries expand to all variants: the shape as
// written keeps the entry's minimum and every variant shares the maximum.
//
// [Blueprint.Build] resolves names into a [graph.Graph] and
// [catalog.Catalog] ready for the generator.
//
// # Layouts
//
// [WriteLayout] and [ReadLayout] store a placed layout as JSON. Shapes are
// written once and rooms refer to them by handle. Reading replays every
// room and connection through the layout's collision and door checks, so a
// corrupted document is rejected rather than loaded half-valid.
package io
