// Package pkg provides the core libraries for Roomweaver room-layout
// generation.
//
// # Overview
//
// Roomweaver turns a graph of rooms and a catalogue of room shapes into a
// placed, collision-free 3D layout: every graph node becomes a room, every
// edge a door connection (optionally through a corridor room or a vertical
// shaft). The pkg directory is organized into these areas:
//
//  1. Model: [shape], [catalog], [space], [graph], [layout]
//  2. Search: [graph/decompose] splits the graph into chains and
//     [generator] places them with a backtracking search seeded by [rng]
//  3. Post-processing: [collectable] fills item slots
//  4. Output: [render/mapimage] floor maps and [render/nodelink] chain
//     diagrams
//  5. Infrastructure: [io] blueprints and layout documents, [cache],
//     [store], [observability], [errors]
//  6. Orchestration: [pipeline] (load → prepare → generate → store → render)
//
// # Architecture
//
// The typical data flow:
//
//	Blueprint (TOML / YAML / JSON)
//	         ↓
//	    [io] package (graph + catalogue + tunables)
//	         ↓
//	    [catalog] Precompute → [space] configuration tables
//	         ↓
//	    [generator] package (chains, rebases, restarts)
//	         ↓
//	    [collectable] placement
//	         ↓
//	    PNG floor maps / SVG chain diagrams / layout JSON
//
// # Quick Start
//
// For most use cases, use the [pipeline] package which handles caching
// and storage:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	bp, _ := runner.Load(ctx, "keep.toml")
//	result, _ := runner.Execute(ctx, bp, pipeline.Options{Formats: []string{"png"}})
//
// For lower-level control, drive the packages directly:
//
//	model, _ := blueprint.Build()
//	table, _ := model.Catalog.Precompute(ctx, 0)
//	gen, _ := generator.New(model.Graph, model.Catalog, table, model.Options)
//	res, _ := gen.Run(ctx, seed)
//
// [shape]: github.com/matzehuels/roomweaver/pkg/shape
// [catalog]: github.com/matzehuels/roomweaver/pkg/catalog
// [space]: github.com/matzehuels/roomweaver/pkg/space
// [graph]: github.com/matzehuels/roomweaver/pkg/graph
// [layout]: github.com/matzehuels/roomweaver/pkg/layout
// [graph/decompose]: github.com/matzehuels/roomweaver/pkg/graph/decompose
// [generator]: github.com/matzehuels/roomweaver/pkg/generator
// [rng]: github.com/matzehuels/roomweaver/pkg/rng
// [collectable]: github.com/matzehuels/roomweaver/pkg/collectable
// [render/mapimage]: github.com/matzehuels/roomweaver/pkg/render/mapimage
// [render/nodelink]: github.com/matzehuels/roomweaver/pkg/render/nodelink
// [io]: github.com/matzehuels/roomweaver/pkg/io
// [cache]: github.com/matzehuels/roomweaver/pkg/cache
// [store]: github.com/matzehuels/roomweaver/pkg/store
// [observability]: github.com/matzehuels/roomweaver/pkg/observability
// [errors]: github.com/matzehuels/roomweaver/pkg/errors
// [pipeline]: github.com/matzehuels/roomweaver/pkg/pipeline
package pkg
