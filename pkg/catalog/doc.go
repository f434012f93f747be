// Package catalog is the shape arena of a generation run.
//
// A [Catalog] owns every [shape.Shape] that may be placed and hands out
// [shape.ID] handles; rooms and usage counters refer to shapes only through
// these handles. Shapes are grouped into named [Group]s, each entry carrying
// a minimum and maximum usage. Graph nodes and inserted edge rooms name the
// group they draw from.
//
// After the catalog is complete, [Catalog.Precompute] builds the
// configuration space table for all shape pairs.
package catalog
