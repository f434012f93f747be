// Package space computes configuration spaces: for an ordered pair of room
// shapes, every relative offset and door pair at which the two shapes can be
// joined.
//
// A [Configuration] records the offset of shape B's origin relative to shape
// A's origin, the door used on each side and the traversal direction the
// door types imply. Configurations are derived from [shape.Shape.AlignedDoors]
// so the same rules apply: overlapping placements connect through Top/Bottom
// doors on shared cells, disjoint placements through facing in-plane doors.
//
// Configuration spaces depend only on the shapes, so they are computed once
// per shape set with [Precompute] and shared read-only by every generation
// run.
package space
