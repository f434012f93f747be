// Package layout holds the result of generation: rooms placed on an integer
// 3D grid and the door connections between them.
//
// # Rooms
//
// A [Room] is a [shape.Shape] whose grid origin sits at a world [Position].
// Rooms are identified by the graph element they came from: [NodeRoomID]
// for graph nodes and [EdgeRoomID] for rooms inserted on an edge. No two
// rooms share a world cell.
//
// # Connections and Shafts
//
// A [DoorConnection] pairs one door on each of two rooms. Each physical door
// serves at most one connection. Rooms more than one floor apart connect
// through a vertical shaft, a [Box] covering the door column between the two
// floors; a shaft may not cross any room cell or other shaft.
//
// # Copies and Rebases
//
// Search extends layouts speculatively. [Layout.Copy] returns a deep copy to
// extend and counts a rebase on the source, which the generator uses to
// bound how often one partial layout is retried. [Layout.Clone] copies
// without counting.
//
// Layout IDs are deterministic: [NewID] derives a name-based UUID from the
// layout name and seed.
package layout
