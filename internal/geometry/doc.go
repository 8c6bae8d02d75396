// Package geometry provides the collision shapes used to decide where ground tiles are needed.
//
// Shapes are convex polygons in world coordinates (x grows east, y grows south, one unit per
// tile). Every shape exposes its vertices and its axis-aligned bounds; a CollisionSet groups
// the shapes belonging to one entity or tile.
//
// Overlap is decided with the separating axis theorem and requires a strictly positive shared
// area: shapes that only touch along an edge or at a corner do not overlap, and zero-area
// shapes never overlap anything.
//
// Example Usage:
//
//	chest := geometry.NewCollisionSet(geometry.NewRect(-0.35, -0.35, 0.35, 0.35)).
//		Translate(r2.Vec{X: 0.5, Y: 0.5})
//	tile := geometry.NewCollisionSet(geometry.UnitSquare(0, 0))
//	chest.Overlaps(tile) // true
package geometry
