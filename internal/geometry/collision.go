package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CollisionSet is the union of shapes an entity or tile occupies.
type CollisionSet struct {
	Shapes []Shape
}

// NewCollisionSet creates a collision set from shapes.
func NewCollisionSet(shapes ...Shape) CollisionSet {
	return CollisionSet{Shapes: shapes}
}

// Empty reports whether the set holds no shapes.
func (c CollisionSet) Empty() bool {
	return len(c.Shapes) == 0
}

// BoundingBox returns the box enclosing every shape. ok is false for an empty set.
func (c CollisionSet) BoundingBox() (box r2.Box, ok bool) {
	for i, s := range c.Shapes {
		b := s.Bounds()
		if i == 0 {
			box = b
			continue
		}
		box.Min.X = math.Min(box.Min.X, b.Min.X)
		box.Min.Y = math.Min(box.Min.Y, b.Min.Y)
		box.Max.X = math.Max(box.Max.X, b.Max.X)
		box.Max.Y = math.Max(box.Max.Y, b.Max.Y)
	}
	return box, len(c.Shapes) > 0
}

// Overlaps reports whether any shape of c overlaps any shape of other.
func (c CollisionSet) Overlaps(other CollisionSet) bool {
	for _, a := range c.Shapes {
		for _, b := range other.Shapes {
			if Overlap(a, b) {
				return true
			}
		}
	}
	return false
}

// Translate returns the set moved by d.
func (c CollisionSet) Translate(d r2.Vec) CollisionSet {
	out := make([]Shape, len(c.Shapes))
	for i, s := range c.Shapes {
		out[i] = Translate(s, d)
	}
	return CollisionSet{Shapes: out}
}

// Rotate returns the set turned by angle radians around the origin.
func (c CollisionSet) Rotate(angle float64) CollisionSet {
	out := make([]Shape, len(c.Shapes))
	for i, s := range c.Shapes {
		out[i] = Rotate(s, angle)
	}
	return CollisionSet{Shapes: out}
}
