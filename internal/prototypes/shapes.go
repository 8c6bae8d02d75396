package prototypes

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/GriffinCanCode/landfiller/internal/blueprint"
	"github.com/GriffinCanCode/landfiller/internal/geometry"
)

// Shapes resolves world collision sets against a registry.
type Shapes struct {
	registry   *Registry
	directions int
}

// Shapes returns a resolver for blueprints splitting a full turn into directions steps.
func (r *Registry) Shapes(directions int) *Shapes {
	if directions <= 0 {
		directions = 8
	}
	return &Shapes{registry: r, directions: directions}
}

// Entity returns the entity's collision set in world coordinates. ok is false when the
// entity's prototype is unknown.
func (s *Shapes) Entity(e blueprint.Entity) (geometry.CollisionSet, bool) {
	proto, ok := s.registry.Entity(e.Name)
	if !ok {
		return geometry.CollisionSet{}, false
	}

	at := r2.Vec{X: e.Position.X, Y: e.Position.Y}
	if n := len(proto.Parts); n > 0 {
		return partsSet(proto.Parts[partIndex(e.Direction, n, s.directions)]).Translate(at), true
	}

	angle := float64(e.Direction) * 2 * math.Pi / float64(s.directions)
	set := geometry.NewCollisionSet(proto.CollisionBox.Rect()).
		Rotate(angle).
		Translate(at)
	return set, true
}

// partIndex maps a blueprint direction onto a table of n evenly spaced directions.
func partIndex(direction, n, directions int) int {
	i := direction * n / directions
	return ((i % n) + n) % n
}

func partsSet(pieces []Outline) geometry.CollisionSet {
	shapes := make([]geometry.Shape, len(pieces))
	for i, p := range pieces {
		shapes[i] = p.Shape()
	}
	return geometry.NewCollisionSet(shapes...)
}

// Tile returns the unit square a tile covers.
func (s *Shapes) Tile(t blueprint.Tile) geometry.CollisionSet {
	return geometry.NewCollisionSet(geometry.UnitSquare(t.Position.X, t.Position.Y))
}
