package landfill

import (
	"math"

	"github.com/GriffinCanCode/landfiller/internal/blueprint"
	"github.com/GriffinCanCode/landfiller/internal/geometry"
)

// DefaultMargin is how many cells the scan rectangle extends past an entity's rounded
// bounding box on every side.
const DefaultMargin = 2

// Shapes resolves the collision sets the generator tests against each other.
type Shapes interface {
	// Entity returns an entity's world collision set; ok is false when it has none.
	Entity(e blueprint.Entity) (set geometry.CollisionSet, ok bool)
	// Tile returns a tile's world collision set.
	Tile(t blueprint.Tile) geometry.CollisionSet
}

// Coord is a tile's grid cell.
type Coord struct {
	X, Y int
}

// Stats summarises one generation pass.
type Stats struct {
	Entities  int
	Unknown   []string
	Generated int
}

// Generator places tiles of one kind under entities.
type Generator struct {
	shapes Shapes
	kind   string
	margin int
	filled map[Coord]struct{}
}

// NewGenerator creates a generator emitting tiles of kind, scanning margin cells past each
// entity's bounding box.
func NewGenerator(shapes Shapes, kind string, margin int) *Generator {
	return &Generator{
		shapes: shapes,
		kind:   kind,
		margin: margin,
		filled: make(map[Coord]struct{}),
	}
}

// Seed marks the cells of existing tiles as filled.
func (g *Generator) Seed(tiles []blueprint.Tile) {
	for _, t := range tiles {
		g.filled[Coord{X: t.Position.X, Y: t.Position.Y}] = struct{}{}
	}
}

// Filled reports whether a cell already holds a tile.
func (g *Generator) Filled(c Coord) bool {
	_, ok := g.filled[c]
	return ok
}

// Generate returns the new tiles for entities in blueprint order.
func (g *Generator) Generate(entities []blueprint.Entity) ([]blueprint.Tile, Stats) {
	var (
		tiles []blueprint.Tile
		stats Stats
	)
	for _, e := range entities {
		stats.Entities++
		set, ok := g.shapes.Entity(e)
		if !ok {
			stats.Unknown = append(stats.Unknown, e.Name)
			continue
		}
		tiles = g.fill(set, tiles)
	}
	stats.Generated = len(tiles)
	return tiles, stats
}

func (g *Generator) fill(entity geometry.CollisionSet, tiles []blueprint.Tile) []blueprint.Tile {
	box, ok := entity.BoundingBox()
	if !ok {
		return tiles
	}

	startX := int(math.RoundToEven(box.Min.X)) - g.margin
	endX := int(math.RoundToEven(box.Max.X)) + g.margin
	startY := int(math.RoundToEven(box.Min.Y)) - g.margin
	endY := int(math.RoundToEven(box.Max.Y)) + g.margin

	for tx := startX; tx < endX; tx++ {
		for ty := startY; ty < endY; ty++ {
			c := Coord{X: tx, Y: ty}
			if g.Filled(c) {
				continue
			}

			t := blueprint.NewTile(g.kind, tx, ty)
			if g.shapes.Tile(t).Overlaps(entity) {
				g.filled[c] = struct{}{}
				tiles = append(tiles, t)
			}
		}
	}
	return tiles
}
