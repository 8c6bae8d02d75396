package landfill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/landfiller/internal/blueprint"
)

// ErrUnknownTile is returned when the landfill kind is not a registered tile.
var ErrUnknownTile = errors.New("unknown tile kind")

// TileRegistry lists the tile kinds that may be placed.
type TileRegistry interface {
	HasTile(name string) bool
	TileNames() []string
}

// ValidateKind checks kind against the registry, naming every valid kind on failure.
func ValidateKind(tiles TileRegistry, kind string) error {
	if tiles.HasTile(kind) {
		return nil
	}
	return fmt.Errorf("%w %q, must be one of: %s", ErrUnknownTile, kind, strings.Join(tiles.TileNames(), ", "))
}

// Apply strips or seeds the blueprint's tiles according to action, then appends a tile of
// kind under every entity.
func Apply(bp *blueprint.Blueprint, shapes Shapes, kind string, action Action, margin int) Stats {
	if action == ActionStrip {
		bp.Tiles = nil
	}

	gen := NewGenerator(shapes, kind, margin)
	gen.Seed(bp.Tiles)

	tiles, stats := gen.Generate(bp.Entities)
	bp.Tiles = append(bp.Tiles, tiles...)
	return stats
}
