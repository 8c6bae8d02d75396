package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/landfiller/internal/blueprint"
)

// Entity builds an entity facing north.
func Entity(number int, name string, x, y float64) blueprint.Entity {
	return blueprint.Entity{
		Number:   number,
		Name:     name,
		Position: blueprint.Position{X: x, Y: y},
	}
}

// Blueprint builds a 1.1 blueprint holding entities and tiles.
func Blueprint(entities []blueprint.Entity, tiles ...blueprint.Tile) *blueprint.Blueprint {
	bp := blueprint.New(blueprint.GameVersion(1, 1, 0))
	bp.Entities = entities
	bp.Tiles = tiles
	return bp
}

// EncodeBlueprint encodes bp, failing the test on error.
func EncodeBlueprint(t *testing.T, bp *blueprint.Blueprint) string {
	t.Helper()
	text, err := blueprint.Encode(bp)
	require.NoError(t, err)
	return text
}

// DecodeBlueprint decodes text, failing the test on error.
func DecodeBlueprint(t *testing.T, text string) *blueprint.Blueprint {
	t.Helper()
	bp, err := blueprint.Decode(text)
	require.NoError(t, err)
	return bp
}

// Cells returns the grid cells of tiles in order.
func Cells(tiles []blueprint.Tile) [][2]int {
	out := make([][2]int, 0, len(tiles))
	for _, t := range tiles {
		out = append(out, [2]int{t.Position.X, t.Position.Y})
	}
	return out
}
