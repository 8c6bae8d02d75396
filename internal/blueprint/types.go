package blueprint

import (
	"encoding/json"
	"math"

	"github.com/bytedance/sonic"
)

// Position is an entity's centre in tile units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TilePosition is the grid cell of a tile.
type TilePosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// UnmarshalJSON accepts fractional coordinates and floors them onto the grid.
func (p *TilePosition) UnmarshalJSON(data []byte) error {
	var v Position
	if err := sonic.ConfigStd.Unmarshal(data, &v); err != nil {
		return err
	}
	p.X = int(math.Floor(v.X))
	p.Y = int(math.Floor(v.Y))
	return nil
}

// Tile is one square of ground covering.
type Tile struct {
	Name     string       `json:"name"`
	Position TilePosition `json:"position"`
}

// NewTile creates a tile of kind name at grid cell (x, y).
func NewTile(name string, x, y int) Tile {
	return Tile{Name: name, Position: TilePosition{X: x, Y: y}}
}

// Entity is a placed game object. Only the fields needed for geometry are exposed; the
// original JSON is kept so the entity round-trips unchanged.
type Entity struct {
	Number    int
	Name      string
	Position  Position
	Direction int

	raw json.RawMessage
}

type entityFields struct {
	Number    int      `json:"entity_number"`
	Name      string   `json:"name"`
	Position  Position `json:"position"`
	Direction int      `json:"direction,omitempty"`
}

// UnmarshalJSON reads the known fields and remembers the full object.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var f entityFields
	if err := sonic.ConfigStd.Unmarshal(data, &f); err != nil {
		return err
	}
	*e = Entity{
		Number:    f.Number,
		Name:      f.Name,
		Position:  f.Position,
		Direction: f.Direction,
		raw:       append(json.RawMessage(nil), data...),
	}
	return nil
}

// MarshalJSON writes the original object when the entity was decoded, its fields otherwise.
func (e Entity) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return sonic.ConfigStd.Marshal(entityFields{
		Number:    e.Number,
		Name:      e.Name,
		Position:  e.Position,
		Direction: e.Direction,
	})
}
