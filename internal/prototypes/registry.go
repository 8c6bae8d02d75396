package prototypes

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/GriffinCanCode/landfiller/internal/geometry"
)

//go:embed vanilla.yaml
var vanillaCatalog []byte

// Box is a collision box as {left_top, right_bottom}, relative to the entity centre.
type Box [2][2]float64

// NewBox creates a box from its corners.
func NewBox(x0, y0, x1, y1 float64) Box {
	return Box{{x0, y0}, {x1, y1}}
}

// Rect returns the box as a geometry rectangle.
func (b Box) Rect() geometry.Rect {
	return geometry.NewRect(b[0][0], b[0][1], b[1][0], b[1][1])
}

// Outline is a convex collision piece relative to the entity centre. Two points are the
// corners of an axis-aligned box; three or more are polygon vertices in winding order.
type Outline [][2]float64

// Shape returns the outline as a geometry shape.
func (o Outline) Shape() geometry.Shape {
	if len(o) == 2 {
		return geometry.NewRect(o[0][0], o[0][1], o[1][0], o[1][1])
	}
	pts := make([]r2.Vec, len(o))
	for i, p := range o {
		pts[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	return geometry.NewPolygon(pts...)
}

// TilePrototype describes a tile kind.
type TilePrototype struct {
	Name string `yaml:"name"`
}

// EntityPrototype describes an entity kind.
type EntityPrototype struct {
	Name         string
	Type         string
	CollisionBox Box
	// Parts replaces CollisionBox for entities whose footprint is not one box. Parts[d]
	// holds the pieces for direction d, already turned; the list covers a full turn.
	Parts [][]Outline
}

type catalogEntity struct {
	Name           string          `yaml:"name"`
	Type           string          `yaml:"type"`
	CollisionBox   [][]float64     `yaml:"collision_box"`
	CollisionParts [][][][]float64 `yaml:"collision_parts"`
}

type catalog struct {
	Tiles    []TilePrototype `yaml:"tiles"`
	Entities []catalogEntity `yaml:"entities"`
}

// Registry is a name-keyed set of tile and entity prototypes.
type Registry struct {
	tiles    map[string]TilePrototype
	entities map[string]EntityPrototype
}

// NewRegistry creates a registry holding the given prototypes.
func NewRegistry(tiles []TilePrototype, entities []EntityPrototype) *Registry {
	r := &Registry{}
	r.Replace(tiles, entities)
	return r
}

// Vanilla returns a registry loaded from the embedded base-game catalog.
func Vanilla() (*Registry, error) {
	return ParseCatalog(vanillaCatalog)
}

// ParseCatalog reads a YAML catalog with "tiles" and "entities" lists.
func ParseCatalog(data []byte) (*Registry, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	entities := make([]EntityPrototype, 0, len(c.Entities))
	for _, e := range c.Entities {
		box, err := boxFromPairs(e.CollisionBox)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", e.Name, err)
		}
		parts, err := partsFromLists(e.CollisionParts)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", e.Name, err)
		}
		entities = append(entities, EntityPrototype{Name: e.Name, Type: e.Type, CollisionBox: box, Parts: parts})
	}

	return NewRegistry(c.Tiles, entities), nil
}

func boxFromPairs(pairs [][]float64) (Box, error) {
	if len(pairs) == 0 {
		return Box{}, nil
	}
	if len(pairs) != 2 || len(pairs[0]) != 2 || len(pairs[1]) != 2 {
		return Box{}, fmt.Errorf("collision_box must be two [x, y] pairs")
	}
	return NewBox(pairs[0][0], pairs[0][1], pairs[1][0], pairs[1][1]), nil
}

func partsFromLists(dirs [][][][]float64) ([][]Outline, error) {
	if len(dirs) == 0 {
		return nil, nil
	}
	out := make([][]Outline, len(dirs))
	for d, pieces := range dirs {
		for _, piece := range pieces {
			outline, err := OutlineFromPoints(piece)
			if err != nil {
				return nil, fmt.Errorf("collision_parts direction %d: %w", d, err)
			}
			out[d] = append(out[d], outline)
		}
	}
	return out, nil
}

// OutlineFromPoints validates a list of [x, y] pairs as an outline.
func OutlineFromPoints(points [][]float64) (Outline, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("outline needs at least two points")
	}
	o := make(Outline, len(points))
	for i, p := range points {
		if len(p) != 2 {
			return nil, fmt.Errorf("outline point %d is not an [x, y] pair", i)
		}
		o[i] = [2]float64{p[0], p[1]}
	}
	return o, nil
}

// Replace swaps the registry's contents for the given prototypes.
func (r *Registry) Replace(tiles []TilePrototype, entities []EntityPrototype) {
	r.tiles = make(map[string]TilePrototype, len(tiles))
	for _, t := range tiles {
		r.tiles[t.Name] = t
	}
	r.entities = make(map[string]EntityPrototype, len(entities))
	for _, e := range entities {
		r.entities[e.Name] = e
	}
}

// Tile looks up a tile prototype by name.
func (r *Registry) Tile(name string) (TilePrototype, bool) {
	t, ok := r.tiles[name]
	return t, ok
}

// HasTile reports whether name is a known tile kind.
func (r *Registry) HasTile(name string) bool {
	_, ok := r.tiles[name]
	return ok
}

// TileNames returns every tile kind, sorted.
func (r *Registry) TileNames() []string {
	names := make([]string, 0, len(r.tiles))
	for name := range r.tiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entity looks up an entity prototype by name.
func (r *Registry) Entity(name string) (EntityPrototype, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// Tiles returns every tile prototype sorted by name.
func (r *Registry) Tiles() []TilePrototype {
	out := make([]TilePrototype, 0, len(r.tiles))
	for _, name := range r.TileNames() {
		out = append(out, r.tiles[name])
	}
	return out
}

// Entities returns every entity prototype sorted by name.
func (r *Registry) Entities() []EntityPrototype {
	out := make([]EntityPrototype, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
