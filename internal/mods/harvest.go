package mods

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/GriffinCanCode/landfiller/internal/prototypes"
)

// harvest reads tile and entity prototypes back out of data.raw.
func harvest(raw *lua.LTable) ([]prototypes.TilePrototype, []prototypes.EntityPrototype) {
	var (
		tiles    []prototypes.TilePrototype
		entities []prototypes.EntityPrototype
	)

	raw.ForEach(func(k, v lua.LValue) {
		kind, ok := k.(lua.LString)
		protos, isTable := v.(*lua.LTable)
		if !ok || !isTable {
			return
		}

		protos.ForEach(func(k, v lua.LValue) {
			name, ok := k.(lua.LString)
			proto, isTable := v.(*lua.LTable)
			if !ok || !isTable {
				return
			}

			if kind == "tile" {
				tiles = append(tiles, prototypes.TilePrototype{Name: string(name)})
				return
			}
			box, ok := parseBox(proto.RawGetString("collision_box"))
			if !ok {
				return
			}
			entities = append(entities, prototypes.EntityPrototype{
				Name:         string(name),
				Type:         string(kind),
				CollisionBox: box,
				Parts:        parseParts(proto.RawGetString("collision_parts")),
			})
		})
	})

	return tiles, entities
}

// parseBox accepts {{x0, y0}, {x1, y1}} or {left_top = ..., right_bottom = ...}, with corners
// as arrays or {x = , y = } tables.
func parseBox(v lua.LValue) (prototypes.Box, bool) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return prototypes.Box{}, false
	}

	lt := field(t, 1, "left_top")
	rb := field(t, 2, "right_bottom")
	x0, y0, ok0 := parseVector(lt)
	x1, y1, ok1 := parseVector(rb)
	if !ok0 || !ok1 {
		return prototypes.Box{}, false
	}
	return prototypes.NewBox(x0, y0, x1, y1), true
}

// parseParts reads a per-direction list of outlines. Anything malformed drops the parts and
// leaves the entity on its collision box.
func parseParts(v lua.LValue) [][]prototypes.Outline {
	dirs, ok := v.(*lua.LTable)
	if !ok || dirs.Len() == 0 {
		return nil
	}

	out := make([][]prototypes.Outline, 0, dirs.Len())
	for d := 1; d <= dirs.Len(); d++ {
		pieces, ok := dirs.RawGetInt(d).(*lua.LTable)
		if !ok {
			return nil
		}
		var outlines []prototypes.Outline
		for i := 1; i <= pieces.Len(); i++ {
			outline, ok := parseOutline(pieces.RawGetInt(i))
			if !ok {
				return nil
			}
			outlines = append(outlines, outline)
		}
		out = append(out, outlines)
	}
	return out
}

func parseOutline(v lua.LValue) (prototypes.Outline, bool) {
	t, ok := v.(*lua.LTable)
	if !ok || t.Len() < 2 {
		return nil, false
	}
	o := make(prototypes.Outline, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		x, y, ok := parseVector(t.RawGetInt(i))
		if !ok {
			return nil, false
		}
		o = append(o, [2]float64{x, y})
	}
	return o, true
}

func parseVector(v lua.LValue) (x, y float64, ok bool) {
	t, isTable := v.(*lua.LTable)
	if !isTable {
		return 0, 0, false
	}
	xv, okX := field(t, 1, "x").(lua.LNumber)
	yv, okY := field(t, 2, "y").(lua.LNumber)
	if !okX || !okY {
		return 0, 0, false
	}
	return float64(xv), float64(yv), true
}

func field(t *lua.LTable, index int, key string) lua.LValue {
	if v := t.RawGetInt(index); v != lua.LNil {
		return v
	}
	return t.RawGetString(key)
}
