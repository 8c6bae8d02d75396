// Package prototypes holds the tile and entity definitions landfiller knows about.
//
// The registry starts from a vanilla catalog embedded in the binary and can be rebuilt from
// a mods folder (see package mods). Every geometry question the tool asks goes through it:
// which tile kinds exist, and what an entity's collision box is.
//
// Most entities are one box turned by their direction. Entities whose footprint bends, such as
// curved rails, list their pieces per direction instead.
//
// Components:
//   - Registry: name-keyed tile and entity prototypes
//   - Shapes: turns blueprint entities and tiles into world collision sets
//
// Example Usage:
//
//	reg, err := prototypes.Vanilla()
//	shapes := reg.Shapes(bp.Directions())
//	set, ok := shapes.Entity(bp.Entities[0])
package prototypes
