// Package landfill decides which ground tiles a blueprint needs and adds them.
//
// Two pieces live here:
//   - Policy: what to do with tiles the blueprint already has (abort, strip or merge)
//   - Generator: the per-entity scan that emits one tile per uncovered grid cell under
//     each entity's collision shape
//
// For every entity, in blueprint order, the generator rounds the entity's bounding box onto
// the grid, widens it by a margin on every side and visits each cell x-major, y-minor. A cell
// already in the filled set is skipped; otherwise a tile is placed there when its square
// overlaps the entity's collision shape. The filled set is shared across entities, so
// overlapping footprints never yield two tiles for one cell.
//
// Example Usage:
//
//	if err := landfill.ValidateKind(registry, "landfill"); err != nil { ... }
//	action, err := landfill.Resolve(len(bp.Tiles), strip, merge)
//	stats := landfill.Apply(bp, registry.Shapes(bp.Directions()), "landfill", action, landfill.DefaultMargin)
package landfill
