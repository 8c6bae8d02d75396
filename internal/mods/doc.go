// Package mods rebuilds the prototype registry from a Factorio mods folder.
//
// A refresh runs in four steps:
//   - Discovery: every top-level directory or .zip in the folder holding an info.json
//   - Selection: mod-list.json decides which mods are enabled; the newest version wins
//   - Ordering: dependencies load first, ties broken by name
//   - Data stage: each mod's data.lua, data-updates.lua and data-final-fixes.lua run in a
//     sandboxed Lua VM whose data.raw starts out as the current registry
//
// Whatever data.raw holds afterwards replaces the registry: every tile prototype becomes a
// tile kind, every other prototype with a collision_box becomes an entity.
//
// A script that fails is logged and skipped. Changes it made to data.raw before failing
// are kept.
//
// Example Usage:
//
//	report, err := mods.Refresh(ctx, "~/.factorio/mods", registry, logger)
//	logger.Info("mods loaded", zap.Strings("mods", report.Loaded))
package mods
