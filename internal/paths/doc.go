// Package paths provides the well-known filesystem locations landfiller looks at.
//
// The only location the tool needs is the game's mods folder. Its default depends on the
// operating system the game runs on:
//
//   - windows: %APPDATA%\Factorio\mods
//   - linux:   ~/.factorio/mods
//   - darwin:  ~/Library/Application Support/factorio/mods
//
// Other platforms have no default and mods are only loaded when a folder is given explicitly.
package paths
