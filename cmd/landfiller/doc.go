// Package main is the entry point for landfiller.
//
// landfiller reads a Factorio blueprint string, adds landfill tiles under every entity and
// writes the result back out, so the blueprint can be built over water.
//
// Configuration:
//   - Defaults, with the mods folder taken from the platform
//   - A TOML file (--config or LANDFILLER_CONFIG)
//   - Environment variables (LANDFILLER_ prefix)
//   - CLI flags (override everything else)
//
// Usage:
//
//	# stdin to stdout
//	landfiller < factory.txt > factory-landfilled.txt
//
//	# clipboard round trip, keeping tiles already in the blueprint
//	landfiller --clip-in --clip-out --merge
//
// Signals:
//   - SIGINT, SIGTERM: cancel the run
package main
