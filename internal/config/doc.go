// Package config provides layered configuration for landfiller.
//
// Configuration is assembled in passes, each overriding the one before:
//   - Defaults: Default(), with the mods folder taken from the platform
//   - File: an optional TOML file named by --config or LANDFILLER_CONFIG
//   - Environment: LANDFILLER_ prefixed variables
//   - Flags: only flags given on the command line
//
// Example Usage:
//
//	fs := pflag.NewFlagSet("landfiller", pflag.ContinueOnError)
//	config.RegisterFlags(fs)
//	_ = fs.Parse(os.Args[1:])
//	cfg, err := config.Load(fs)
//
// Environment Variables:
//   - LANDFILLER_BLUEPRINT, LANDFILLER_OUTPUT, LANDFILLER_CLIP_IN, LANDFILLER_CLIP_OUT
//   - LANDFILLER_MODPATH, LANDFILLER_IGNORE_MODS
//   - LANDFILLER_LANDFILL, LANDFILLER_STRIP, LANDFILLER_MERGE, LANDFILLER_MARGIN
//   - LANDFILLER_LOG_LEVEL, LANDFILLER_CONFIG
package config
