package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Flag names
const (
	FlagInput      = "input"
	FlagOutput     = "output"
	FlagClipIn     = "clip-in"
	FlagClipOut    = "clip-out"
	FlagModpath    = "modpath"
	FlagIgnoreMods = "ignore-mods"
	FlagLandfill   = "landfill"
	FlagStrip      = "strip"
	FlagMerge      = "merge"
	FlagMargin     = "margin"
	FlagLogLevel   = "log-level"
	FlagConfig     = "config"
)

// RegisterFlags adds every configuration flag to fs, defaulted from Default().
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()

	fs.StringP(FlagInput, "i", "", "The blueprint to add landfill to (default stdin)")
	fs.StringP(FlagOutput, "o", "", "Where to output the modified blueprint (default stdout)")
	fs.Bool(FlagClipIn, false, "Consume the input blueprint from the clipboard")
	fs.Bool(FlagClipOut, false, "Output the modified blueprint to the clipboard")

	fs.String(FlagModpath, def.Modpath, "Path to the factorio mods folder")
	fs.Bool(FlagIgnoreMods, false, "Ignore mods even if detected")
	fs.String(FlagLandfill, def.Landfill, "The kind of landfill to add")
	fs.Int(FlagMargin, def.Margin, "Cells scanned past each entity's bounding box")
	fs.String(FlagLogLevel, def.LogLevel, "Log level: debug, info, warn or error")
	fs.String(FlagConfig, "", "TOML file holding any of these options")

	fs.Bool(FlagStrip, false, "Forcefully strip existing tiles")
	fs.Bool(FlagMerge, false, "Merge new landfill with existing tiles")
}

// FilePath returns the config file named by --config, falling back to LANDFILLER_CONFIG.
func FilePath(fs *pflag.FlagSet) string {
	if fs != nil && fs.Changed(FlagConfig) {
		path, _ := fs.GetString(FlagConfig)
		return path
	}
	return os.Getenv(EnvConfigFile)
}

// ApplyFlags overlays the flags explicitly set in fs.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	strs := map[string]*string{
		FlagInput:    &c.Blueprint,
		FlagOutput:   &c.Output,
		FlagModpath:  &c.Modpath,
		FlagLandfill: &c.Landfill,
		FlagLogLevel: &c.LogLevel,
	}
	bools := map[string]*bool{
		FlagClipIn:     &c.ClipIn,
		FlagClipOut:    &c.ClipOut,
		FlagIgnoreMods: &c.IgnoreMods,
		FlagStrip:      &c.Strip,
		FlagMerge:      &c.Merge,
	}

	var err error
	for name, dst := range strs {
		if fs.Changed(name) {
			if *dst, err = fs.GetString(name); err != nil {
				return fmt.Errorf("%w: --%s: %w", ErrInvalid, name, err)
			}
		}
	}
	for name, dst := range bools {
		if fs.Changed(name) {
			if *dst, err = fs.GetBool(name); err != nil {
				return fmt.Errorf("%w: --%s: %w", ErrInvalid, name, err)
			}
		}
	}
	if fs.Changed(FlagModpath) {
		c.modpathSet = true
	}
	if fs.Changed(FlagMargin) {
		if c.Margin, err = fs.GetInt(FlagMargin); err != nil {
			return fmt.Errorf("%w: --%s: %w", ErrInvalid, FlagMargin, err)
		}
	}
	return nil
}
