package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/landfiller/internal/paths"
)

// EnvPrefix prefixes every environment variable landfiller reads.
const EnvPrefix = "landfiller"

// EnvConfigFile names the config file when --config is absent.
const EnvConfigFile = "LANDFILLER_CONFIG"

// EnvModpath names the mods folder variable.
const EnvModpath = "LANDFILLER_MODPATH"

var (
	// ErrInvalid marks every configuration error.
	ErrInvalid = errors.New("invalid configuration")
	// ErrStripAndMerge is returned when strip and merge are both requested.
	ErrStripAndMerge = fmt.Errorf("%w: cannot provide --strip and --merge at the same time", ErrInvalid)
	// ErrModpath is returned when an explicitly configured mods folder is unusable.
	ErrModpath = fmt.Errorf("%w: bad mods folder", ErrInvalid)
)

// Config holds all landfiller configuration.
type Config struct {
	Blueprint  string `toml:"blueprint"`
	Output     string `toml:"output"`
	ClipIn     bool   `toml:"clip_in" split_words:"true"`
	ClipOut    bool   `toml:"clip_out" split_words:"true"`
	Modpath    string `toml:"modpath"`
	IgnoreMods bool   `toml:"ignore_mods" split_words:"true"`
	Landfill   string `toml:"landfill"`
	Strip      bool   `toml:"strip"`
	Merge      bool   `toml:"merge"`
	Margin     int    `toml:"margin"`
	LogLevel   string `toml:"log_level" split_words:"true"`

	defaultModpath string
	// modpathSet records that a file, variable or flag named the mods folder.
	modpathSet bool
}

// hyphenEnv holds the hyphenated variable names older releases read, such as
// LANDFILLER_CLIP-IN. The underscored names win when both are set.
type hyphenEnv struct {
	ClipIn     *bool   `envconfig:"CLIP-IN"`
	ClipOut    *bool   `envconfig:"CLIP-OUT"`
	IgnoreMods *bool   `envconfig:"IGNORE-MODS"`
	LogLevel   *string `envconfig:"LOG-LEVEL"`
}

// Default returns default configuration.
func Default() *Config {
	modpath := paths.DefaultModsDir()
	return &Config{
		Modpath:        modpath,
		Landfill:       "landfill",
		Margin:         2,
		LogLevel:       "info",
		defaultModpath: modpath,
	}
}

// Load assembles configuration from defaults, the config file, the environment and the
// flags changed in fs. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path := FilePath(fs); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	if fs != nil {
		if err := cfg.ApplyFlags(fs); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadFile overlays the keys present in a TOML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(paths.ExpandHome(path))
	if err != nil {
		return fmt.Errorf("%w: failed to open config file: %w", ErrInvalid, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %w", ErrInvalid, path, err)
	}

	var keys struct {
		Modpath *string `toml:"modpath"`
	}
	if err := toml.Unmarshal(data, &keys); err == nil && keys.Modpath != nil {
		c.modpathSet = true
	}
	return nil
}

// LoadEnv overlays the LANDFILLER_ environment variables that are set.
func (c *Config) LoadEnv() error {
	var old hyphenEnv
	if err := envconfig.Process(EnvPrefix, &old); err != nil {
		return fmt.Errorf("%w: failed to load environment: %w", ErrInvalid, err)
	}
	old.apply(c)

	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("%w: failed to load environment: %w", ErrInvalid, err)
	}
	if _, ok := os.LookupEnv(EnvModpath); ok {
		c.modpathSet = true
	}
	return nil
}

func (h hyphenEnv) apply(c *Config) {
	if h.ClipIn != nil {
		c.ClipIn = *h.ClipIn
	}
	if h.ClipOut != nil {
		c.ClipOut = *h.ClipOut
	}
	if h.IgnoreMods != nil {
		c.IgnoreMods = *h.IgnoreMods
	}
	if h.LogLevel != nil {
		c.LogLevel = *h.LogLevel
	}
}

// Validate reports configuration that cannot be run.
func (c *Config) Validate() error {
	if c.Strip && c.Merge {
		return ErrStripAndMerge
	}
	if c.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative, got %d", ErrInvalid, c.Margin)
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	if c.IgnoreMods || c.Modpath == "" {
		return nil
	}
	if !c.modpathSet && c.Modpath == c.defaultModpath {
		return nil
	}
	if err := paths.ValidateDir(paths.ExpandHome(c.Modpath)); err != nil {
		return fmt.Errorf("%w: %w", ErrModpath, err)
	}
	return nil
}

// UseMods reports whether a mods folder should be loaded.
func (c *Config) UseMods() bool {
	if c.IgnoreMods || c.Modpath == "" {
		return false
	}
	return paths.ValidateDir(paths.ExpandHome(c.Modpath)) == nil
}
