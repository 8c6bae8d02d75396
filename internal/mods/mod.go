package mods

import (
	"fmt"
	"strconv"
	"strings"
)

// Built-in mods are part of the game and never live in the mods folder.
var builtin = map[string]bool{"base": true, "core": true}

// Version is a mod's major.minor.patch version.
type Version [3]int

// ParseVersion reads "1.2.3"; missing trailing parts are zero.
func ParseVersion(s string) (Version, error) {
	var v Version
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return v, fmt.Errorf("bad version %q", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return v, fmt.Errorf("bad version %q", s)
		}
		v[i] = n
	}
	return v, nil
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	for i := range v {
		switch {
		case v[i] < o[i]:
			return -1
		case v[i] > o[i]:
			return 1
		}
	}
	return 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// Info is the subset of info.json the loader reads.
type Info struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Title        string   `json:"title"`
	Dependencies []string `json:"dependencies"`
	// FactorioVersion is the game version the mod targets, "major.minor".
	FactorioVersion string `json:"factorio_version,omitempty"`
}

// Mod is a discovered mod.
type Mod struct {
	Name         string
	Version      Version
	Title        string
	Dependencies []Dependency
	// Targets is the game version from factorio_version; zero when absent or unreadable.
	Targets Version
	// Path is the mod's directory or archive.
	Path string

	open func() (source, error)
}

func newMod(info Info, path string, open func() (source, error)) (*Mod, error) {
	if info.Name == "" {
		return nil, fmt.Errorf("%s: info.json has no name", path)
	}
	version, err := ParseVersion(info.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	raw := info.Dependencies
	if raw == nil {
		raw = []string{"base"}
	}
	deps := make([]Dependency, 0, len(raw))
	for _, s := range raw {
		d, err := ParseDependency(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		deps = append(deps, d)
	}

	targets, _ := ParseVersion(info.FactorioVersion)

	return &Mod{
		Name:         info.Name,
		Version:      version,
		Title:        info.Title,
		Dependencies: deps,
		Targets:      targets,
		Path:         path,
		open:         open,
	}, nil
}

// Directions returns how many steps a full turn has in the game version the mod targets.
func (m *Mod) Directions() int {
	if m.Targets[0] >= 2 {
		return 16
	}
	return 8
}

// directionsFor picks the direction numbering for a load: 16 once any mod targets 2.0.
func directionsFor(ordered []*Mod) int {
	for _, m := range ordered {
		if m.Directions() == 16 {
			return 16
		}
	}
	return 8
}
