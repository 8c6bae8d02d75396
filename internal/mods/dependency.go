package mods

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDependencyCycle is returned when enabled mods depend on each other in a loop.
var ErrDependencyCycle = errors.New("dependency cycle")

// DependencyKind is how a dependency constrains a mod.
type DependencyKind int

const (
	// Required dependencies must be present and load first.
	Required DependencyKind = iota
	// Optional dependencies load first when present.
	Optional
	// HiddenOptional behaves like Optional.
	HiddenOptional
	// Incompatible mods cannot be enabled together.
	Incompatible
	// Unordered dependencies must be present but do not affect load order.
	Unordered
)

var kindPrefixes = []struct {
	prefix string
	kind   DependencyKind
}{
	{"(?)", HiddenOptional},
	{"?", Optional},
	{"!", Incompatible},
	{"~", Unordered},
}

// Dependency is one parsed entry of info.json's dependencies.
type Dependency struct {
	Name    string
	Kind    DependencyKind
	Op      string
	Version Version
}

// ParseDependency reads entries such as "base >= 1.1", "? space-age" or "! bobs".
func ParseDependency(s string) (Dependency, error) {
	d := Dependency{Kind: Required}
	rest := strings.TrimSpace(s)
	for _, kp := range kindPrefixes {
		if strings.HasPrefix(rest, kp.prefix) {
			d.Kind = kp.kind
			rest = strings.TrimSpace(rest[len(kp.prefix):])
			break
		}
	}

	for _, op := range []string{"<=", ">=", "=", "<", ">"} {
		if i := strings.Index(rest, op); i >= 0 {
			v, err := ParseVersion(rest[i+len(op):])
			if err != nil {
				return Dependency{}, fmt.Errorf("dependency %q: %w", s, err)
			}
			d.Op, d.Version = op, v
			rest = rest[:i]
			break
		}
	}

	d.Name = strings.TrimSpace(rest)
	if d.Name == "" {
		return Dependency{}, fmt.Errorf("dependency %q has no mod name", s)
	}
	return d, nil
}

// Satisfied reports whether v meets the dependency's version constraint.
func (d Dependency) Satisfied(v Version) bool {
	c := v.Compare(d.Version)
	switch d.Op {
	case "":
		return true
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case "=":
		return c == 0
	case ">=":
		return c >= 0
	case ">":
		return c > 0
	}
	return false
}

func (d Dependency) ordersLoad() bool {
	return d.Kind == Required || d.Kind == Optional || d.Kind == HiddenOptional
}

// Skipped is a mod left out of the data stage.
type Skipped struct {
	Name   string
	Reason string
}

// Resolve drops mods whose dependencies cannot be met, repeating until every remaining mod
// is loadable. It returns the survivors keyed by name.
func Resolve(mods map[string]*Mod) (map[string]*Mod, []Skipped) {
	active := make(map[string]*Mod, len(mods))
	for name, m := range mods {
		active[name] = m
	}

	var skipped []Skipped
	for {
		var drop []Skipped
		for _, name := range sortedNames(active) {
			if reason := unmet(active[name], active); reason != "" {
				drop = append(drop, Skipped{Name: name, Reason: reason})
			}
		}
		if len(drop) == 0 {
			return active, skipped
		}
		for _, s := range drop {
			delete(active, s.Name)
		}
		skipped = append(skipped, drop...)
	}
}

func unmet(m *Mod, active map[string]*Mod) string {
	for _, d := range m.Dependencies {
		if builtin[d.Name] {
			continue
		}
		dep, present := active[d.Name]
		switch d.Kind {
		case Incompatible:
			if present {
				return fmt.Sprintf("incompatible with %s", d.Name)
			}
		case Required, Unordered:
			if !present {
				return fmt.Sprintf("missing dependency %s", d.Name)
			}
			if !d.Satisfied(dep.Version) {
				return fmt.Sprintf("needs %s %s %s, found %s", d.Name, d.Op, d.Version, dep.Version)
			}
		case Optional, HiddenOptional:
			if present && !d.Satisfied(dep.Version) {
				return fmt.Sprintf("needs %s %s %s, found %s", d.Name, d.Op, d.Version, dep.Version)
			}
		}
	}
	return ""
}

// Order returns mods so that every mod follows the mods it depends on, ties broken by name.
func Order(mods map[string]*Mod) ([]*Mod, error) {
	indegree := make(map[string]int, len(mods))
	dependents := make(map[string][]string, len(mods))
	for name, m := range mods {
		indegree[name] += 0
		for _, d := range m.Dependencies {
			if !d.ordersLoad() || builtin[d.Name] || d.Name == name {
				continue
			}
			if _, ok := mods[d.Name]; !ok {
				continue
			}
			indegree[name]++
			dependents[d.Name] = append(dependents[d.Name], name)
		}
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}

	ordered := make([]*Mod, 0, len(mods))
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, mods[name])

		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(ordered) != len(mods) {
		var stuck []string
		for name, n := range indegree {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w between %s", ErrDependencyCycle, strings.Join(stuck, ", "))
	}
	return ordered, nil
}

func sortedNames(mods map[string]*Mod) []string {
	names := make([]string, 0, len(mods))
	for name := range mods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
