package mods

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"

	"github.com/GriffinCanCode/landfiller/internal/paths"
)

// Discover lists the mods at the top level of dir. Entries without a readable info.json
// are returned as skipped instead of failing the scan.
func Discover(ctx context.Context, dir string) ([]*Mod, []Skipped, error) {
	var (
		mu      sync.Mutex
		found   []*Mod
		skipped []Skipped
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil
		}
		if filepath.Clean(p) == filepath.Clean(dir) {
			return nil
		}

		var (
			mod    *Mod
			modErr error
		)
		switch {
		case d.IsDir():
			mod, modErr = readDirMod(p)
		case strings.EqualFold(filepath.Ext(p), ".zip"):
			mod, modErr = readZipMod(p)
		default:
			return nil
		}

		mu.Lock()
		switch {
		case modErr != nil:
			skipped = append(skipped, Skipped{Name: filepath.Base(p), Reason: modErr.Error()})
		case mod != nil:
			found = append(found, mod)
		}
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Name < skipped[j].Name })
	return found, skipped, nil
}

// readDirMod returns nil without error for directories that are not mods.
func readDirMod(dir string) (*Mod, error) {
	data, err := os.ReadFile(filepath.Join(dir, paths.ModInfo))
	if isNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	info, err := parseInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	return newMod(info, dir, func() (source, error) {
		return dirSource{root: dir}, nil
	})
}

func readZipMod(archive string) (*Mod, error) {
	src, err := openZip(archive)
	if isNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", archive, err)
	}
	defer src.Close()

	data, err := src.ReadFile(paths.ModInfo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", archive, err)
	}
	info, err := parseInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", archive, err)
	}
	return newMod(info, archive, func() (source, error) {
		return openZip(archive)
	})
}

func parseInfo(data []byte) (Info, error) {
	var info Info
	if err := sonic.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("failed to parse %s: %w", paths.ModInfo, err)
	}
	return info, nil
}

// Newest keeps the highest version of each mod.
func Newest(found []*Mod) map[string]*Mod {
	out := make(map[string]*Mod, len(found))
	for _, m := range found {
		if cur, ok := out[m.Name]; !ok || m.Version.Compare(cur.Version) > 0 {
			out[m.Name] = m
		}
	}
	return out
}

type modList struct {
	Mods []struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	} `json:"mods"`
}

// LoadModList reads mod-list.json from dir. A missing file yields a nil map, meaning every
// mod is enabled.
func LoadModList(dir string) (map[string]bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, paths.ModList))
	if isNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list modList
	if err := sonic.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", paths.ModList, err)
	}

	enabled := make(map[string]bool, len(list.Mods))
	for _, m := range list.Mods {
		enabled[m.Name] = m.Enabled
	}
	return enabled, nil
}

// Enabled filters mods by a mod list. Mods the list does not mention are enabled.
func Enabled(mods map[string]*Mod, list map[string]bool) (map[string]*Mod, []Skipped) {
	out := make(map[string]*Mod, len(mods))
	var skipped []Skipped
	for _, name := range sortedNames(mods) {
		if on, listed := list[name]; listed && !on {
			skipped = append(skipped, Skipped{Name: name, Reason: "disabled in " + paths.ModList})
			continue
		}
		out[name] = mods[name]
	}
	return out, skipped
}
