package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Files inside a mods folder
const (
	ModList = "mod-list.json"
	ModInfo = "info.json"
)

// DefaultModsDir returns the mods folder for the running platform, or "" when unknown.
func DefaultModsDir() string {
	home, _ := os.UserHomeDir()
	return ModsDirFor(runtime.GOOS, home, os.Getenv("APPDATA"))
}

// ModsDirFor returns the mods folder for goos given the user's home and %APPDATA% directories.
func ModsDirFor(goos, home, appData string) string {
	switch goos {
	case "windows":
		if appData == "" {
			return ""
		}
		return appData + `\Factorio\mods`
	case "linux":
		if home == "" {
			return ""
		}
		return filepath.Join(home, ".factorio", "mods")
	case "darwin":
		if home == "" {
			return ""
		}
		return filepath.Join(home, "Library", "Application Support", "factorio", "mods")
	default:
		return ""
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ValidateDir checks that path exists, is a directory and can be listed.
func ValidateDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
