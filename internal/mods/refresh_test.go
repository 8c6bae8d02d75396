package mods

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/landfiller/internal/logging"
	"github.com/GriffinCanCode/landfiller/internal/prototypes"
)

func infoJSON(t *testing.T, name, version string, deps ...string) string {
	t.Helper()
	info := Info{Name: name, Version: version, Title: name, Dependencies: deps}
	data, err := sonic.Marshal(info)
	require.NoError(t, err)
	return string(data)
}

// writeDirMod creates dir/<folder> holding files.
func writeDirMod(t *testing.T, dir, folder string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, folder, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// writeZipMod creates dir/<archive> with files under a top folder.
func writeZipMod(t *testing.T, dir, archive, top string, files map[string]string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, archive))
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		if top != "" {
			name = top + "/" + name
		}
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func vanilla(t *testing.T) *prototypes.Registry {
	t.Helper()
	reg, err := prototypes.Vanilla()
	require.NoError(t, err)
	return reg
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeDirMod(t, dir, "alpha", map[string]string{"info.json": infoJSON(t, "alpha", "1.0.0")})
	writeZipMod(t, dir, "beta_1.2.0.zip", "beta_1.2.0", map[string]string{"info.json": infoJSON(t, "beta", "1.2.0")})
	writeZipMod(t, dir, "beta_1.10.0.zip", "", map[string]string{"info.json": infoJSON(t, "beta", "1.10.0")})
	writeDirMod(t, dir, "not-a-mod", map[string]string{"readme.txt": "hi"})
	writeDirMod(t, dir, "broken", map[string]string{"info.json": "{"})
	writeZipMod(t, dir, "empty.zip", "x", map[string]string{"data.lua": ""})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod-settings.dat"), []byte{1, 2}, 0o644))

	found, skipped, err := Discover(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, found, 3)
	require.Len(t, skipped, 1)
	assert.Equal(t, "broken", skipped[0].Name)

	newest := Newest(found)
	require.Len(t, newest, 2)
	assert.Equal(t, Version{1, 10, 0}, newest["beta"].Version)
	assert.Equal(t, Version{1, 0, 0}, newest["alpha"].Version)
}

func TestDiscoverCancelled(t *testing.T) {
	dir := t.TempDir()
	writeDirMod(t, dir, "alpha", map[string]string{"info.json": infoJSON(t, "alpha", "1.0.0")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Discover(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadModList(t *testing.T) {
	dir := t.TempDir()

	list, err := LoadModList(dir)
	require.NoError(t, err)
	assert.Nil(t, list)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod-list.json"), []byte(`{
		"mods": [
			{"name": "base", "enabled": true},
			{"name": "alpha", "enabled": false},
			{"name": "beta", "enabled": true}
		]
	}`), 0o644))

	list, err = LoadModList(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"base": true, "alpha": false, "beta": true}, list)

	enabled, skipped := Enabled(byName(mod("alpha", "1.0.0"), mod("beta", "1.0.0"), mod("new", "1.0.0")), list)
	assert.Equal(t, []string{"beta", "new"}, keys(enabled))
	require.Len(t, skipped, 1)
	assert.Equal(t, "alpha", skipped[0].Name)
}

func TestLoadModListMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod-list.json"), []byte(`{"mods": [`), 0o644))

	_, err := LoadModList(dir)
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	dir := t.TempDir()

	writeDirMod(t, dir, "shallows", map[string]string{
		"info.json": infoJSON(t, "shallows", "0.1.0", "base >= 1.1"),
		"settings.lua": `data:extend({
			{type = "double-setting", name = "shallows-size", setting_type = "startup", default_value = 1.4},
		})`,
		"data.lua": `require("prototypes.tiles")
			local chest = table.deepcopy(data.raw["container"]["wooden-chest"])
			chest.name = "big-chest"
			local size = settings.startup["shallows-size"].value
			chest.collision_box = {left_top = {x = -size, y = -size}, right_bottom = {x = size, y = size}}
			data:extend({chest})
			log("added " .. chest.name)`,
		"prototypes/tiles.lua": `local util = require("util")
			data:extend({
				util.merge({{type = "tile", name = "shallow-water"}, {collision_mask = {"ground-tile"}}}),
			})`,
	})

	writeZipMod(t, dir, "tweaks_1.0.0.zip", "tweaks_1.0.0", map[string]string{
		"info.json":        infoJSON(t, "tweaks", "1.0.0", "shallows"),
		"data-updates.lua": `data.raw["container"]["big-chest"].collision_box = {{-1.9, -1.9}, {1.9, 1.9}}`,
		"data-final-fixes.lua": `if mods["shallows"] == "0.1.0" then
				data.raw["tile"]["shallow-water"] = nil
				data.raw["tile"]["tweaked-ground"] = {type = "tile", name = "tweaked-ground"}
			end`,
	})

	writeDirMod(t, dir, "broken", map[string]string{
		"info.json": infoJSON(t, "broken", "1.0.0"),
		"data.lua": `data:extend({{type = "tile", name = "half-done"}})
			error("boom")`,
	})

	writeDirMod(t, dir, "orphan", map[string]string{
		"info.json": infoJSON(t, "orphan", "1.0.0", "nowhere"),
		"data.lua":  `data:extend({{type = "tile", name = "orphan-tile"}})`,
	})

	reg := vanilla(t)
	report, err := Refresh(context.Background(), dir, reg, logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"broken", "shallows", "tweaks"}, report.Loaded)
	assert.Equal(t, 5, report.Scripts)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "broken", report.Failed[0].Mod)
	assert.Contains(t, report.Failed[0].Err, "boom")
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "orphan", report.Skipped[0].Name)

	// Vanilla survives the round trip through data.raw.
	assert.True(t, reg.HasTile("landfill"))
	chest, ok := reg.Entity("wooden-chest")
	require.True(t, ok)
	assert.Equal(t, prototypes.NewBox(-0.35, -0.35, 0.35, 0.35), chest.CollisionBox)

	rail, ok := reg.Entity("curved-rail")
	require.True(t, ok)
	vanillaRail, _ := vanilla(t).Entity("curved-rail")
	require.Len(t, rail.Parts, 8)
	assert.Equal(t, vanillaRail.Parts, rail.Parts)

	big, ok := reg.Entity("big-chest")
	require.True(t, ok)
	assert.Equal(t, "container", big.Type)
	assert.Equal(t, prototypes.NewBox(-1.9, -1.9, 1.9, 1.9), big.CollisionBox)

	assert.True(t, reg.HasTile("tweaked-ground"))
	assert.False(t, reg.HasTile("shallow-water"))
	assert.True(t, reg.HasTile("half-done"))
	assert.False(t, reg.HasTile("orphan-tile"))

	assert.Equal(t, len(reg.Tiles()), report.Tiles)
	assert.Equal(t, len(reg.Entities()), report.Entities)
}

func TestRefreshSettingDefault(t *testing.T) {
	dir := t.TempDir()
	writeDirMod(t, dir, "sized", map[string]string{
		"info.json": infoJSON(t, "sized", "1.0.0"),
		"settings.lua": `data:extend({
			{type = "double-setting", name = "sized-radius", setting_type = "startup", default_value = 0.75},
		})`,
		"data.lua": `local r = settings.startup["sized-radius"].value
			local missing = settings.startup["not-a-setting"].value
			assert(missing == nil)
			data:extend({{type = "simple-entity", name = "rock", collision_box = {{-r, -r}, {r, r}}}})`,
	})

	reg := vanilla(t)
	report, err := Refresh(context.Background(), dir, reg, logging.NewNop())
	require.NoError(t, err)
	assert.Empty(t, report.Failed)

	rock, ok := reg.Entity("rock")
	require.True(t, ok)
	assert.Equal(t, prototypes.NewBox(-0.75, -0.75, 0.75, 0.75), rock.CollisionBox)
	// Setting prototypes are not harvested as entities.
	_, ok = reg.Entity("sized-radius")
	assert.False(t, ok)
}

func TestRefreshDirections(t *testing.T) {
	tests := []struct {
		name    string
		targets string
		east    int
	}{
		{name: "1.1", targets: "1.1", east: 2},
		{name: "2.0", targets: "2.0", east: 4},
		{name: "unset", targets: "", east: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeDirMod(t, dir, "turns", map[string]string{
				"info.json": `{"name": "turns", "version": "1.0.0", "factorio_version": "` + tt.targets + `"}`,
				"data.lua": fmt.Sprintf(`assert(defines.direction.north == 0)
					assert(defines.direction.east == %d, "east is " .. tostring(defines.direction.east))
					assert(defines.direction.northwest == %d)`, tt.east, tt.east*3+tt.east/2),
			})

			report, err := Refresh(context.Background(), dir, vanilla(t), logging.NewNop())
			require.NoError(t, err)
			assert.Empty(t, report.Failed)
			assert.Equal(t, 1, report.Scripts)
		})
	}
}

func TestRefreshCollisionParts(t *testing.T) {
	dir := t.TempDir()
	writeDirMod(t, dir, "bend", map[string]string{
		"info.json": infoJSON(t, "bend", "1.0.0"),
		"data.lua": `data:extend({{
			type = "simple-entity", name = "elbow",
			collision_box = {{-1, -1}, {1, 1}},
			collision_parts = {
				{ {{-1, -1}, {0, 1}}, {{0, 0}, {1, 0}, {1, 1}} },
				{ {{-1, -1}, {1, 0}} },
			},
		}, {
			type = "simple-entity", name = "mangled",
			collision_box = {{-1, -1}, {1, 1}},
			collision_parts = { { {{-1, -1}} } },
		}})`,
	})

	reg := vanilla(t)
	_, err := Refresh(context.Background(), dir, reg, logging.NewNop())
	require.NoError(t, err)

	elbow, ok := reg.Entity("elbow")
	require.True(t, ok)
	assert.Equal(t, [][]prototypes.Outline{
		{{{-1, -1}, {0, 1}}, {{0, 0}, {1, 0}, {1, 1}}},
		{{{-1, -1}, {1, 0}}},
	}, elbow.Parts)

	mangled, ok := reg.Entity("mangled")
	require.True(t, ok)
	assert.Nil(t, mangled.Parts)
	assert.Equal(t, prototypes.NewBox(-1, -1, 1, 1), mangled.CollisionBox)
}

func TestRefreshSandbox(t *testing.T) {
	dir := t.TempDir()
	writeDirMod(t, dir, "nosy", map[string]string{
		"info.json": infoJSON(t, "nosy", "1.0.0"),
		"data.lua":  `dofile("/etc/passwd")`,
	})

	report, err := Refresh(context.Background(), dir, vanilla(t), logging.NewNop())
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
}

func TestRefreshMissingRequire(t *testing.T) {
	dir := t.TempDir()
	writeDirMod(t, dir, "needy", map[string]string{
		"info.json": infoJSON(t, "needy", "1.0.0"),
		"data.lua":  `require("__base__/prototypes/entity/pipecovers")`,
	})

	report, err := Refresh(context.Background(), dir, vanilla(t), logging.NewNop())
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed[0].Err, "not found")
}

func TestRefreshCycle(t *testing.T) {
	dir := t.TempDir()
	writeDirMod(t, dir, "a", map[string]string{"info.json": infoJSON(t, "a", "1.0.0", "b")})
	writeDirMod(t, dir, "b", map[string]string{"info.json": infoJSON(t, "b", "1.0.0", "a")})

	reg := vanilla(t)
	before := len(reg.Tiles())

	_, err := Refresh(context.Background(), dir, reg, logging.NewNop())
	require.ErrorIs(t, err, ErrDependencyCycle)
	assert.Len(t, reg.Tiles(), before)
}

func TestRefreshEmptyFolderKeepsVanilla(t *testing.T) {
	reg := vanilla(t)
	want := reg.TileNames()

	report, err := Refresh(context.Background(), t.TempDir(), reg, logging.NewNop())
	require.NoError(t, err)
	assert.Empty(t, report.Loaded)
	assert.Equal(t, want, reg.TileNames())
}
