package mods

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/landfiller/internal/logging"
	"github.com/GriffinCanCode/landfiller/internal/prototypes"
)

//go:embed lualib/*.lua
var lualib embed.FS

// Script stages in the order the game runs them.
var (
	settingsStage = []string{"settings.lua", "settings-updates.lua", "settings-final-fixes.lua"}
	dataStage     = []string{"data.lua", "data-updates.lua", "data-final-fixes.lua"}
)

// ScriptError is a mod script that failed and was skipped.
type ScriptError struct {
	Mod  string
	File string
	Err  string
}

type frame struct {
	mod string
	dir string
}

type loadedMod struct {
	mod *Mod
	src source
}

// vm runs mod scripts against a shared data table. Single-goroutine access only.
type vm struct {
	L      *lua.LState
	log    *logging.Logger
	mods   map[string]loadedMod
	frames []frame
	loaded map[string]lua.LValue
}

func newVM(ctx context.Context, logger *logging.Logger) (*vm, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	L.SetContext(ctx)

	v := &vm{
		L:      L,
		log:    logger,
		mods:   make(map[string]loadedMod),
		loaded: make(map[string]lua.LValue),
	}
	if err := v.open(); err != nil {
		L.Close()
		return nil, err
	}
	return v, nil
}

// open loads the safe standard libraries and the game globals.
func (v *vm) open() error {
	for _, pair := range []struct {
		n string
		f lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := v.L.CallByParam(lua.P{
			Fn:      v.L.NewFunction(pair.f),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.n)); err != nil {
			return fmt.Errorf("open %s: %w", pair.n, err)
		}
	}

	// No host filesystem access
	v.L.SetGlobal("dofile", lua.LNil)
	v.L.SetGlobal("loadfile", lua.LNil)

	v.L.SetGlobal("require", v.L.NewFunction(v.require))
	v.L.SetGlobal("log", v.L.NewFunction(v.logFn))
	v.L.SetGlobal("print", v.L.NewFunction(v.logFn))

	if err := v.doLualib("dataloader"); err != nil {
		return err
	}
	util, err := v.lualibModule("util")
	if err != nil {
		return err
	}
	v.loaded["lualib:util"] = util
	return nil
}

func (v *vm) Close() {
	for _, m := range v.mods {
		if err := m.src.Close(); err != nil {
			v.log.Debug("failed to close mod", zap.String("mod", m.mod.Name), zap.Error(err))
		}
	}
	v.L.Close()
}

// attach makes a mod's files available to require and the stage runners.
func (v *vm) attach(m *Mod, src source) {
	v.mods[m.Name] = loadedMod{mod: m, src: src}
}

// directionNames lists defines.direction from north, clockwise, in 16 steps.
var directionNames = []string{
	"north", "northnortheast", "northeast", "eastnortheast",
	"east", "eastsoutheast", "southeast", "southsoutheast",
	"south", "southsouthwest", "southwest", "westsouthwest",
	"west", "westnorthwest", "northwest", "northnorthwest",
}

// setDirections publishes defines.direction numbered for a turn of n steps, 8 or 16.
func (v *vm) setDirections(n int) {
	if n != 16 {
		n = 8
	}
	defines, ok := v.L.GetGlobal("defines").(*lua.LTable)
	if !ok {
		defines = v.L.NewTable()
		v.L.SetGlobal("defines", defines)
	}

	t := v.L.NewTable()
	step := len(directionNames) / n
	for i := 0; i < n; i++ {
		t.RawSetString(directionNames[i*step], lua.LNumber(i))
	}
	defines.RawSetString("direction", t)
}

// setMods publishes the global mods table of name to version.
func (v *vm) setMods(ordered []*Mod) {
	t := v.L.NewTable()
	for _, m := range ordered {
		t.RawSetString(m.Name, lua.LString(m.Version.String()))
	}
	v.L.SetGlobal("mods", t)
}

// runStage runs one stage file of every mod in order and returns the number of scripts
// that ran and the ones that failed.
func (v *vm) runStage(ctx context.Context, ordered []*Mod, file string) (int, []ScriptError, error) {
	var (
		ran    int
		failed []ScriptError
	)
	for _, m := range ordered {
		if err := ctx.Err(); err != nil {
			return ran, failed, err
		}

		loaded, ok := v.mods[m.Name]
		if !ok {
			continue
		}
		data, err := loaded.src.ReadFile(file)
		if isNotExist(err) {
			continue
		}

		ran++
		if err == nil {
			err = v.exec(m.Name, file, data)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ran, failed, ctxErr
		}
		if err != nil {
			v.log.Warn("mod script failed, skipping",
				zap.String("mod", m.Name),
				zap.String("file", file),
				zap.Error(err))
			failed = append(failed, ScriptError{Mod: m.Name, File: file, Err: err.Error()})
			continue
		}
		v.log.Debug("ran mod script", zap.String("mod", m.Name), zap.String("file", file))
	}
	return ran, failed, nil
}

func (v *vm) exec(mod, file string, data []byte) error {
	fn, err := v.L.Load(bytes.NewReader(data), chunkName(mod, file))
	if err != nil {
		return err
	}

	v.push(frame{mod: mod, dir: path.Dir(file)})
	defer v.pop()

	top := v.L.GetTop()
	defer v.L.SetTop(top)
	v.L.Push(fn)
	return v.L.PCall(0, 0, nil)
}

// collectSettings turns startup setting prototypes into settings.startup values.
func (v *vm) collectSettings() error {
	return v.L.CallByParam(lua.P{
		Fn:      v.L.GetGlobal("__collect_settings"),
		NRet:    0,
		Protect: true,
	})
}

// seed fills data.raw with the registry's prototypes.
func (v *vm) seed(reg *prototypes.Registry) {
	raw := v.raw()

	tiles := v.L.NewTable()
	for _, t := range reg.Tiles() {
		p := v.L.NewTable()
		p.RawSetString("type", lua.LString("tile"))
		p.RawSetString("name", lua.LString(t.Name))
		tiles.RawSetString(t.Name, p)
	}
	raw.RawSetString("tile", tiles)

	for _, e := range reg.Entities() {
		kind, ok := raw.RawGetString(e.Type).(*lua.LTable)
		if !ok {
			kind = v.L.NewTable()
			raw.RawSetString(e.Type, kind)
		}
		p := v.L.NewTable()
		p.RawSetString("type", lua.LString(e.Type))
		p.RawSetString("name", lua.LString(e.Name))
		p.RawSetString("collision_box", v.box(e.CollisionBox))
		if len(e.Parts) > 0 {
			p.RawSetString("collision_parts", v.parts(e.Parts))
		}
		kind.RawSetString(e.Name, p)
	}
}

func (v *vm) box(b prototypes.Box) *lua.LTable {
	t := v.L.NewTable()
	for _, corner := range b {
		c := v.L.NewTable()
		c.Append(lua.LNumber(corner[0]))
		c.Append(lua.LNumber(corner[1]))
		t.Append(c)
	}
	return t
}

func (v *vm) parts(dirs [][]prototypes.Outline) *lua.LTable {
	t := v.L.NewTable()
	for _, pieces := range dirs {
		pt := v.L.NewTable()
		for _, o := range pieces {
			ot := v.L.NewTable()
			for _, p := range o {
				c := v.L.NewTable()
				c.Append(lua.LNumber(p[0]))
				c.Append(lua.LNumber(p[1]))
				ot.Append(c)
			}
			pt.Append(ot)
		}
		t.Append(pt)
	}
	return t
}

func (v *vm) raw() *lua.LTable {
	data, _ := v.L.GetGlobal("data").(*lua.LTable)
	if data == nil {
		data = v.L.NewTable()
		v.L.SetGlobal("data", data)
	}
	raw, _ := data.RawGetString("raw").(*lua.LTable)
	if raw == nil {
		raw = v.L.NewTable()
		data.RawSetString("raw", raw)
	}
	return raw
}

func (v *vm) push(f frame) {
	v.frames = append(v.frames, f)
}

func (v *vm) pop() {
	v.frames = v.frames[:len(v.frames)-1]
}

// require resolves "a.b" or "a/b" against the calling file's folder, then the calling mod's
// root, then the built-in lualib. "__mod__/path" reads from another mod.
func (v *vm) require(L *lua.LState) int {
	name := strings.TrimSuffix(L.CheckString(1), ".lua")

	var cur frame
	if len(v.frames) > 0 {
		cur = v.frames[len(v.frames)-1]
	}

	mod, rel := cur.mod, name
	crossMod := strings.HasPrefix(name, "__")
	candidates := []string{}
	if crossMod {
		end := strings.Index(name[2:], "__/")
		if end < 0 {
			L.RaiseError("bad module name %q", name)
			return 0
		}
		mod, rel = name[2:2+end], name[2+end+3:]
		candidates = append(candidates, rel)
	} else {
		if !strings.Contains(rel, "/") {
			rel = strings.ReplaceAll(rel, ".", "/")
		}
		if cur.dir != "" && cur.dir != "." {
			candidates = append(candidates, path.Join(cur.dir, rel))
		}
		candidates = append(candidates, rel)
	}

	if loaded, ok := v.mods[mod]; ok {
		for _, c := range candidates {
			file := c + ".lua"
			key := mod + ":" + file
			if val, ok := v.loaded[key]; ok {
				L.Push(val)
				return 1
			}
			data, err := loaded.src.ReadFile(file)
			if err != nil {
				continue
			}
			L.Push(v.call(key, mod, file, data))
			return 1
		}
	}

	lib := strings.TrimPrefix(rel, "lualib/")
	if !crossMod || mod == "core" {
		if val, ok := v.loaded["lualib:"+lib]; ok {
			L.Push(val)
			return 1
		}
		if data, err := lualib.ReadFile("lualib/" + lib + ".lua"); err == nil {
			L.Push(v.call("lualib:"+lib, "core", "lualib/"+lib+".lua", data))
			return 1
		}
	}

	L.RaiseError("module %s not found", name)
	return 0
}

// call runs a required chunk inside the running script, raising Lua errors on failure.
func (v *vm) call(key, mod, file string, data []byte) lua.LValue {
	fn, err := v.L.Load(bytes.NewReader(data), chunkName(mod, file))
	if err != nil {
		v.L.RaiseError("%s", err.Error())
		return lua.LNil
	}

	// Marks the module as loading so require loops terminate.
	v.loaded[key] = lua.LTrue
	done := false
	defer func() {
		if !done {
			delete(v.loaded, key)
		}
	}()

	v.push(frame{mod: mod, dir: path.Dir(file)})
	defer v.pop()

	v.L.Push(fn)
	v.L.Call(0, 1)
	ret := v.L.Get(-1)
	v.L.Pop(1)
	if ret == lua.LNil {
		ret = lua.LTrue
	}
	v.loaded[key] = ret
	done = true
	return ret
}

func (v *vm) doLualib(name string) error {
	_, err := v.lualibModule(name)
	return err
}

func (v *vm) lualibModule(name string) (lua.LValue, error) {
	data, err := lualib.ReadFile("lualib/" + name + ".lua")
	if err != nil {
		return nil, err
	}
	fn, err := v.L.Load(bytes.NewReader(data), chunkName("core", "lualib/"+name+".lua"))
	if err != nil {
		return nil, err
	}
	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return nil, fmt.Errorf("lualib %s: %w", name, err)
	}
	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

func (v *vm) logFn(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	var mod string
	if len(v.frames) > 0 {
		mod = v.frames[len(v.frames)-1].mod
	}
	v.log.Debug("lua log", zap.String("mod", mod), zap.String("message", strings.Join(parts, "\t")))
	return 0
}

func chunkName(mod, file string) string {
	return "@__" + mod + "__/" + file
}
