package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/raidcore/engine/table"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates row definitions during file execution.
type collector struct {
	rows  []rawRow
	order int
}

func (c *collector) add(r rawRow) {
	c.order++
	r.order = c.order
	c.rows = append(c.rows, r)
}

// Load reads every .lua, .yaml and .yml file in dir, compiles the rows into
// a data table, validates references and returns the table. Lua files run
// in a sandboxed VM that is discarded after loading. Validation warnings are
// logged; errors are returned as a *ValidationError.
func Load(dir string, logger *slog.Logger) (*table.Table, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory %s: %w", dir, err)
	}

	var luaFiles, yamlFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".lua":
			luaFiles = append(luaFiles, e.Name())
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 && len(yamlFiles) == 0 {
		return nil, fmt.Errorf("no .lua or .yaml files found in %s", dir)
	}
	sort.Strings(luaFiles)
	sort.Strings(yamlFiles)

	coll := &collector{}

	if len(luaFiles) > 0 {
		if err := runLua(dir, luaFiles, coll); err != nil {
			return nil, err
		}
	}
	for _, f := range yamlFiles {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		if err := decodeYAML(f, data, coll); err != nil {
			return nil, err
		}
	}

	tbl, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling data tables: %w", err)
	}

	if err := validate(tbl, logger); err != nil {
		return nil, err
	}

	logger.Info("data tables loaded", "dir", dir, "rows", tbl.Len(),
		"lua_files", len(luaFiles), "yaml_files", len(yamlFiles))
	return tbl, nil
}

// LoadLua compiles and validates a single Lua chunk. Tests use it
// for inline data.
func LoadLua(name, src string, logger *slog.Logger) (*table.Table, error) {
	L := newSandbox()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll, name)
	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("executing %s: %w", name, err)
	}
	tbl, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling data tables: %w", err)
	}
	if err := validate(tbl, logger); err != nil {
		return nil, err
	}
	return tbl, nil
}

func runLua(dir string, files []string, coll *collector) error {
	L := newSandbox()
	defer L.Close()

	for _, f := range files {
		registerAPI(L, coll, f)
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
	}
	return nil
}

func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	return L
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Data files must produce the same table on every load.
	if mathTbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		mathTbl.RawSetString("random", lua.LNil)
		mathTbl.RawSetString("randomseed", lua.LNil)
	}
}
