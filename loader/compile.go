// Package loader builds the engines' data table from authored Lua and YAML
// files. The Lua VM is discarded after loading; nothing scripted runs at
// play time.
package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/raidcore/engine/table"
	lua "github.com/yuin/gopher-lua"
)

// rawRow holds one row definition before compilation.
type rawRow struct {
	id     int
	kind   string
	file   string
	order  int
	fields map[string]any
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Sequential integer keys starting at 1 make a list.
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		return tableToAnyMap(val)
	default:
		return nil
	}
}

// tableToAnyMap converts a Lua table to a map[string]any.
func tableToAnyMap(tbl *lua.LTable) map[string]any {
	if tbl == nil {
		return nil
	}
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}

// compile converts the collected rows into a table. Duplicate ids are an
// error; rows are applied in collection order.
func compile(coll *collector) (*table.Table, error) {
	rows := make([]rawRow, len(coll.rows))
	copy(rows, coll.rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].order < rows[j].order })

	tbl := table.New()
	seen := map[int]string{}
	for _, raw := range rows {
		if prev, ok := seen[raw.id]; ok {
			return nil, fmt.Errorf("row %d defined twice (%s and %s)", raw.id, prev, raw.file)
		}
		seen[raw.id] = raw.file

		row, err := compileRow(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling row %d in %s: %w", raw.id, raw.file, err)
		}
		tbl.Put(raw.id, row)
	}
	return tbl, nil
}

func compileRow(raw rawRow) (table.Row, error) {
	row := table.Row{}
	for k, v := range raw.fields {
		if k == "id" {
			continue
		}
		row[k] = v
	}
	if raw.kind != "" {
		row["kind"] = raw.kind
	}
	if _, ok := row["kind"]; !ok {
		row["kind"] = table.KindRow
	}

	if c, ok := row["condition"].(string); ok {
		code, err := conditionByName(c)
		if err != nil {
			return nil, err
		}
		row["condition"] = code
	}
	return row, nil
}

// conditionByName accepts the constructor-style name (MonsterKill) or the
// snake-case display name (monster_kill).
func conditionByName(name string) (int, error) {
	if code, ok := conditionConstants[name]; ok {
		return int(code), nil
	}
	for _, code := range conditionConstants {
		if strings.EqualFold(code.String(), name) {
			return int(code), nil
		}
	}
	return 0, fmt.Errorf("unknown condition %q", name)
}
