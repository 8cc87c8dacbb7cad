// Package table is the keyed row source every engine reads authored data
// from. Rows are loose field maps; typed lookups fall back to a default when
// a field is missing or has the wrong shape.
package table

import "sort"

// Well-known id ranges.
const (
	// QuestFirstID is the id of the first objective row. Objective rows are
	// numbered consecutively from here.
	QuestFirstID = 10000001
)

// Row kinds recorded under the "kind" field by the loader.
const (
	KindQuest  = "quest"
	KindBoss   = "boss"
	KindAttack = "attack"
	KindBullet = "bullet"
	KindNPC    = "npc"
	KindRow    = "row"
)

// Source is the data-table query interface consumed by the engines.
type Source interface {
	// RowCount returns how many consecutive ids starting at firstID exist.
	RowCount(firstID int) int
	// Value returns the raw value of field in row id.
	Value(id int, field string) (any, bool)
}

// Row is one authored record.
type Row map[string]any

// Table is an in-memory Source.
type Table struct {
	rows map[int]Row
}

// New creates an empty table.
func New() *Table {
	return &Table{rows: map[int]Row{}}
}

// Put stores row under id, replacing any previous row.
func (t *Table) Put(id int, row Row) {
	if row == nil {
		row = Row{}
	}
	t.rows[id] = row
}

// Has reports whether a row with id exists.
func (t *Table) Has(id int) bool {
	_, ok := t.rows[id]
	return ok
}

// Row returns the row stored under id.
func (t *Table) Row(id int) (Row, bool) {
	r, ok := t.rows[id]
	return r, ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// IDs returns every row id in ascending order.
func (t *Table) IDs() []int {
	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IDsOfKind returns the ids of rows whose kind field equals kind, ascending.
func (t *Table) IDsOfKind(kind string) []int {
	var ids []int
	for _, id := range t.IDs() {
		if String(t, id, "kind", "") == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// RowCount returns how many consecutive ids starting at firstID exist.
func (t *Table) RowCount(firstID int) int {
	n := 0
	for t.Has(firstID + n) {
		n++
	}
	return n
}

// Value returns the raw value of field in row id.
func (t *Table) Value(id int, field string) (any, bool) {
	r, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	v, ok := r[field]
	return v, ok
}

// Int returns field as an int, or def if it is missing or not numeric.
func Int(src Source, id int, field string, def int) int {
	v, ok := src.Value(id, field)
	if !ok {
		return def
	}
	if n, ok := toInt(v); ok {
		return n
	}
	return def
}

// Float returns field as a float64, or def if it is missing or not numeric.
func Float(src Source, id int, field string, def float64) float64 {
	v, ok := src.Value(id, field)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// String returns field as a string, or def if it is missing or not a string.
func String(src Source, id int, field string, def string) string {
	v, ok := src.Value(id, field)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// Bool returns field as a bool, or def if it is missing or not a bool.
func Bool(src Source, id int, field string, def bool) bool {
	v, ok := src.Value(id, field)
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// IntList returns field as a list of ints. A single number is promoted to a
// one-element list; non-numeric entries are skipped.
func IntList(src Source, id int, field string) []int {
	v, ok := src.Value(id, field)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []int:
		out := make([]int, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]int, 0, len(list))
		for _, e := range list {
			if n, ok := toInt(e); ok {
				out = append(out, n)
			}
		}
		return out
	}
	if n, ok := toInt(v); ok {
		return []int{n}
	}
	return nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case float32:
		if n == float32(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
