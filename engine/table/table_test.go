package table

import "testing"

func testTable() *Table {
	t := New()
	t.Put(QuestFirstID, Row{"kind": KindQuest, "name": "Cull", "condition": 1, "key": 10, "target": 2})
	t.Put(QuestFirstID+1, Row{"kind": KindQuest, "name": "Forge", "condition": 3, "key": 7, "target": 1.0, "prereqs": []any{float64(QuestFirstID)}})
	t.Put(QuestFirstID+3, Row{"kind": KindQuest, "name": "Orphan"})
	t.Put(5001, Row{"kind": KindBoss, "health": int64(120), "idle_time": 1.5, "enraged": true})
	return t
}

func TestRowCount_StopsAtGap(t *testing.T) {
	tbl := testTable()
	if n := tbl.RowCount(QuestFirstID); n != 2 {
		t.Errorf("RowCount = %d, want 2", n)
	}
	if n := tbl.RowCount(1); n != 0 {
		t.Errorf("RowCount(1) = %d, want 0", n)
	}
}

func TestInt_NumericShapes(t *testing.T) {
	tbl := testTable()
	tests := []struct {
		id    int
		field string
		want  int
	}{
		{QuestFirstID, "condition", 1},
		{QuestFirstID + 1, "target", 1},
		{5001, "health", 120},
		{5001, "missing", -1},
		{5001, "kind", -1},
		{5001, "idle_time", -1}, // not integral
		{42, "health", -1},
	}
	for _, tt := range tests {
		if got := Int(tbl, tt.id, tt.field, -1); got != tt.want {
			t.Errorf("Int(%d, %q) = %d, want %d", tt.id, tt.field, got, tt.want)
		}
	}
}

func TestFloatStringBool(t *testing.T) {
	tbl := testTable()
	if got := Float(tbl, 5001, "idle_time", 0); got != 1.5 {
		t.Errorf("Float idle_time = %v, want 1.5", got)
	}
	if got := Float(tbl, 5001, "health", 0); got != 120 {
		t.Errorf("Float health = %v, want 120", got)
	}
	if got := String(tbl, QuestFirstID, "name", ""); got != "Cull" {
		t.Errorf("String name = %q", got)
	}
	if got := String(tbl, QuestFirstID, "target", "none"); got != "none" {
		t.Errorf("String on number = %q, want default", got)
	}
	if !Bool(tbl, 5001, "enraged", false) {
		t.Error("Bool enraged = false")
	}
}

func TestIntList(t *testing.T) {
	tbl := testTable()
	got := IntList(tbl, QuestFirstID+1, "prereqs")
	if len(got) != 1 || got[0] != QuestFirstID {
		t.Errorf("IntList prereqs = %v", got)
	}
	if got := IntList(tbl, QuestFirstID, "key"); len(got) != 1 || got[0] != 10 {
		t.Errorf("scalar promoted = %v", got)
	}
	if got := IntList(tbl, QuestFirstID, "prereqs"); got != nil {
		t.Errorf("missing list = %v, want nil", got)
	}
}

func TestIDsOfKind(t *testing.T) {
	tbl := testTable()
	quests := tbl.IDsOfKind(KindQuest)
	if len(quests) != 3 || quests[0] != QuestFirstID || quests[2] != QuestFirstID+3 {
		t.Errorf("quest ids = %v", quests)
	}
	if bosses := tbl.IDsOfKind(KindBoss); len(bosses) != 1 || bosses[0] != 5001 {
		t.Errorf("boss ids = %v", bosses)
	}
}
