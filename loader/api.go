package loader

import (
	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
	lua "github.com/yuin/gopher-lua"
)

// Lua constructor name for each row kind.
var constructors = map[string]string{
	"Quest":  table.KindQuest,
	"Boss":   table.KindBoss,
	"Attack": table.KindAttack,
	"Bullet": table.KindBullet,
	"NPC":    table.KindNPC,
	"Row":    table.KindRow,
}

// registerAPI registers the row constructors and the Condition constants as
// globals. file is recorded on every row for error messages.
func registerAPI(L *lua.LState, coll *collector, file string) {
	for name, kind := range constructors {
		L.SetGlobal(name, rowConstructor(L, coll, kind, file))
	}
	registerConditions(L)
}

// rowConstructor builds a curried constructor: Boss(5001) { health = 300 }.
func rowConstructor(L *lua.LState, coll *collector, kind, file string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.add(rawRow{id: id, kind: kind, file: file, fields: tableToAnyMap(tbl)})
			return 0
		}))
		return 1
	})
}

// registerConditions exposes Condition.MonsterKill and friends.
func registerConditions(L *lua.LState) {
	tbl := L.NewTable()
	for name, code := range conditionConstants {
		tbl.RawSetString(name, lua.LNumber(code))
	}
	L.SetGlobal("Condition", tbl)
}

// conditionConstants names every gameplay condition for data files. YAML
// files may use either the name or the number.
var conditionConstants = map[string]types.ConditionCode{
	"BossEncounter":  types.ConditionBossEncounter,
	"BossKill":       types.ConditionBossKill,
	"ItemConsume":    types.ConditionItemConsume,
	"MonsterKill":    types.ConditionMonsterKill,
	"Crafting":       types.ConditionCrafting,
	"ObjectInteract": types.ConditionObjectTouch,
	"ItemGift":       types.ConditionItemGift,
	"Dialogue":       types.ConditionDialogue,
}
