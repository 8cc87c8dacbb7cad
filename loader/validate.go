package loader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate checks the compiled table for referential integrity. Warnings are
// logged and do not fail the load.
func validate(tbl *table.Table, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ve := &ValidationError{}

	validateQuests(tbl, ve)
	for _, id := range tbl.IDsOfKind(table.KindBoss) {
		validateBoss(tbl, id, ve)
	}
	for _, id := range tbl.IDsOfKind(table.KindAttack) {
		if d := table.Float(tbl, id, "damage", 0); d < 0 {
			ve.errorf("attack %d: damage must not be negative (got %v)", id, d)
		}
		if d := table.Float(tbl, id, "duration", 0); d < 0 {
			ve.errorf("attack %d: duration must not be negative (got %v)", id, d)
		}
	}
	for _, id := range tbl.IDsOfKind(table.KindBullet) {
		if r := table.Float(tbl, id, "radius", 0); r <= 0 {
			ve.errorf("bullet %d: radius must be positive (got %v)", id, r)
		}
		if d := table.Float(tbl, id, "damage", 0); d < 0 {
			ve.errorf("bullet %d: damage must not be negative (got %v)", id, d)
		}
	}
	for _, id := range tbl.IDsOfKind(table.KindNPC) {
		if table.String(tbl, id, "name", "") == "" {
			ve.errorf("npc %d: name is required", id)
		}
	}

	for _, w := range ve.Warnings {
		logger.Warn("data table", "warning", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateQuests(tbl *table.Table, ve *ValidationError) {
	quests := tbl.IDsOfKind(table.KindQuest)
	reachable := tbl.RowCount(table.QuestFirstID)

	for _, id := range quests {
		if id < table.QuestFirstID || id >= table.QuestFirstID+reachable {
			ve.warnf("quest %d is outside the consecutive range starting at %d and will not be loaded",
				id, table.QuestFirstID)
		}

		code := types.ConditionCode(table.Int(tbl, id, "condition", -1))
		if !code.IsGameplay() {
			ve.errorf("quest %d: condition must be one of 1..8 (got %d)", id, int(code))
		}
		if _, ok := tbl.Value(id, "key"); !ok {
			ve.errorf("quest %d: key is required", id)
		}
		if target := table.Int(tbl, id, "target", 0); target <= 0 {
			ve.errorf("quest %d: target must be positive (got %d)", id, target)
		}

		for _, pre := range table.IntList(tbl, id, "prereqs") {
			switch {
			case pre == id:
				ve.errorf("quest %d lists itself as a prerequisite", id)
			case !tbl.Has(pre):
				ve.errorf("quest %d: prerequisite %d is not defined", id, pre)
			case table.String(tbl, pre, "kind", "") != table.KindQuest:
				ve.errorf("quest %d: prerequisite %d is not a quest", id, pre)
			}
		}
	}

	// Rows inside the quest range must all be quests.
	for i := 0; i < reachable; i++ {
		id := table.QuestFirstID + i
		if kind := table.String(tbl, id, "kind", ""); kind != table.KindQuest {
			ve.errorf("row %d is in the quest range but has kind %q", id, kind)
		}
	}
}

func validateBoss(tbl *table.Table, id int, ve *ValidationError) {
	if hp := table.Int(tbl, id, "health", 0); hp <= 0 {
		ve.errorf("boss %d: health must be positive (got %d)", id, hp)
	}
	slots := table.Int(tbl, id, "slots", 10)
	if slots <= 0 {
		ve.errorf("boss %d: slots must be positive (got %d)", id, slots)
	}
	if n := table.Int(tbl, id, "pattern_count", 1); n <= 0 {
		ve.errorf("boss %d: pattern_count must be positive (got %d)", id, n)
	} else if n > slots {
		ve.warnf("boss %d: pattern_count %d exceeds slots %d and will be clamped", id, n, slots)
	}
	if t := table.Float(tbl, id, "idle_time", 0); t < 0 {
		ve.errorf("boss %d: idle_time must not be negative (got %v)", id, t)
	}
	if b := table.Int(tbl, id, "attack_base", -1); b >= 0 {
		for slot := 0; slot < slots; slot++ {
			if tbl.Has(b+slot) && table.String(tbl, b+slot, "kind", "") != table.KindAttack {
				ve.errorf("boss %d: row %d is in its attack range but is not an attack", id, b+slot)
			}
		}
	}
}
