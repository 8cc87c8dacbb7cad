package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/raidcore/engine"
	"github.com/nathoo/raidcore/types"
)

// objectiveSummary counts completed objectives against the journal size.
func objectiveSummary(eng *engine.Engine) (done, total int) {
	for _, o := range eng.Quests.Objectives() {
		total++
		if o.State == types.Complete {
			done++
		}
	}
	return done, total
}

// renderStatusBar produces a full-width inverted status line showing the
// boss state and health on the left, the player's health and journal on
// the right. The bar turns red once the player has fallen.
func (m Model) renderStatusBar() string {
	eng := m.engine
	b := eng.Boss

	bossState := "Gone"
	if !b.Despawned() {
		if cur := b.Current(); cur != nil {
			bossState = cur.Name()
		}
	}
	left := fmt.Sprintf(" Boss %d: %s %d/%d", b.BossID(), bossState, b.HP(), b.MaxHP())

	done, total := objectiveSummary(eng)
	right := fmt.Sprintf("HP %d/%d | Obj %d/%d | %s ",
		eng.Player.HP(), eng.Player.MaxHP(), done, total, eng.Sched.Now())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	style := styleStatusBar
	if eng.GameOver() {
		style = styleStatusDanger
	}
	return style.Width(m.width).Render(bar)
}
