// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the raidcore engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/raidcore/engine"
	"github.com/nathoo/raidcore/engine/save"
	"github.com/nathoo/raidcore/types"
)

// DefaultWidth is the wrap width for game output.
const DefaultWidth = 80

// Factory builds a fresh engine for the same encounter. /load restores
// saves onto a fresh engine.
type Factory func() (*engine.Engine, error)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	NewEngine Factory
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Width     int
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, factory Factory) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".raidcore", "saves")
	return &CLI{
		Engine:    eng,
		NewEngine: factory,
		In:        os.Stdin,
		Out:       os.Stdout,
		SaveDir:   saveDir,
		Width:     DefaultWidth,
	}
}

// Run starts the command loop. It shows the boss status, then loops:
// prompt → input → dispatch → output.
func (c *CLI) Run() {
	c.printLine(fmt.Sprintf("Encounter: boss %d. Type /help for commands.", c.Engine.BossID()))
	c.printLine("")
	c.printResult(c.Engine.Step("boss"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/clears":
		c.cmdClears()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Engine.Snapshot())
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}
	eng, err := LoadSave(c.SaveDir, name, c.NewEngine)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.Engine = eng
	c.printSystem(fmt.Sprintf("Game loaded from %s (%d commands).", name, len(eng.CommandLog)))

	// Show current status after loading.
	c.printResult(c.Engine.Step("boss"))
}

// LoadSave reads save name from dir and restores it onto a fresh engine.
func LoadSave(dir, name string, factory Factory) (*engine.Engine, error) {
	if factory == nil {
		return nil, fmt.Errorf("no engine factory configured")
	}
	data, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		return nil, err
	}
	sd, err := save.Load(data)
	if err != nil {
		return nil, err
	}
	eng, err := factory()
	if err != nil {
		return nil, err
	}
	if err := eng.Restore(sd); err != nil {
		return nil, err
	}
	return eng, nil
}

// HelpLines lists the meta and game commands.
func HelpLines() []string {
	return []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump engine state",
		"  /clears       Show the completion log",
		"  /trace        Toggle event trace output",
		"",
		"Game commands:",
		"  tick [secs] (wait, z)   Let time pass (default 1s)",
		"  hit [dmg] (attack)      Attack the boss",
		"  kill [key] (slay)       Slay a minion or monster <key>",
		"  give <item> [n] (take)  Receive items",
		"  use <item> (eat)        Consume one item",
		"  craft <id>              Craft something",
		"  touch <id> (press)      Interact with an object",
		"  talk <npc> (speak)      Talk to someone",
		"  accept <objective>      Start an objective",
		"  abandon <n>             Drop journal entry n",
		"  quests (q), boss, pool, inventory (i), look (l)",
		"  move <x> <z> (go)       Walk somewhere",
		"  again (g)               Repeat your last command",
	}
}

func (c *CLI) cmdHelp() {
	for _, line := range HelpLines() {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	e := c.Engine
	c.printSystem(fmt.Sprintf("Time: %s", e.Sched.Now()))
	c.printSystem(fmt.Sprintf("Commands: %d", len(e.CommandLog)))
	c.printSystem(fmt.Sprintf("RNG: seed %d position %d", e.RNG.Seed(), e.RNG.Position()))
	c.printSystem(fmt.Sprintf("Scheduled: %d", e.Sched.Pending()))
	c.printSystem(fmt.Sprintf("Policy: %s", e.Inventory.Policy()))
}

func (c *CLI) cmdClears() {
	p := c.Engine.Profile
	if p == nil {
		c.printSystem("No profile configured.")
		return
	}
	if p.Count() == 0 {
		c.printSystem("No clears yet.")
		return
	}
	for _, rec := range p.Records() {
		c.printSystem(fmt.Sprintf("%s  %s", rec.Timestamp, rec.Tag))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s", FormatEvent(e)))
		}
	}
}

// FormatEvent renders an event for trace output.
func FormatEvent(e types.Event) string {
	s := fmt.Sprintf("%s key=%d", engine.DisplayName(e.Code.String()), e.Key)
	if e.Payload != nil {
		s += fmt.Sprintf(" payload=%d", *e.Payload)
	}
	return s
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	if c.Width > 0 {
		text = wordwrap.String(text, c.Width)
	}
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
