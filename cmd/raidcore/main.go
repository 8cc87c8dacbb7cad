// Raidcore runs a data-driven boss encounter with quest tracking from the
// terminal.
// Usage: raidcore [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--boss <id>] [data_directory]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/nathoo/raidcore/cli"
	"github.com/nathoo/raidcore/config"
	"github.com/nathoo/raidcore/engine"
	"github.com/nathoo/raidcore/inventory"
	"github.com/nathoo/raidcore/loader"
	"github.com/nathoo/raidcore/logger"
	"github.com/nathoo/raidcore/profile"
	"github.com/nathoo/raidcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: raidcore [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--boss <id>] [data_directory]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	plain := false
	trace := false
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("raidcore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			scriptFile = flagValue(args, &i)
		case "--seed":
			n, err := strconv.ParseInt(flagValue(args, &i), 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			cfg.Seed = n
		case "--boss":
			n, err := strconv.Atoi(flagValue(args, &i))
			if err != nil {
				fmt.Fprintf(os.Stderr, "--boss: %v\n", err)
				os.Exit(1)
			}
			cfg.Boss = n
		case "-h", "--help":
			fmt.Println(usage)
			return
		default:
			cfg.DataDir = args[i]
		}
	}

	log := logger.Setup(cfg, os.Stderr)

	tbl, err := loader.Load(cfg.DataDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		os.Exit(1)
	}

	policy, err := inventory.ParsePolicy(cfg.CountPolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	prof, closeStore, err := openProfile(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening profile: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	opts := engine.Options{
		Table:    tbl,
		BossID:   cfg.Boss,
		Seed:     cfg.Seed,
		Capacity: cfg.Capacity,
		Policy:   policy,
		Profile:  prof,
		Logger:   log,
	}
	factory := func() (*engine.Engine, error) { return engine.New(opts) }

	eng, err := factory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting encounter: %v\n", err)
		os.Exit(1)
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng, factory)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng, factory)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(eng, factory); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openProfile opens the configured clear-log store for the player. A player
// id that is not configured is generated fresh for this run.
func openProfile(ctx context.Context, cfg *config.Config, log *slog.Logger) (*profile.Profile, func(), error) {
	id := uuid.New()
	if cfg.PlayerID != "" {
		parsed, err := uuid.Parse(cfg.PlayerID)
		if err != nil {
			return nil, nil, fmt.Errorf("RAIDCORE_PLAYER_ID: %w", err)
		}
		id = parsed
	}

	store, err := profile.OpenStore(ctx, cfg.StoreKind, cfg.RedisURL, cfg.SQLitePath, log)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warn("closing profile store", "error", err)
		}
	}

	p, err := profile.Open(ctx, store, id, logger.WithPlayer(log, id.String()))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return p, closeStore, nil
}

// flagValue returns the argument after args[*i] and advances *i.
func flagValue(args []string, i *int) string {
	if *i+1 >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a value\n", args[*i])
		os.Exit(1)
	}
	*i++
	return args[*i]
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
