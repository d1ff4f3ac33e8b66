// Command lobster runs the Lobster Tycoon trading simulation: an interactive
// dockside session, an HTTP-hosted game, headless autopilot runs and legacy
// bookkeeping.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/engine"
	"github.com/talgya/lobster-tycoon/internal/persistence"
)

// globals are the flags shared by every subcommand.
type globals struct {
	seed     int64
	balance  string
	dbPath   string
	strict   bool
	logLevel string
	jsonLogs bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var gf globals

	root := &cobra.Command{
		Use:          "lobster",
		Short:        "Lobster Tycoon: buy off the boats, sell to the town",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(gf)
		},
	}

	pf := root.PersistentFlags()
	pf.Int64Var(&gf.seed, "seed", 0, "random seed (0 picks one)")
	pf.StringVar(&gf.balance, "balance", "", "YAML file overriding the game balance")
	pf.StringVar(&gf.dbPath, "db", "data/lobster.db", "SQLite file for saves and the legacy (empty for none)")
	pf.BoolVar(&gf.strict, "strict", false, "panic on ledger invariant violations")
	pf.StringVar(&gf.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.BoolVar(&gf.jsonLogs, "json-logs", false, "log JSON (default when stderr is not a terminal)")

	root.AddCommand(
		newPlayCmd(&gf),
		newSimulateCmd(&gf),
		newServeCmd(&gf),
		newLegacyCmd(&gf),
		newSavesCmd(&gf),
		newHistoryCmd(&gf),
	)
	return root
}

func setupLogging(gf globals) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(gf.logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if gf.jsonLogs || !isatty.IsTerminal(os.Stderr.Fd()) {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func loadBalance(gf globals) (*config.Balance, error) {
	if gf.balance == "" {
		return nil, nil
	}
	bal, err := config.LoadBalance(gf.balance)
	if err != nil {
		return nil, err
	}
	slog.Info("balance loaded", "path", gf.balance)
	return &bal, nil
}

// openDB opens the save database, or returns nil when saving is off.
func openDB(gf globals) (*persistence.DB, error) {
	if gf.dbPath == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(gf.dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := persistence.Open(gf.dbPath)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", gf.dbPath)
	return db, nil
}

// gameOptions assembles engine options from the flags. A nil db keeps the
// legacy in memory.
func gameOptions(gf globals, db *persistence.DB) (engine.Options, error) {
	bal, err := loadBalance(gf)
	if err != nil {
		return engine.Options{}, err
	}
	opts := engine.Options{
		Seed:    gf.seed,
		Balance: bal,
		Strict:  gf.strict,
		Logger:  slog.Default(),
	}
	if db != nil {
		opts.Store = db
	}
	return opts, nil
}
