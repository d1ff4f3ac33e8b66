package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/lobster-tycoon/internal/api"
	"github.com/talgya/lobster-tycoon/internal/engine"
	"github.com/talgya/lobster-tycoon/internal/persistence"
)

const serverSlot = "server"

func newServeCmd(gf *globals) *cobra.Command {
	var (
		addr     string
		slot     string
		speed    float64
		adminKey string
		relayKey string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host one game over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(*gf)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}
			opts, err := gameOptions(*gf, db)
			if err != nil {
				return err
			}
			hub := api.NewHub()
			opts.OnEvent = hub.Publish

			g, err := loadOrStart(ctx, db, opts, slot)
			if err != nil {
				return err
			}

			clock := engine.NewClock(g)
			clock.Speed = speed
			go clock.Run(ctx)
			defer clock.Stop()

			srv := &api.Server{
				Game:     g,
				Clock:    clock,
				DB:       db,
				Hub:      hub,
				AdminKey: adminKey,
				RelayKey: relayKey,
			}
			err = srv.ListenAndServe(ctx, addr)
			saveOnExit(db, g)
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&slot, "load", "", "resume the game saved in this slot")
	cmd.Flags().Float64Var(&speed, "speed", 1, "boat timer speed multiplier")
	cmd.Flags().StringVar(&adminKey, "admin-key", os.Getenv("LOBSTER_ADMIN_KEY"), "bearer token for commands (empty disables them)")
	cmd.Flags().StringVar(&relayKey, "relay-key", os.Getenv("LOBSTER_RELAY_KEY"), "bearer token for the event stream")
	return cmd
}

func loadOrStart(ctx context.Context, db *persistence.DB, opts engine.Options, slot string) (*engine.Game, error) {
	if slot == "" {
		return engine.New(ctx, opts)
	}
	if db == nil {
		return nil, errors.New("--load needs a database")
	}
	snap, err := db.LoadSnapshot(ctx, slot)
	if err != nil {
		return nil, err
	}
	return engine.Restore(ctx, snap, opts)
}

// saveOnExit archives a finished game's events or parks a running one in
// the server slot.
func saveOnExit(db *persistence.DB, g *engine.Game) {
	if db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap := g.Snapshot()
	if snap.Over() {
		if err := db.ArchiveEvents(ctx, snap.Seed, snap.Events); err != nil {
			slog.Warn("archive events failed", "error", err)
		}
		return
	}
	if err := db.SaveSnapshot(ctx, serverSlot, snap); err != nil {
		slog.Warn("save on exit failed", "error", err)
		return
	}
	slog.Info("game saved", "slot", serverSlot, "day", snap.Day)
}
