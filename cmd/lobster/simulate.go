package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/talgya/lobster-tycoon/internal/autopilot"
	"github.com/talgya/lobster-tycoon/internal/engine"
	"github.com/talgya/lobster-tycoon/internal/persistence"
)

func newSimulateCmd(gf *globals) *cobra.Command {
	var (
		days    int
		games   int
		asJSON  bool
		archive bool
		maxBuy  float64
		reserve float64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play games headlessly with the autopilot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var db *persistence.DB
			if archive {
				var err error
				if db, err = openDB(*gf); err != nil {
					return err
				}
				if db == nil {
					return fmt.Errorf("--archive needs a database (--db)")
				}
				defer db.Close()
			}
			opts, err := gameOptions(*gf, nil)
			if err != nil {
				return err
			}
			st := autopilot.Default()
			if maxBuy > 0 {
				st.MaxBuyPrice = maxBuy
			}
			if reserve >= 0 {
				st.Reserve = reserve
			}

			var results []autopilot.Result
			for i := range games {
				o := opts
				if o.Seed != 0 {
					o.Seed += int64(i)
				}
				g, err := engine.New(ctx, o)
				if err != nil {
					return err
				}
				r, err := st.Run(ctx, g, days)
				if err != nil {
					return err
				}
				results = append(results, r)
				snap := g.Snapshot()
				slog.Debug("simulation done", "game", i+1, "seed", snap.Seed, "outcome", r.Outcome)
				if db != nil {
					if err := db.ArchiveEvents(ctx, snap.Seed, snap.Events); err != nil {
						return err
					}
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "stop after this many days (0 plays to the end)")
	cmd.Flags().IntVar(&games, "games", 1, "number of games to play")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&archive, "archive", false, "store each game's event log in the database")
	cmd.Flags().Float64Var(&maxBuy, "max-buy", 0, "highest price per lb the autopilot pays")
	cmd.Flags().Float64Var(&reserve, "reserve", -1, "cash the autopilot keeps back")
	return cmd
}

func printResults(w io.Writer, results []autopilot.Result) {
	header(w, "Autopilot")
	var total float64
	for i, r := range results {
		fmt.Fprintf(w, "%3d) seed %-20d %-12s %3d days  cash %-10s net worth %-10s bought %s sold %s\n",
			i+1, r.Seed, r.Outcome, r.Days, money(r.Cash), money(r.NetWorth), lbs(r.Bought), lbs(r.Sold))
		total += r.NetWorth
	}
	if len(results) > 1 {
		fmt.Fprintf(w, "Average net worth %s\n", money(total/float64(len(results))))
	}
}

func newLegacyCmd(gf *globals) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Show prestige and achievements carried between games",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(*gf)
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("legacy needs a database (--db)")
			}
			defer db.Close()

			ctx := cmd.Context()
			if reset {
				if err := db.SaveLegacy(ctx, engine.Legacy{}); err != nil {
					return err
				}
			}
			l, err := db.LoadLegacy(ctx)
			if err != nil {
				return err
			}
			printLegacy(cmd.OutOrStdout(), l)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset-counters", false, "zero prestige and totals (achievements stay)")
	return cmd
}

func newSavesCmd(gf *globals) *cobra.Command {
	var del string
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List or delete saved games",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(*gf)
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("saves need a database (--db)")
			}
			defer db.Close()

			ctx := cmd.Context()
			if del != "" {
				if err := db.DeleteSnapshot(ctx, del); err != nil {
					return err
				}
			}
			list, err := db.Snapshots(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(w, faint.Sprint("No saved games."))
				return nil
			}
			header(w, "Saved games")
			for _, s := range list {
				outcome := s.Outcome
				if outcome == "" {
					outcome = "in progress"
				}
				fmt.Fprintf(w, "%-12s day %-4d %-10s %-12s %s\n", s.Slot, s.Day, money(s.Cash), outcome, faint.Sprint(s.SavedAt))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&del, "delete", "", "delete this slot first")
	return cmd
}

func newHistoryCmd(gf *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <seed>",
		Short: "Print the archived event log of a finished game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad seed %q", args[0])
			}
			db, err := openDB(*gf)
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("history needs a database (--db)")
			}
			defer db.Close()

			events, err := db.RecentEvents(cmd.Context(), seed, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(w, faint.Sprintf("Nothing archived for seed %d.", seed))
				return nil
			}
			for _, e := range events {
				printEvent(w, e)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "most recent events to show")
	return cmd
}
