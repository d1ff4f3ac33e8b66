package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/engine"
	"github.com/talgya/lobster-tycoon/internal/persistence"
)

const autosaveSlot = "autosave"

var errQuit = errors.New("quit")

func newPlayCmd(gf *globals) *cobra.Command {
	var (
		slot     string
		realtime bool
		speed    float64
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run an interactive trading session",
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

			r := &repl{in: os.Stdin, out: cmd.OutOrStdout(), db: db}
			g, err := loadOrStart(ctx, db, opts, slot)
			if err != nil {
				return err
			}
			r.g = g

			if realtime {
				clock := engine.NewClock(g)
				clock.Speed = speed
				clock.OnExpire = func([]engine.Boat) { r.flush() }
				go clock.Run(ctx)
				defer clock.Stop()
			}
			return r.loop(ctx)
		},
	}
	cmd.Flags().StringVar(&slot, "load", "", "resume the game saved in this slot")
	cmd.Flags().BoolVar(&realtime, "realtime", true, "run boat timers on the wall clock")
	cmd.Flags().Float64Var(&speed, "speed", 1, "boat timer speed multiplier")
	return cmd
}

// repl is an interactive session over one game.
type repl struct {
	in  io.Reader
	out io.Writer
	g   *engine.Game
	db  *persistence.DB
	reg *registry

	mu     sync.Mutex
	cursor int
}

// flush prints events logged since the last flush.
func (r *repl) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	events, next := r.g.Events(r.cursor)
	r.cursor = next
	for _, e := range events {
		printEvent(r.out, e)
	}
}

func (r *repl) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

// show runs a printer under the output lock.
func (r *repl) show(print func(io.Writer, *engine.Game)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	print(r.out, r.g)
}

func (r *repl) loop(ctx context.Context) error {
	if r.reg == nil {
		r.reg = newRegistry(commands())
	}
	r.flush()
	r.show(printStatus)
	r.printf("%s\n", faint.Sprint("Type 'help' for commands."))

	sc := bufio.NewScanner(r.in)
	for {
		r.printf("%s ", accent.Sprint(">"))
		if !sc.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}
		err := r.exec(sc.Text())
		r.flush()
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			r.printf("%s\n", danger.Sprint(err))
		}
		if over, _ := r.g.Over(); over {
			r.finish(ctx)
			return nil
		}
	}
	r.autosave(ctx)
	return sc.Err()
}

// exec runs one input line.
func (r *repl) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, fuzzy, ok := r.reg.resolve(fields[0])
	if !ok {
		return fmt.Errorf("unknown command %q", fields[0])
	}
	if fuzzy {
		r.printf("%s\n", faint.Sprintf("(taking %q as %s)", fields[0], cmd.name))
	}
	return cmd.run(r, fields[1:])
}

func (r *repl) finish(ctx context.Context) {
	s := r.g.Snapshot()
	r.mu.Lock()
	printSummary(r.out, s.Summary)
	r.mu.Unlock()
	if r.db != nil {
		if err := r.db.ArchiveEvents(ctx, s.Seed, s.Events); err != nil {
			r.printf("%s\n", warn.Sprintf("archive events: %v", err))
		}
		_ = r.db.DeleteSnapshot(ctx, autosaveSlot)
	}
}

func (r *repl) autosave(ctx context.Context) {
	if r.db == nil {
		return
	}
	if err := r.db.SaveSnapshot(ctx, autosaveSlot, r.g.Snapshot()); err != nil {
		r.printf("%s\n", warn.Sprintf("autosave failed: %v", err))
		return
	}
	r.printf("%s\n", faint.Sprintf("Saved to slot %q. Resume with: lobster play --load %s", autosaveSlot, autosaveSlot))
}

// ── Arguments ─────────────────────────────────────────────────────────

// pick resolves a 1-based list index.
func pick(args []string, n int, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("which %s? give its number", what)
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("no %s %q", what, args[0])
	}
	return i - 1, nil
}

// amountArg parses an optional pound amount; missing means "all".
func amountArg(args []string, pos int) (int, error) {
	if len(args) <= pos || args[pos] == "all" {
		return 0, nil
	}
	n, err := strconv.Atoi(args[pos])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bad amount %q", args[pos])
	}
	return n, nil
}

func moneyArg(args []string, pos int) (float64, error) {
	if len(args) <= pos || args[pos] == "all" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(args[pos], "$"), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("bad amount %q", args[pos])
	}
	return v, nil
}

// ── Commands ──────────────────────────────────────────────────────────

func commands() []command {
	return []command{
		{name: "help", aliases: []string{"h", "?"}, help: "list commands", run: cmdHelp},
		{name: "status", aliases: []string{"s", "st"}, help: "cash, stock and standing", run: func(r *repl, _ []string) error {
			r.show(printStatus)
			return nil
		}},
		{name: "boats", aliases: []string{"b", "dock"}, help: "boats at the dock", run: func(r *repl, _ []string) error {
			r.show(printBoats)
			return nil
		}},
		{name: "buyers", aliases: []string{"market", "m"}, help: "today's buyers", run: func(r *repl, _ []string) error {
			r.show(printBuyers)
			return nil
		}},
		{name: "buy", usage: "buy <boat#> [lbs]", help: "buy from a boat", run: cmdBuy},
		{name: "sell", usage: "sell <buyer#> [lbs]", help: "sell to a buyer", run: cmdSell},
		{name: "pass", usage: "pass <boat#>", help: "wave a boat off", run: cmdPass},
		{name: "shop", aliases: []string{"equipment"}, help: "equipment for sale", run: func(r *repl, _ []string) error {
			r.show(printShop)
			return nil
		}},
		{name: "upgrade", aliases: []string{"equip"}, usage: "upgrade <item>", help: "buy equipment", run: cmdUpgrade},
		{name: "loan", usage: "loan <amount>", help: "borrow from the bank", run: cmdLoan},
		{name: "repay", usage: "repay [amount]", help: "pay down the loan", run: cmdRepay},
		{name: "towns", aliases: []string{"map"}, help: "towns and travel costs", run: func(r *repl, _ []string) error {
			r.show(printTowns)
			return nil
		}},
		{name: "travel", aliases: []string{"go"}, usage: "travel <town>", help: "drive to another town", run: cmdTravel},
		{name: "contracts", aliases: []string{"c"}, help: "contract offers and deliveries", run: func(r *repl, _ []string) error {
			r.show(printContracts)
			return nil
		}},
		{name: "accept", usage: "accept <offer#>", help: "sign a contract", run: cmdAccept},
		{name: "deliver", usage: "deliver <contract#> [lbs]", help: "ship toward a contract", run: cmdDeliver},
		{name: "forecast", aliases: []string{"weather"}, help: "today's and tomorrow's weather", run: cmdForecast},
		{name: "rivals", aliases: []string{"standings"}, help: "how you rank", run: func(r *repl, _ []string) error {
			r.show(printStandings)
			return nil
		}},
		{name: "story", usage: "story [choice#]", help: "answer a captain waiting on you", run: cmdStory},
		{name: "next", aliases: []string{"n", "sleep", "end"}, help: "close up and start the next day", run: cmdNext},
		{name: "legacy", help: "prestige and achievements", run: func(r *repl, _ []string) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			printLegacy(r.out, r.g.Legacy())
			return nil
		}},
		{name: "retire", usage: "retire <option>", help: "cash out for prestige", run: cmdRetire},
		{name: "save", usage: "save [slot]", help: "save the game", run: cmdSave},
		{name: "quit", aliases: []string{"q", "exit"}, help: "save and leave", run: func(*repl, []string) error {
			return errQuit
		}},
	}
}

func cmdHelp(r *repl, _ []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	header(r.out, "Commands")
	for _, c := range r.reg.cmds {
		usage := c.usage
		if usage == "" {
			usage = c.name
		}
		fmt.Fprintf(r.out, "%-26s %s\n", usage, faint.Sprint(c.help))
	}
	return nil
}

func cmdBuy(r *repl, args []string) error {
	boats := r.g.Boats()
	i, err := pick(args, len(boats), "boat")
	if err != nil {
		return err
	}
	n, err := amountArg(args, 1)
	if err != nil {
		return err
	}
	_, err = r.g.BuyFromBoat(boats[i].ID, n)
	return err
}

func cmdSell(r *repl, args []string) error {
	buyers := r.g.Buyers()
	i, err := pick(args, len(buyers), "buyer")
	if err != nil {
		return err
	}
	n, err := amountArg(args, 1)
	if err != nil {
		return err
	}
	_, err = r.g.SellToBuyer(buyers[i].ID, n)
	return err
}

func cmdPass(r *repl, args []string) error {
	boats := r.g.Boats()
	i, err := pick(args, len(boats), "boat")
	if err != nil {
		return err
	}
	_, err = r.g.PassBoat(boats[i].ID)
	return err
}

func cmdUpgrade(r *repl, args []string) error {
	if len(args) == 0 {
		return errors.New("which item? see 'shop'")
	}
	want := strings.ToLower(strings.Join(args, ""))
	for _, e := range config.EquipmentList {
		if strings.ToLower(string(e.ID)) == want || strings.ToLower(strings.ReplaceAll(e.Name, " ", "")) == want {
			_, err := r.g.BuyEquipment(e.ID)
			return err
		}
	}
	return fmt.Errorf("no item %q", strings.Join(args, " "))
}

func cmdLoan(r *repl, args []string) error {
	v, err := moneyArg(args, 0)
	if err != nil {
		return err
	}
	if v == 0 {
		r.printf("The bank will lend up to %s.\n", money(r.g.MaxLoan()))
		return nil
	}
	r.g.TakeLoan(v)
	return nil
}

func cmdRepay(r *repl, args []string) error {
	v, err := moneyArg(args, 0)
	if err != nil {
		return err
	}
	r.g.PayLoan(v)
	return nil
}

func cmdTravel(r *repl, args []string) error {
	if len(args) == 0 {
		return errors.New("where to? see 'towns'")
	}
	want := strings.ToLower(strings.Join(args, " "))
	for _, t := range config.Towns {
		if strings.ToLower(string(t.ID)) == want || strings.ToLower(t.Name) == want {
			_, err := r.g.TravelTo(t.ID)
			return err
		}
	}
	return fmt.Errorf("no town %q", want)
}

func cmdAccept(r *repl, args []string) error {
	offers, _ := r.g.Contracts()
	i, err := pick(args, len(offers), "offer")
	if err != nil {
		return err
	}
	_, err = r.g.AcceptContract(offers[i].ID)
	return err
}

func cmdDeliver(r *repl, args []string) error {
	_, active := r.g.Contracts()
	i, err := pick(args, len(active), "contract")
	if err != nil {
		return err
	}
	n, err := amountArg(args, 1)
	if err != nil {
		return err
	}
	_, err = r.g.DeliverToContract(active[i].ID, n)
	return err
}

func cmdForecast(r *repl, _ []string) error {
	today, tomorrow := r.g.Forecast()
	r.printf("Today: %s. Tomorrow: %s.\n", today, tomorrow)
	return nil
}

func cmdStory(r *repl, args []string) error {
	story := r.g.PendingStory()
	if story == nil {
		r.printf("%s\n", faint.Sprint("No captain is waiting on you."))
		return nil
	}
	if len(args) == 0 {
		r.mu.Lock()
		defer r.mu.Unlock()
		printStory(r.out, story)
		return nil
	}
	i, err := pick(args, len(story.Choices), "choice")
	if err != nil {
		return err
	}
	_, err = r.g.ResolveStory(i)
	return err
}

func cmdNext(r *repl, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	report, ok := r.g.AdvanceDay(ctx)
	if !ok {
		return nil
	}
	r.flush()
	line := fmt.Sprintf("Day %d closed: profit %s, running costs %s", report.Day, money(report.Profit), money(report.OperatingCost))
	if lost := report.Mortality + report.Rot; lost > 0 {
		line += fmt.Sprintf(", %s lost", lbs(lost))
	}
	if report.Weekly && report.Interest > 0 {
		line += fmt.Sprintf(", interest %s", money(report.Interest))
	}
	r.printf("%s\n", neutral.Sprint(line))
	if report.Outcome == engine.OutcomeNone {
		r.show(printStatus)
	}
	return nil
}

func cmdRetire(r *repl, args []string) error {
	if len(args) == 0 {
		r.mu.Lock()
		defer r.mu.Unlock()
		header(r.out, "Retirement")
		for _, o := range config.RetirementOptions {
			fmt.Fprintf(r.out, "%-12s %-24s needs %s, +%d prestige\n", o.ID, o.Name, money(o.Requirement), o.Prestige)
		}
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := r.g.Retire(ctx, strings.ToLower(args[0]))
	return err
}

func cmdSave(r *repl, args []string) error {
	if r.db == nil {
		return errors.New("saving is off (no --db)")
	}
	slot := autosaveSlot
	if len(args) > 0 {
		slot = args[0]
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.db.SaveSnapshot(ctx, slot, r.g.Snapshot()); err != nil {
		return err
	}
	r.printf("Saved to %q.\n", slot)
	return nil
}
