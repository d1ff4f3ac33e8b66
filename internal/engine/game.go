// Package engine runs the daily lobster-trading simulation: it owns the game
// state and exposes the commands and queries a host (REPL, autopilot, UI)
// drives it with. All access serializes on one mutex, so a Game is a single
// actor that timer ticks and player commands can share safely.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/entropy"
	"github.com/talgya/lobster-tycoon/internal/social"
	"github.com/talgya/lobster-tycoon/internal/weather"
)

// Programmer errors: ids that do not name anything in the current game.
var (
	ErrUnknownBoat       = errors.New("unknown boat")
	ErrUnknownBuyer      = errors.New("unknown buyer")
	ErrUnknownContract   = errors.New("unknown contract")
	ErrUnknownEquipment  = errors.New("unknown equipment")
	ErrUnknownTown       = errors.New("unknown town")
	ErrUnknownRetirement = errors.New("unknown retirement option")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
)

// Options configure a new game.
type Options struct {
	Seed    int64           // 0 picks a random seed
	Balance *config.Balance // nil uses config.DefaultBalance
	Strict  bool            // panic on ledger invariant violations
	Logger  *slog.Logger
	Store   LegacyStore // nil keeps the legacy in memory only

	// OnEvent receives every event as it is logged. It runs with the game
	// locked and must not call back into the Game.
	OnEvent func(Event)
}

// Game is one running session.
type Game struct {
	mu sync.Mutex
	s  *State

	bal    config.Balance
	src    *entropy.Source
	pricer economy.Pricer
	sky    *weather.Forecaster
	log    *slog.Logger
	store  LegacyStore
	legacy Legacy

	onEvent func(Event)
	strict  bool
}

func newGame(ctx context.Context, opts Options) (*Game, error) {
	bal := config.DefaultBalance()
	if opts.Balance != nil {
		bal = *opts.Balance
	}
	if err := bal.Validate(); err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryLegacyStore()
	}
	legacy, err := store.LoadLegacy(ctx)
	if err != nil {
		return nil, fmt.Errorf("load legacy: %w", err)
	}

	src := entropy.New(opts.Seed)
	return &Game{
		bal:     bal,
		src:     src,
		pricer:  economy.NewPricer(bal.Pricing),
		sky:     weather.NewForecaster(src.Seed(), bal.Weather),
		log:     logger,
		store:   store,
		legacy:  legacy,
		onEvent: opts.OnEvent,
		strict:  opts.Strict,
	}, nil
}

// New starts a fresh game on day 1, applying any prestige bonuses from the
// stored legacy.
func New(ctx context.Context, opts Options) (*Game, error) {
	g, err := newGame(ctx, opts)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reset()
	g.log.Info("new game",
		"seed", g.s.Seed,
		"cash", g.s.Cash,
		"reputation", g.s.Reputation.Score,
		"prestige", g.legacy.Prestige,
	)
	return g, nil
}

// Restore resumes a game from a snapshot taken with Snapshot.
func Restore(ctx context.Context, snap *State, opts Options) (*Game, error) {
	if snap == nil || snap.Day < 1 || snap.Ledger == nil {
		return nil, ErrInvalidSnapshot
	}
	opts.Seed = snap.Seed
	g, err := newGame(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := g.src.Restore(snap.RNG); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if err := snap.Ledger.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	g.s = snap.clone()
	if g.s.NPCs == nil {
		g.s.NPCs = social.NewBook()
	}
	if g.s.Ledger.Inventory == nil {
		g.s.Ledger.Inventory = make(map[config.Grade]int)
	}
	g.log.Info("game restored", "seed", g.s.Seed, "day", g.s.Day, "cash", g.s.Cash)
	return g, nil
}

// reset builds day 1.
func (g *Game) reset() {
	bonus := prestigeBonuses(g.legacy.Prestige)

	s := &State{
		Seed:            g.src.Seed(),
		Day:             1,
		Season:          config.SeasonForDay(1),
		Weather:         config.Sunny,
		Cash:            g.bal.StartingCash + bonus.Cash,
		Location:        config.StartingTown,
		VisitedToday:    []config.TownID{config.StartingTown},
		Ledger:          economy.NewLedger(),
		Equipment:       append([]config.EquipmentID(nil), bonus.Equipment...),
		NPCs:            social.NewBook(),
		Reputation:      social.Reputation{Score: g.bal.StartingReputation + bonus.Reputation},
		Stats:           newStats(),
		Achievements:    append([]string(nil), g.legacy.Achievements...),
		PriceBonus:      bonus.Price,
		Rivals:          newRivals(),
		TomorrowWeather: config.Sunny,
	}
	s.Stats.TownsVisited = []config.TownID{config.StartingTown}
	g.s = s

	s.TomorrowWeather = g.sky.Next(g.src, config.SeasonForDay(s.Day+1), s.Weather, s.Day)
	s.MarketTrend = weather.RollTrend(g.src, g.bal.Weather)
	g.setupDay()
}

// Snapshot returns a deep copy of the current state, including the position
// of the random stream.
func (g *Game) Snapshot() *State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() *State {
	c := g.s.clone()
	if rng, err := g.src.State(); err == nil {
		c.RNG = rng
	} else {
		g.log.Warn("snapshot rng state", "error", err)
	}
	return c
}

// Balance returns the balance sheet the game runs with.
func (g *Game) Balance() config.Balance {
	return g.bal
}

// ── Internal helpers ──────────────────────────────────────────────────

// emit appends an event to the log and notifies the subscriber.
func (g *Game) emit(category, format string, args ...any) {
	g.s.EventCount++
	e := Event{Seq: g.s.EventCount, Day: g.s.Day, Category: category, Message: fmt.Sprintf(format, args...)}
	g.s.Events = append(g.s.Events, e)
	if len(g.s.Events) > maxEvents {
		g.s.Events = g.s.Events[len(g.s.Events)-maxEvents:]
	}
	g.log.Debug("event", "day", e.Day, "category", e.Category, "message", e.Message)
	if g.onEvent != nil {
		g.onEvent(e)
	}
}

// reject logs a user-actionable refusal and returns false.
func (g *Game) reject(format string, args ...any) bool {
	g.emit(CatRejected, format, args...)
	return false
}

// verify checks the lot ledger after a mutation.
func (g *Game) verify(op string) {
	if err := g.s.Ledger.Verify(); err != nil {
		if g.strict {
			panic(fmt.Sprintf("%s: %v", op, err))
		}
		g.log.Error("ledger invariant violated", "op", op, "error", err)
	}
}

func (g *Game) effects() config.Effects {
	return economy.Combine(g.s.Equipment)
}

func (g *Game) town() config.Town {
	t, ok := config.TownByID(g.s.Location)
	if !ok {
		t, _ = config.TownByID(config.StartingTown)
	}
	return t
}

func (g *Game) market() economy.Market {
	return economy.Market{
		Season:  g.s.Season,
		Weather: g.s.Weather,
		Town:    g.town(),
		Trend:   g.s.MarketTrend,
	}
}

func (g *Game) sellTerms() economy.SellTerms {
	return economy.SellTerms{
		TransactionBonus: g.effects().TransactionBonus,
		PriceBonus:       g.s.PriceBonus,
	}
}

func (g *Game) capacity() int {
	return economy.Capacity(g.effects(), g.bal.Tank.BaseCapacity)
}

func (g *Game) owns(id config.EquipmentID) bool {
	for _, e := range g.s.Equipment {
		if e == id {
			return true
		}
	}
	return false
}

func (g *Game) netWorth() float64 {
	return g.s.Cash - g.s.Debt + g.bal.InventoryValuePerLb*float64(g.s.Ledger.Total())
}

func (g *Game) decayRate() float64 {
	return g.src.Float(g.bal.Tank.DecayRateMin, g.bal.Tank.DecayRateMax)
}

func money(v float64) string {
	return economy.FormatMoney(v)
}
