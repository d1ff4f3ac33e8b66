package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/talgya/lobster-tycoon/internal/config"
)

// Legacy is what carries over between games.
type Legacy struct {
	Prestige         int      `json:"prestige"`
	LifetimeEarnings float64  `json:"lifetime_earnings"`
	GamesCompleted   int      `json:"games_completed"`
	BestCash         float64  `json:"best_cash"`
	Achievements     []string `json:"achievements"`
}

// LegacyStore is the durable key-value home of the legacy.
type LegacyStore interface {
	LoadLegacy(ctx context.Context) (Legacy, error)
	SaveLegacy(ctx context.Context, l Legacy) error
}

// MemoryLegacyStore keeps the legacy in process memory.
type MemoryLegacyStore struct {
	mu sync.Mutex
	l  Legacy
}

// NewMemoryLegacyStore returns an empty store.
func NewMemoryLegacyStore() *MemoryLegacyStore {
	return &MemoryLegacyStore{}
}

func (m *MemoryLegacyStore) LoadLegacy(context.Context) (Legacy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.l
	l.Achievements = slices.Clone(m.l.Achievements)
	return l, nil
}

func (m *MemoryLegacyStore) SaveLegacy(_ context.Context, l Legacy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.Achievements = slices.Clone(l.Achievements)
	m.l = l
	return nil
}

// bonuses is the sum of every prestige reward unlocked so far.
type bonuses struct {
	Cash       float64
	Reputation int
	Price      float64
	Equipment  []config.EquipmentID
	Title      string
}

// prestigeBonuses sums the rewards at or below level. The top reward is a
// title only.
func prestigeBonuses(level int) bonuses {
	b := bonuses{Title: "Newcomer"}
	for _, r := range config.PrestigeRewards {
		if level < r.Level {
			continue
		}
		b.Title = r.Name
		switch r.Bonus {
		case config.BonusStartingCash:
			b.Cash += r.Amount
		case config.BonusStartingReputation:
			b.Reputation += int(r.Amount)
		case config.BonusPrice:
			b.Price += r.Amount
		case config.BonusStartingEquipment:
			if !slices.Contains(b.Equipment, r.Item) {
				b.Equipment = append(b.Equipment, r.Item)
			}
		}
	}
	return b
}

// PrestigeTitle names the highest prestige reward reached.
func PrestigeTitle(level int) string {
	return prestigeBonuses(level).Title
}

// Legacy returns the carried-over record as it stands now, including
// unlocks from this game not yet saved.
func (g *Game) Legacy() Legacy {
	g.mu.Lock()
	defer g.mu.Unlock()
	l := g.legacy
	l.Achievements = slices.Clone(g.legacy.Achievements)
	return l
}

// SaveLegacy writes the legacy to the store.
func (g *Game) SaveLegacy(ctx context.Context) error {
	g.mu.Lock()
	l := g.legacy
	l.Achievements = slices.Clone(g.legacy.Achievements)
	g.mu.Unlock()

	if err := g.store.SaveLegacy(ctx, l); err != nil {
		return fmt.Errorf("save legacy: %w", err)
	}
	return nil
}

// Retire ends the game for prestige when cash meets the option's bar.
func (g *Game) Retire(ctx context.Context, optionID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := slices.IndexFunc(config.RetirementOptions, func(o config.RetirementOption) bool { return o.ID == optionID })
	if i < 0 {
		return false, fmt.Errorf("retire %s: %w", optionID, ErrUnknownRetirement)
	}
	opt := config.RetirementOptions[i]
	if g.s.Over() {
		return g.reject("The season is over"), nil
	}
	if g.s.Cash < opt.Requirement {
		return g.reject("%s needs %s in cash", opt.Name, money(opt.Requirement)), nil
	}

	g.legacy.Prestige += opt.Prestige
	g.emit(CatGame, "%s: +%d prestige", opt.Name, opt.Prestige)

	// endGame saves the legacy; a failure there is logged, so save again to
	// report it to the caller.
	g.endGame(ctx, OutcomeRetired, opt.Name)
	l := g.legacy
	l.Achievements = slices.Clone(g.legacy.Achievements)
	if err := g.store.SaveLegacy(ctx, l); err != nil {
		return true, fmt.Errorf("save legacy: %w", err)
	}
	return true, nil
}
