// Package autopilot plays the game with a fixed rule-based strategy. It backs
// headless simulation runs and balance checks.
package autopilot

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sort"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/engine"
)

// Strategy is a set of trading rules.
type Strategy struct {
	MaxBuyPrice  float64              // never pay more per lb
	MinSellPrice float64              // never sell for less per lb
	Reserve      float64              // cash kept back from stock and kit
	Upgrades     []config.EquipmentID // bought in order once affordable
	Contracts    bool                 // sign and fill contracts
}

// Default is a cautious dock-side dealer.
func Default() Strategy {
	return Strategy{
		MaxBuyPrice: 5.50,
		Reserve:     500,
		Upgrades: []config.EquipmentID{
			config.Scale, config.Filtration, config.GradingTable,
			config.BandingStation, config.LargeTank, config.DeliveryVan,
		},
		Contracts: true,
	}
}

// Result sums up an autopilot run.
type Result struct {
	Seed     int64          `json:"seed"`
	Days     int            `json:"days"`
	Outcome  engine.Outcome `json:"outcome"`
	Cash     float64        `json:"cash"`
	NetWorth float64        `json:"net_worth"`
	Bought   int            `json:"bought"`
	Sold     int            `json:"sold"`
}

// Run plays until the game ends, maxDays pass (0 means no limit) or ctx is
// cancelled.
func (st Strategy) Run(ctx context.Context, g *engine.Game, maxDays int) (Result, error) {
	start := g.Day()
	for maxDays <= 0 || g.Day()-start < maxDays {
		if err := ctx.Err(); err != nil {
			return st.result(g, start), err
		}
		if over, _ := g.Over(); over {
			break
		}
		if err := st.PlayDay(g); err != nil {
			return st.result(g, start), err
		}
		if _, ok := g.AdvanceDay(ctx); !ok {
			break
		}
	}
	r := st.result(g, start)
	slog.Info("autopilot finished",
		"days", r.Days,
		"outcome", r.Outcome,
		"cash", r.Cash,
		"net_worth", r.NetWorth,
	)
	return r, nil
}

func (st Strategy) result(g *engine.Game, start int) Result {
	s := g.Snapshot()
	return Result{
		Seed:     s.Seed,
		Days:     s.Day - start,
		Outcome:  s.Outcome,
		Cash:     s.Cash,
		NetWorth: g.NetWorth(),
		Bought:   s.Stats.TotalBought,
		Sold:     s.Stats.TotalSold,
	}
}

// PlayDay makes one day's trades. Rejections are normal and ignored; only
// engine errors are returned.
func (st Strategy) PlayDay(g *engine.Game) error {
	if err := st.story(g); err != nil {
		return err
	}
	if err := st.upgrade(g); err != nil {
		return err
	}
	if st.Contracts {
		if err := st.contracts(g); err != nil {
			return err
		}
	}
	if err := st.sell(g); err != nil {
		return err
	}
	if err := st.buy(g); err != nil {
		return err
	}
	return st.sell(g)
}

// story answers a waiting captain with the first choice that leaves the
// upgrade reserve intact.
func (st Strategy) story(g *engine.Game) error {
	p := g.PendingStory()
	if p == nil {
		return nil
	}
	cash := g.Snapshot().Cash
	for i, c := range p.Choices {
		if cash-c.Cost < st.Reserve*4 {
			continue
		}
		_, err := g.ResolveStory(i)
		return err
	}
	return nil
}

func (st Strategy) upgrade(g *engine.Game) error {
	s := g.Snapshot()
	for _, id := range st.Upgrades {
		if slices.Contains(s.Equipment, id) {
			continue
		}
		eq, ok := config.EquipmentByID(id)
		if !ok || s.Cash-eq.Cost < st.Reserve*4 {
			continue
		}
		if _, err := g.BuyEquipment(id); err != nil {
			return err
		}
		// one purchase a day keeps trading cash on hand
		return nil
	}
	return nil
}

func (st Strategy) contracts(g *engine.Game) error {
	offers, _ := g.Contracts()
	for _, c := range offers {
		if c.Premium {
			continue
		}
		if _, err := g.AcceptContract(c.ID); err != nil {
			return err
		}
	}
	_, active := g.Contracts()
	for _, c := range active {
		if c.DeliveredWeek >= c.PerWeek {
			continue
		}
		if _, err := g.DeliverToContract(c.ID, 0); err != nil {
			return err
		}
	}
	return nil
}

func (st Strategy) sell(g *engine.Game) error {
	buyers := g.Buyers()
	sort.SliceStable(buyers, func(i, j int) bool { return buyers[i].PricePerLb > buyers[j].PricePerLb })
	for _, b := range buyers {
		if !b.CanSell || b.PricePerLb < st.MinSellPrice {
			continue
		}
		if _, err := g.SellToBuyer(b.ID, 0); err != nil {
			return err
		}
	}
	return nil
}

func (st Strategy) buy(g *engine.Game) error {
	boats := g.Boats()
	sort.SliceStable(boats, func(i, j int) bool { return boats[i].PricePerLb < boats[j].PricePerLb })
	for _, b := range boats {
		if b.PricePerLb > st.MaxBuyPrice {
			continue
		}
		s := g.Snapshot()
		space := g.Capacity() - s.Ledger.Total()
		afford := int(math.Floor((s.Cash - st.Reserve) / b.PricePerLb))
		n := min(b.CatchAmount, space, afford)
		if n <= 0 {
			continue
		}
		if _, err := g.BuyFromBoat(b.ID, n); err != nil {
			return err
		}
	}
	return nil
}
