package engine

import (
	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/entropy"
)

// incident is a random event that can strike at the start of a day.
type incident struct {
	id     string
	chance float64
	can    func(g *Game) bool
	apply  func(g *Game)
}

var incidents = []incident{
	{
		id: "truck_breakdown", chance: 0.08,
		can: func(g *Game) bool { return g.owns(config.DeliveryVan) },
		apply: func(g *Game) {
			cost := float64(g.src.Int(200, 500))
			g.spend(cost)
			g.emit(CatIncident, "The van broke down on Route 1: %s in repairs", money(cost))
		},
	},
	{
		id: "tank_leak", chance: 0.05,
		can: func(g *Game) bool { return g.s.Ledger.Total() >= 50 },
		apply: func(g *Game) {
			lost := g.s.Ledger.ShrinkAll(g.src.Float(0.05, 0.15))
			g.s.Stats.MortalityLoss += lost
			g.emit(CatIncident, "A tank seal failed overnight: %d lbs lost", lost)
		},
	},
	{
		id: "health_inspection", chance: 0.04,
		can: func(*Game) bool { return true },
		apply: func(g *Game) {
			fine := float64(g.src.Int(100, 300))
			g.spend(fine)
			g.emit(CatIncident, "The health inspector found problems: %s fine", money(fine))
		},
	},
	{
		id: "equipment_malfunction", chance: 0.06,
		can: func(g *Game) bool { return len(g.s.Equipment) > 0 },
		apply: func(g *Game) {
			id := entropy.Choice(g.src, g.s.Equipment)
			eq, _ := config.EquipmentByID(id)
			cost := float64(g.src.Int(150, 400))
			g.spend(cost)
			g.emit(CatIncident, "Your %s acted up: %s to fix", eq.Name, money(cost))
		},
	},
	{
		id: "temperature_swing", chance: 0.04,
		can: func(g *Game) bool { return g.s.Ledger.Total() >= 30 },
		apply: func(g *Game) {
			drop := g.src.Float(10, 25)
			g.s.Ledger.Spoil(drop)
			g.emit(CatIncident, "Water temperature spiked: stock lost %.0f freshness", drop)
		},
	},
	{
		id: "lucky_find", chance: 0.05,
		can: func(g *Game) bool { return g.capacity()-g.s.Ledger.Total() >= 20 },
		apply: func(g *Game) {
			n := min(g.src.Int(20, 50), g.capacity()-g.s.Ledger.Total())
			grade := config.GradeRun
			if g.effects().GradingEnabled {
				grade = config.GradeQuarter
			}
			g.s.Ledger.AddLot(g.src.ID(), grade, n, 100, g.decayRate(), g.s.Day)
			g.emit(CatIncident, "A neighbor left you %d lbs in payment of an old debt", n)
		},
	},
	{
		id: "walk_in_buyer", chance: 0.07,
		can: func(g *Game) bool { return g.s.Ledger.Total() >= 20 },
		apply: func(g *Game) {
			bt, _ := config.BuyerTypeFor(config.BuyerWholesaler)
			b := g.rollBuyer(bt, g.src.Float(1.15, 1.35))
			b.Name = entropy.Choice(g.src, []string{"Passing Chef", "Food Truck Owner", "Yacht Steward"})
			b.WantsAmount = g.src.Int(20, 60)
			b.WalkIn = true
			g.s.Buyers = append(g.s.Buyers, b)
			g.emit(CatIncident, "%s walked in paying %s/lb", b.Name, money(b.PricePerLb))
		},
	},
	{
		id: "bonus_boat", chance: 0.06,
		can: func(g *Game) bool { return config.WeatherData(g.s.Weather).BoatMod > 0 },
		apply: func(g *Game) {
			b := g.rollBoat(g.src.Float(0.85, 0.95))
			b.Bonus = true
			g.s.Boats = append(g.s.Boats, b)
			g.emit(CatIncident, "%s came in late with %d lbs going cheap", b.Captain, b.CatchAmount)
		},
	},
	{
		id: "market_tip", chance: 0.05,
		can: func(*Game) bool { return true },
		apply: func(g *Game) {
			dir := "steady"
			switch {
			case config.WeatherData(g.s.TomorrowWeather).PriceMod > 1:
				dir = "up"
			case g.s.MarketTrend < 0:
				dir = "soft"
			}
			g.emit(CatIncident, "A dock hand says prices look %s tomorrow", dir)
		},
	},
	{
		id: "tax_refund", chance: 0.03,
		can: func(*Game) bool { return true },
		apply: func(g *Game) {
			refund := float64(g.src.Int(200, 600))
			g.s.Cash = economy.RoundCents(g.s.Cash + refund)
			g.emit(CatIncident, "Tax refund came through: %s", money(refund))
		},
	},
}

// rollIncidents fires at most one incident, then with some chance a second
// different one.
func (g *Game) rollIncidents() {
	if !g.bal.Events.Enabled {
		return
	}
	fired := map[string]bool{}
	for round := 0; round < 2; round++ {
		if round == 1 && (len(fired) == 0 || !g.src.Chance(g.bal.Events.SecondEventChance)) {
			return
		}
		order := make([]int, len(incidents))
		for i := range order {
			order[i] = i
		}
		g.shuffle(order)
		for _, i := range order {
			in := incidents[i]
			if fired[in.id] || !in.can(g) || !g.src.Chance(in.chance) {
				continue
			}
			in.apply(g)
			fired[in.id] = true
			g.s.Stats.RandomEvents++
			g.log.Debug("incident", "id", in.id, "day", g.s.Day)
			break
		}
	}
	g.verify("incident")
}

func (g *Game) shuffle(idx []int) {
	for i := len(idx) - 1; i > 0; i-- {
		j := g.src.Int(0, i)
		idx[i], idx[j] = idx[j], idx[i]
	}
}
