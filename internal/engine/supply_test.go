package engine

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/social"
)

func TestMaxBoats(t *testing.T) {
	tests := []struct {
		town  config.TownID
		equip []config.EquipmentID
		want  int
	}{
		{"stonington", nil, 3},
		{"stonington", []config.EquipmentID{config.DockRunner}, 4},
		{"rockland", nil, 2},
		{"camden", nil, 1},
		{"barHarbor", nil, 1}, // 1 - 1 still leaves one slot
		{"barHarbor", []config.EquipmentID{config.DockRunner}, 1},
	}
	for _, tt := range tests {
		g := newTestGame(t)
		g.s.Location = tt.town
		g.s.Equipment = tt.equip
		assert.Equal(t, tt.want, g.maxBoats(), "%s %v", tt.town, tt.equip)
	}
}

func TestStormKeepsBoatsIn(t *testing.T) {
	g := newTestGame(t)
	g.s.Weather = config.Stormy
	for range 50 {
		assert.Empty(t, g.generateBoats())
	}
}

func TestGeneratedBoats(t *testing.T) {
	g := newTestGame(t)
	g.s.Weather = config.Sunny
	g.s.Equipment = []config.EquipmentID{config.DockRunner}
	limit := g.maxBoats()

	captains := map[string]config.Captain{}
	for _, c := range config.Captains {
		captains[c.Name] = c
	}
	types := map[string]config.BoatType{}
	for _, bt := range config.BoatTypes {
		types[bt.ID] = bt
	}

	full := false
	for range 200 {
		boats := g.generateBoats()
		assert.LessOrEqual(t, len(boats), limit)
		full = full || len(boats) == limit
		for _, b := range boats {
			bt, ok := types[b.Type]
			require.True(t, ok, b.Type)
			c, ok := captains[b.Captain]
			require.True(t, ok, b.Captain)

			assert.Equal(t, bt.TimerSecs, b.TimeLeft)
			assert.Equal(t, g.s.Day, b.Day)
			assert.Positive(t, b.PricePerLb)
			lo := int(math.Round(float64(bt.CatchMin) * c.CatchModifier))
			hi := int(math.Round(float64(bt.CatchMax) * c.CatchModifier))
			assert.GreaterOrEqual(t, b.CatchAmount, max(1, lo), "%s on a %s", b.Captain, b.Type)
			assert.LessOrEqual(t, b.CatchAmount, hi, "%s on a %s", b.Captain, b.Type)
		}
	}
	assert.True(t, full, "a sunny dock fills every slot sometimes")
}

func TestBuyerSlots(t *testing.T) {
	tests := []struct {
		town config.TownID
		rep  int
		want int
	}{
		{"stonington", 0, 1},  // 2 + 0 - 1
		{"rockland", 0, 2},    // 2 + 0 + 0
		{"portland", 50, 4},   // 2 + 1 + 1
		{"barHarbor", 100, 6}, // 2 + 2 + 2
	}
	for _, tt := range tests {
		g := newTestGame(t)
		g.s.Location = tt.town
		g.s.Reputation.Score = tt.rep
		assert.Equal(t, tt.want, g.buyerSlots(), "%s at %d", tt.town, tt.rep)
	}
}

func TestGeneratedBuyers(t *testing.T) {
	tests := []struct {
		name   string
		rep    int
		town   config.TownID
		slots  int
		locked []config.BuyerKind
	}{
		{"newcomer gets budget buyers", 0, "portland", 3, []config.BuyerKind{config.BuyerRestaurant, config.BuyerSpecial}},
		{"known dealer adds restaurants", 50, "portland", 4, []config.BuyerKind{config.BuyerSpecial}},
		{"respected adds specials", 100, "camden", 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t)
			g.s.Weather = config.Sunny // every slot rolls a buyer
			g.s.Location = tt.town
			g.s.Reputation.Score = tt.rep

			for range 50 {
				buyers := g.generateBuyers()
				require.Len(t, buyers, tt.slots)
				assert.Equal(t, config.BuyerWholesaler, buyers[0].Kind)
				for _, b := range buyers[1:] {
					assert.NotEqual(t, config.BuyerWholesaler, b.Kind, "wholesalers only take the first slot")
					assert.False(t, slices.Contains(tt.locked, b.Kind), "%s is locked", b.Kind)
				}
			}
		})
	}
}

func TestBuyerVolumeGrowsWithTrust(t *testing.T) {
	wholesaler, ok := config.BuyerTypeFor(config.BuyerWholesaler)
	require.True(t, ok)

	tests := []struct {
		trust int
		bonus int
	}{
		{0, 0},
		{55, 5},
		{100, 10},
		{-40, 0},
	}
	for _, tt := range tests {
		g := newTestGame(t)
		g.s.Location = "rockland"
		for _, name := range wholesaler.Names {
			g.s.NPCs.Adjust(social.RoleBuyer, name, tt.trust)
		}
		for range 50 {
			b := g.rollBuyer(wholesaler, 1)
			assert.GreaterOrEqual(t, b.WantsAmount, wholesaler.WantMin+tt.bonus, "trust %d", tt.trust)
			assert.LessOrEqual(t, b.WantsAmount, wholesaler.WantMax+tt.bonus, "trust %d", tt.trust)
		}
	}
}

func TestRestaurantNeedsBanding(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	restaurant, ok := config.BuyerTypeFor(config.BuyerRestaurant)
	require.True(t, ok)
	g.s.Buyers = []Buyer{g.rollBuyer(restaurant, 1)}
	g.s.Ledger.AddLot("r", config.GradeRun, 50, 100, 10, 1)

	offers := g.Buyers()
	require.Len(t, offers, 1)
	assert.True(t, offers[0].AcceptsRun, "takes ungraded stock while the player cannot grade")
	assert.False(t, offers[0].CanSell)
	assert.Contains(t, offers[0].Reason, "Banding Station")

	g.s.Equipment = []config.EquipmentID{config.BandingStation}
	offers = g.Buyers()
	assert.True(t, offers[0].CanSell)
	assert.Equal(t, min(50, offers[0].WantsAmount), offers[0].Sellable)
}
