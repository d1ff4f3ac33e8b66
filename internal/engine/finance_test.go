package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
)

func TestBuyEquipment(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)

	_, err := g.BuyEquipment("jetpack")
	assert.ErrorIs(t, err, ErrUnknownEquipment)

	ok, err := g.BuyEquipment(config.IndustrialTank)
	require.NoError(t, err)
	assert.False(t, ok, "needs the large tank first")

	ok, err = g.BuyEquipment(config.Scale)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4200.0, g.Snapshot().Cash)
	assert.InDelta(t, 0.05, g.Effects().TransactionBonus, 1e-9)

	ok, err = g.BuyEquipment(config.Scale)
	require.NoError(t, err)
	assert.False(t, ok, "already owned")

	g.s.Cash = 100
	ok, err = g.BuyEquipment(config.LargeTank)
	require.NoError(t, err)
	assert.False(t, ok, "short on cash")
	assert.Equal(t, 500, g.Capacity())
}

func TestTankUpgradeRaisesCapacity(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 20000)

	ok, _ := g.BuyEquipment(config.LargeTank)
	require.True(t, ok)
	assert.Equal(t, 800, g.Capacity())

	ok, _ = g.BuyEquipment(config.IndustrialTank)
	require.True(t, ok)
	assert.Equal(t, 1500, g.Capacity(), "capacity bonuses do not stack")
}

func TestGradingTableClosesUngradedOrders(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	var kind config.BuyerKind
	for _, bt := range config.BuyerTypes {
		if bt.RunIfUngraded {
			kind = bt.Kind
			break
		}
	}
	require.NotEmpty(t, kind)
	g.s.Buyers = []Buyer{{ID: "b", Name: "B", Kind: kind, AcceptsRun: true, WantsAmount: 10, PricePerLb: 5}}

	ok, err := g.BuyEquipment(config.GradingTable)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, g.Buyers()[0].AcceptsRun)
}

func TestLoans(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)

	assert.Equal(t, 10000.0, g.MaxLoan())
	assert.False(t, g.TakeLoan(20000), "over the cap")
	assert.False(t, g.TakeLoan(0))

	require.True(t, g.TakeLoan(3000))
	s := g.Snapshot()
	assert.Equal(t, 8000.0, s.Cash)
	assert.Equal(t, 3000.0, s.Debt)
	assert.True(t, s.Stats.WasInDebt)

	assert.False(t, g.TakeLoan(100), "one loan at a time")

	require.True(t, g.PayLoan(1000))
	assert.Equal(t, 2000.0, g.Snapshot().Debt)

	require.True(t, g.PayLoan(0))
	s = g.Snapshot()
	assert.Zero(t, s.Debt)
	assert.Equal(t, 5000.0+500, s.Cash, "paying off pays the debt-free bonus")
	assert.Equal(t, 1, s.Stats.LoansPaidOff)
	assert.Contains(t, s.Achievements, "loan_paid")

	assert.False(t, g.PayLoan(10), "nothing owed")
}

func TestPayLoanNeedsCash(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 0)
	g.s.Debt = 500

	assert.False(t, g.PayLoan(0))
	assert.False(t, g.PayLoan(100))
	assert.Equal(t, 500.0, g.Snapshot().Debt)
}

func TestNetWorth(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 1000)
	g.s.Debt = 400
	g.s.Ledger.AddLot("a", config.GradeRun, 100, 80, 10, 1)

	assert.Equal(t, 1000-400+3*100.0, g.NetWorth())
}

func TestTravelNeedsVan(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)

	can, reason := g.CanTravelTo("rockland")
	assert.False(t, can)
	assert.Contains(t, reason, "Delivery Van")

	ok, err := g.TravelTo("rockland")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, config.StartingTown, g.CurrentTown().ID)

	_, err = g.TravelTo("atlantis")
	assert.ErrorIs(t, err, ErrUnknownTown)
}

func TestTravelRules(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	g.s.Equipment = []config.EquipmentID{config.DeliveryVan}

	can, _ := g.CanTravelTo(config.StartingTown)
	assert.False(t, can, "already there")

	ok, err := g.TravelTo("rockland")
	require.NoError(t, err)
	require.True(t, ok)

	s := g.Snapshot()
	assert.Equal(t, config.TownID("rockland"), s.Location)
	assert.Equal(t, 4900.0, s.Cash)
	assert.Equal(t, 1, s.TravelsToday)
	assert.NotEmpty(t, s.Buyers)
	assert.Contains(t, s.Stats.TownsVisited, config.TownID("rockland"))

	// back to a dock already worked today: buyers only
	ok, err = g.TravelTo(config.StartingTown)
	require.NoError(t, err)
	require.True(t, ok)
	s = g.Snapshot()
	assert.Empty(t, s.Boats)
	assert.NotEmpty(t, s.Buyers)

	can, reason := g.CanTravelTo("rockland")
	assert.False(t, can)
	assert.Contains(t, reason, "another trip")
}

func TestTravelNeedsReputation(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	g.s.Equipment = []config.EquipmentID{config.DeliveryVan}
	g.s.Reputation.Score = 0

	can, reason := g.CanTravelTo("camden")
	assert.False(t, can)
	assert.Contains(t, reason, config.RepTiers[1].Name)

	g.s.Reputation.Score = 45
	can, _ = g.CanTravelTo("camden")
	assert.True(t, can)
}

func TestTravelNeedsFare(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 50)
	g.s.Equipment = []config.EquipmentID{config.DeliveryVan}

	can, reason := g.CanTravelTo("rockland")
	assert.False(t, can)
	assert.Contains(t, reason, "costs")
}
