package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
)

func incidentByID(t *testing.T, id string) incident {
	t.Helper()
	for _, in := range incidents {
		if in.id == id {
			return in
		}
	}
	t.Fatalf("no incident %q", id)
	return incident{}
}

func TestTankLeakKeepsLedgerConsistent(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	g.s.Ledger.AddLot("a", config.GradeRun, 120, 100, 10, 1)
	g.s.Ledger.AddLot("b", config.GradeRun, 80, 90, 10, 1)
	leak := incidentByID(t, "tank_leak")
	require.True(t, leak.can(g))

	leak.apply(g)

	s := g.Snapshot()
	require.NoError(t, s.Ledger.Verify())
	lost := 200 - s.Ledger.Total()
	assert.Positive(t, lost)
	assert.LessOrEqual(t, lost, 30, "at most 15% leaks")
	assert.Equal(t, lost, s.Stats.MortalityLoss)
}

func TestLuckyFindRespectsCapacity(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	find := incidentByID(t, "lucky_find")

	g.s.Ledger.AddLot("a", config.GradeRun, g.capacity()-10, 100, 10, 1)
	assert.False(t, find.can(g), "no room for a find")

	g.s.Ledger.RemoveLotAmount(config.GradeRun, 10)
	require.True(t, find.can(g))
	find.apply(g)

	s := g.Snapshot()
	require.NoError(t, s.Ledger.Verify())
	assert.Equal(t, g.capacity(), s.Ledger.Total(), "the find fills the tank and no more")
	assert.Equal(t, s.Ledger.Total(), s.Ledger.Amount(config.GradeRun), "ungraded without a grading table")
}

func TestCashIncidents(t *testing.T) {
	tests := []struct {
		id     string
		equip  []config.EquipmentID
		lo, hi float64
	}{
		{"truck_breakdown", []config.EquipmentID{config.DeliveryVan}, -500, -200},
		{"health_inspection", nil, -300, -100},
		{"equipment_malfunction", []config.EquipmentID{config.Scale}, -400, -150},
		{"tax_refund", nil, 200, 600},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			g := newTestGame(t)
			clearDay(g, 5000)
			g.s.Equipment = tt.equip
			in := incidentByID(t, tt.id)
			require.True(t, in.can(g))

			in.apply(g)
			delta := g.Snapshot().Cash - 5000
			assert.GreaterOrEqual(t, delta, tt.lo)
			assert.LessOrEqual(t, delta, tt.hi)
		})
	}
}

func TestIncidentsNeedTheirPreconditions(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	g.s.Weather = config.Stormy

	for _, id := range []string{"truck_breakdown", "tank_leak", "equipment_malfunction", "temperature_swing", "walk_in_buyer", "bonus_boat"} {
		assert.False(t, incidentByID(t, id).can(g), id)
	}
}

func TestRollIncidentsOff(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	for range 50 {
		g.rollIncidents()
	}
	assert.Zero(t, g.Snapshot().Stats.RandomEvents)
}
