package economy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/entropy"
)

func defaultDecay() DecayParams {
	b := config.DefaultBalance().Tank
	return DecayParams{
		BaseMortality:     b.BaseMortality,
		DecayMod:          1,
		MortalityScale:    b.MortalityScale,
		CriticalFreshness: b.CriticalFreshness,
		RotFraction:       b.RotFraction,
	}
}

func TestAddLotUpdatesCache(t *testing.T) {
	l := NewLedger()
	l.AddLot("a", config.GradeQuarter, 40, 100, 10, 1)
	l.AddLot("b", config.GradeQuarter, 60, 100, 10, 2)
	l.AddLot("c", config.GradeSelect, 0, 100, 10, 2)

	assert.Equal(t, 100, l.Amount(config.GradeQuarter))
	assert.Equal(t, 0, l.Amount(config.GradeSelect))
	assert.Len(t, l.Lots, 2)
	require.NoError(t, l.Verify())
}

func TestRemoveLotAmountIsFIFO(t *testing.T) {
	l := NewLedger()
	// inserted out of order to prove ordering is by acquisition day
	l.AddLot("day3", config.GradeChix, 30, 100, 10, 3)
	l.AddLot("day1", config.GradeChix, 30, 80, 10, 1)
	l.AddLot("day2", config.GradeChix, 30, 90, 10, 2)

	taken := l.RemoveLotAmount(config.GradeChix, 40)
	require.Len(t, taken, 2)
	assert.Equal(t, Portion{LotID: "day1", Grade: config.GradeChix, Amount: 30, Freshness: 80}, taken[0])
	assert.Equal(t, Portion{LotID: "day2", Grade: config.GradeChix, Amount: 10, Freshness: 90}, taken[1])

	ids := []string{}
	for _, lot := range l.Lots {
		ids = append(ids, lot.ID)
	}
	assert.ElementsMatch(t, []string{"day3", "day2"}, ids)
	assert.Equal(t, 50, l.Amount(config.GradeChix))
	require.NoError(t, l.Verify())
}

func TestRemoveMoreThanHeldClampsAtZero(t *testing.T) {
	l := NewLedger()
	l.AddLot("a", config.GradeRun, 25, 100, 10, 1)

	taken := l.RemoveLotAmount(config.GradeRun, 100)
	require.Len(t, taken, 1)
	assert.Equal(t, 25, taken[0].Amount)
	assert.Equal(t, 0, l.Amount(config.GradeRun))
	assert.Empty(t, l.Lots)
	assert.Nil(t, l.RemoveLotAmount(config.GradeRun, 0))
	require.NoError(t, l.Verify())
}

func TestDailyDecayExample(t *testing.T) {
	l := NewLedger()
	l.AddLot("a", config.GradeQuarter, 100, 100, 12, 1)

	report := l.ProcessDailyDecay(defaultDecay())

	require.Len(t, l.Lots, 1)
	assert.InDelta(t, 88, l.Lots[0].Freshness, 1e-9)
	assert.Equal(t, 94, l.Lots[0].Amount)
	assert.Equal(t, 6, report.Mortality[config.GradeQuarter])
	assert.Equal(t, 0, report.Rot[config.GradeQuarter])
	assert.Equal(t, 6, report.Lost())
	assert.Equal(t, 94, l.Amount(config.GradeQuarter))
}

func TestCriticalLotsRotOnTopOfMortality(t *testing.T) {
	l := NewLedger()
	l.AddLot("a", config.GradeSelect, 100, 20, 12, 1)

	report := l.ProcessDailyDecay(defaultDecay())

	// freshness 8: mortality floor(100*0.05*(1+2*0.92)) = 14, rot floor(86*0.3) = 25
	assert.Equal(t, 14, report.Mortality[config.GradeSelect])
	assert.Equal(t, 25, report.Rot[config.GradeSelect])
	assert.Equal(t, 61, l.Amount(config.GradeSelect))
	require.NoError(t, l.Verify())
}

func TestDecayModSlowsFreshnessLoss(t *testing.T) {
	l := NewLedger()
	l.AddLot("a", config.GradeQuarter, 100, 100, 12, 1)
	p := defaultDecay()
	p.DecayMod = 0.5

	l.ProcessDailyDecay(p)
	assert.InDelta(t, 94, l.Lots[0].Freshness, 1e-9)
}

func TestAverageFreshnessWeightsByAmount(t *testing.T) {
	l := NewLedger()
	l.AddLot("big", config.GradeQuarter, 90, 100, 10, 1)
	l.AddLot("small", config.GradeQuarter, 10, 0, 10, 1)
	l.AddLot("other", config.GradeSelect, 50, 50, 10, 1)

	assert.InDelta(t, 90, l.AverageFreshness(config.GradeQuarter), 1e-9)
	assert.InDelta(t, 50, l.AverageFreshness(config.GradeSelect), 1e-9)
	assert.InDelta(t, (9000.0+2500)/150, l.AverageFreshness(), 1e-9)
	assert.Zero(t, l.AverageFreshness(config.GradeChix))
}

func TestShrinkAndSpoil(t *testing.T) {
	l := NewLedger()
	l.AddLot("a", config.GradeQuarter, 100, 100, 10, 1)
	l.AddLot("b", config.GradeChix, 9, 15, 10, 1)

	lost := l.ShrinkAll(0.10)
	assert.Equal(t, 10, lost)
	assert.Equal(t, 90, l.Amount(config.GradeQuarter))
	assert.Equal(t, 9, l.Amount(config.GradeChix))

	l.Spoil(20)
	assert.InDelta(t, 80, l.Lots[0].Freshness, 1e-9)
	assert.Zero(t, l.Lots[1].Freshness)
	require.NoError(t, l.Verify())
}

func TestVerifyCatchesDivergence(t *testing.T) {
	l := NewLedger()
	l.AddLot("a", config.GradeQuarter, 10, 100, 10, 1)
	l.Inventory[config.GradeQuarter] = 11
	assert.ErrorIs(t, l.Verify(), ErrLedgerCorrupt)

	l.Inventory[config.GradeQuarter] = 10
	l.Inventory[config.GradeSelect] = 0
	assert.NoError(t, l.Verify())

	l.Lots[0].Amount = -1
	assert.ErrorIs(t, l.Verify(), ErrLedgerCorrupt)
}

func TestLedgerConservationUnderRandomOps(t *testing.T) {
	src := entropy.New(2024)
	l := NewLedger()
	grades := []config.Grade{config.GradeSelect, config.GradeQuarter, config.GradeChix, config.GradeRun}

	for step := 0; step < 2000; step++ {
		grade := entropy.Choice(src, grades)
		switch src.Int(0, 3) {
		case 0, 1:
			l.AddLot(fmt.Sprintf("lot-%d", step), grade, src.Int(0, 200), 100, src.Float(8, 14), step/10)
		case 2:
			l.RemoveLotAmount(grade, src.Int(-5, 150))
		case 3:
			l.ProcessDailyDecay(defaultDecay())
		}
		require.NoError(t, l.Verify(), "step %d", step)
		for _, g := range grades {
			require.GreaterOrEqual(t, l.Amount(g), 0)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	l := NewLedger()
	l.AddLot("a", config.GradeQuarter, 10, 100, 10, 1)
	c := l.Clone()
	c.RemoveLotAmount(config.GradeQuarter, 5)

	assert.Equal(t, 10, l.Amount(config.GradeQuarter))
	assert.Equal(t, 10, l.Lots[0].Amount)
	assert.Equal(t, 5, c.Amount(config.GradeQuarter))
}
