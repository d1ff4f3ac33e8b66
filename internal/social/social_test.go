package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/entropy"
)

func TestTierForBoundariesAreInclusive(t *testing.T) {
	tests := []struct {
		trust int
		want  string
	}{
		{-100, "cold"},
		{-26, "cold"},
		{-25, "neutral"},
		{24, "neutral"},
		{25, "warm"},
		{59, "warm"},
		{60, "preferred"},
		{100, "preferred"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.trust).Name, "trust %d", tt.trust)
	}
}

func TestSettleDayInteractedAndAbsent(t *testing.T) {
	tb := config.DefaultBalance().Trust
	b := NewBook()
	b.RecordInteraction(RoleSeller, "Cap'n Joe", 120)
	b.Get(RoleBuyer, "Harbor Bistro")

	changes := b.SettleDay(tb)
	require.Len(t, changes, 2)

	// sorted by key: buyer before seller
	assert.Equal(t, -1, changes[0].Delta)
	assert.Equal(t, 4, changes[1].Delta) // 2 + floor(120/50)

	joe := b.Get(RoleSeller, "Cap'n Joe")
	assert.Equal(t, 1, joe.ConsecutiveDays)
	assert.Equal(t, 0, joe.DaysSinceInteraction)
	assert.Zero(t, joe.TodayVolume)
	assert.Equal(t, 120, joe.TotalVolume)

	bistro := b.Get(RoleBuyer, "Harbor Bistro")
	assert.Equal(t, 1, bistro.DaysSinceInteraction)
	assert.Equal(t, -1, bistro.Trust)
}

func TestStreakBonusFromThirdDay(t *testing.T) {
	tb := config.DefaultBalance().Trust
	b := NewBook()
	var deltas []int
	for day := 0; day < 4; day++ {
		b.RecordInteraction(RoleSeller, "Old Pete", 10)
		deltas = append(deltas, b.SettleDay(tb)[0].Delta)
	}
	assert.Equal(t, []int{2, 2, 4, 4}, deltas)

	b.SettleDay(tb)
	assert.Zero(t, b.Get(RoleSeller, "Old Pete").ConsecutiveDays)
}

func TestTrustStaysClamped(t *testing.T) {
	tb := config.DefaultBalance().Trust
	src := entropy.New(31)
	b := NewBook()
	for i := 0; i < 3000; i++ {
		switch src.Int(0, 2) {
		case 0:
			b.Adjust(RoleBuyer, "Pier 7", src.Int(-60, 60))
		case 1:
			b.RecordInteraction(RoleBuyer, "Pier 7", src.Int(0, 5000))
		case 2:
			b.SettleDay(tb)
		}
		trust := b.Get(RoleBuyer, "Pier 7").Trust
		require.GreaterOrEqual(t, trust, MinTrust)
		require.LessOrEqual(t, trust, MaxTrust)
	}
}

func TestTierChangeIsReported(t *testing.T) {
	tb := config.DefaultBalance().Trust
	b := NewBook()
	b.Adjust(RoleSeller, "Big Mike", 24)
	b.RecordInteraction(RoleSeller, "Big Mike", 10)

	c := b.SettleDay(tb)[0]
	assert.True(t, c.TierChanged())
	assert.Equal(t, "neutral", c.From.Name)
	assert.Equal(t, "warm", c.To.Name)
	assert.Equal(t, "warm", b.Tier(RoleSeller, "Big Mike").Name)
	assert.Equal(t, "neutral", b.Tier(RoleSeller, "Nobody").Name)
}

func TestReputationSettleDay(t *testing.T) {
	rb := config.DefaultBalance().Rep

	tests := []struct {
		name  string
		start int
		act   DayActivity
		want  int
	}{
		{"idle day", 50, DayActivity{}, 50},
		{"activity", 50, DayActivity{Volume: 250}, 53},
		{"volume capped", 50, DayActivity{Volume: 5000}, 56},
		{"spoilage penalty", 50, DayActivity{Volume: 10, StartingInventory: 100, Spoiled: 11}, 48},
		{"spoilage at threshold is fine", 50, DayActivity{StartingInventory: 100, Spoiled: 10}, 50},
		{"never below zero", 1, DayActivity{StartingInventory: 100, Spoiled: 50}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reputation{Score: tt.start}
			r.SettleDay(rb, tt.act)
			assert.Equal(t, tt.want, r.Score)
		})
	}
}

func TestReputationTierTransitions(t *testing.T) {
	r := Reputation{Score: 38}
	c := r.Adjust(3)
	assert.True(t, c.TierChanged())
	assert.True(t, c.Promoted())
	assert.Equal(t, "Known Dealer", r.Tier().Name)

	c = r.Adjust(-10)
	assert.True(t, c.TierChanged())
	assert.False(t, c.Promoted())

	assert.Equal(t, 4, RepTierFor(9999).Index)
}
