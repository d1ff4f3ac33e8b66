package social

import (
	"github.com/talgya/lobster-tycoon/internal/config"
)

// Reputation is the player's standing along the coast.
type Reputation struct {
	Score int `json:"score"`
}

// RepChange reports a reputation movement.
type RepChange struct {
	Delta    int
	From, To config.RepTier
}

// TierChanged reports whether the movement crossed a tier boundary.
func (c RepChange) TierChanged() bool {
	return c.From.Index != c.To.Index
}

// Promoted reports an upward tier crossing.
func (c RepChange) Promoted() bool {
	return c.To.Index > c.From.Index
}

// DayActivity is what the player did today, as reputation sees it.
type DayActivity struct {
	Volume            int // lbs bought plus sold
	StartingInventory int
	Spoiled           int // mortality plus rot
}

// Tier returns the current reputation tier.
func (r Reputation) Tier() config.RepTier {
	return RepTierFor(r.Score)
}

// Adjust applies a one-off delta. Reputation never drops below zero.
func (r *Reputation) Adjust(delta int) RepChange {
	from := r.Tier()
	before := r.Score
	r.Score = max(0, r.Score+delta)
	return RepChange{Delta: r.Score - before, From: from, To: r.Tier()}
}

// SettleDay applies the daily gain for activity and the spoilage penalty.
func (r *Reputation) SettleDay(b config.RepBalance, a DayActivity) RepChange {
	delta := 0
	if a.Volume > 0 {
		delta += b.ActivityGain
		if b.VolumePerPoint > 0 {
			delta += min(a.Volume/b.VolumePerPoint, b.VolumeCap)
		}
	}
	if a.StartingInventory > 0 && float64(a.Spoiled) > b.SpoilageThreshold*float64(a.StartingInventory) {
		delta -= b.SpoilagePenalty
	}
	return r.Adjust(delta)
}

// RepTierFor maps a score onto the tier ladder.
func RepTierFor(score int) config.RepTier {
	tier := config.RepTiers[0]
	for _, t := range config.RepTiers {
		if score >= t.Min {
			tier = t
		}
	}
	return tier
}
