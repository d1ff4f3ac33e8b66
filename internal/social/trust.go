// Package social tracks relationships: per-NPC trust with the captains and
// buyers the player deals with, and the player's aggregate reputation.
package social

import (
	"sort"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
)

const (
	MinTrust = -100
	MaxTrust = 100
)

// Role is which side of a deal an NPC sits on.
type Role string

const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// NPC is a persistent relationship record, keyed by role and name.
type NPC struct {
	Name                 string `json:"name"`
	Role                 Role   `json:"role"`
	Trust                int    `json:"trust"`
	ConsecutiveDays      int    `json:"consecutive_days"`
	DaysSinceInteraction int    `json:"days_since_interaction"`
	TodayVolume          int    `json:"today_volume"`
	TotalVolume          int    `json:"total_volume"`
	Deals                int    `json:"deals"`
}

// TrustChange reports one NPC's end-of-day settlement.
type TrustChange struct {
	Key      string
	Name     string
	Role     Role
	Delta    int
	From, To config.TrustTier
}

// TierChanged reports whether the NPC crossed a tier boundary.
func (c TrustChange) TierChanged() bool {
	return c.From.Name != c.To.Name
}

// Book holds every NPC the player has met.
type Book struct {
	NPCs map[string]*NPC `json:"npcs"`
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{NPCs: make(map[string]*NPC)}
}

// Key is the book key for an NPC.
func Key(role Role, name string) string {
	return string(role) + ":" + name
}

// Get returns the record for an NPC, creating a neutral one on first contact.
func (b *Book) Get(role Role, name string) *NPC {
	if b.NPCs == nil {
		b.NPCs = make(map[string]*NPC)
	}
	k := Key(role, name)
	npc, ok := b.NPCs[k]
	if !ok {
		npc = &NPC{Name: name, Role: role}
		b.NPCs[k] = npc
	}
	return npc
}

// Lookup returns an existing record without creating one.
func (b *Book) Lookup(key string) (*NPC, bool) {
	npc, ok := b.NPCs[key]
	return npc, ok
}

// RecordInteraction notes a deal of amount lbs with an NPC today.
func (b *Book) RecordInteraction(role Role, name string, amount int) {
	if amount <= 0 {
		return
	}
	npc := b.Get(role, name)
	npc.TodayVolume += amount
	npc.TotalVolume += amount
	npc.Deals++
}

// Adjust shifts an NPC's trust outside the daily cycle, clamped to range.
func (b *Book) Adjust(role Role, name string, delta int) {
	npc := b.Get(role, name)
	npc.Trust = economy.Clamp(npc.Trust+delta, MinTrust, MaxTrust)
}

// Tier returns the trust tier of an NPC; unknown NPCs are neutral.
func (b *Book) Tier(role Role, name string) config.TrustTier {
	if npc, ok := b.NPCs[Key(role, name)]; ok {
		return TierFor(npc.Trust)
	}
	return TierFor(0)
}

// SettleDay runs the end-of-day trust update for every known NPC: those
// dealt with today gain trust, everyone else drifts down. Returned changes
// are sorted by key.
func (b *Book) SettleDay(tb config.TrustBalance) []TrustChange {
	keys := make([]string, 0, len(b.NPCs))
	for k := range b.NPCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changes := make([]TrustChange, 0, len(keys))
	for _, k := range keys {
		npc := b.NPCs[k]
		before := npc.Trust
		from := TierFor(before)

		var delta int
		if npc.TodayVolume > 0 {
			npc.ConsecutiveDays++
			npc.DaysSinceInteraction = 0
			delta = tb.InteractBase
			if tb.VolumeThreshold > 0 {
				delta += npc.TodayVolume / tb.VolumeThreshold
			}
			if npc.ConsecutiveDays >= tb.StreakDays {
				delta += tb.StreakBonus
			}
		} else {
			npc.ConsecutiveDays = 0
			npc.DaysSinceInteraction++
			delta = -tb.AbsentDecay
		}
		npc.TodayVolume = 0
		npc.Trust = economy.Clamp(npc.Trust+delta, MinTrust, MaxTrust)

		changes = append(changes, TrustChange{
			Key:   k,
			Name:  npc.Name,
			Role:  npc.Role,
			Delta: npc.Trust - before,
			From:  from,
			To:    TierFor(npc.Trust),
		})
	}
	return changes
}

// TierFor maps a trust value onto its tier. Lower bounds are inclusive.
func TierFor(trust int) config.TrustTier {
	tier := config.TrustTiers[0]
	for _, t := range config.TrustTiers {
		if trust >= t.Min {
			tier = t
		}
	}
	return tier
}

// Clone returns a deep copy.
func (b *Book) Clone() *Book {
	c := NewBook()
	for k, npc := range b.NPCs {
		cp := *npc
		c.NPCs[k] = &cp
	}
	return c
}
