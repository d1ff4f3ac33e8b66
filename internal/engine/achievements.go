package engine

import (
	"slices"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/social"
)

// Reward is what an achievement pays out when first unlocked.
type Reward struct {
	Cash       float64 `json:"cash,omitempty"`
	Reputation int     `json:"reputation,omitempty"`
	Prestige   int     `json:"prestige,omitempty"`
}

// Achievement is a one-time milestone. Unlocks persist across games, so
// each pays out once per legacy.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Reward      Reward
	done        func(s *State) bool
}

var Achievements = []Achievement{
	// Money
	{ID: "first_sale", Name: "First Sale", Description: "Sell your first lobster",
		Reward: Reward{Cash: 50}, done: func(s *State) bool { return s.Stats.TotalEarned > 0 }},
	{ID: "earned_1k", Name: "Getting Started", Description: "Earn $1,000 from sales",
		Reward: Reward{Cash: 100}, done: func(s *State) bool { return s.Stats.TotalEarned >= 1000 }},
	{ID: "earned_10k", Name: "Serious Business", Description: "Earn $10,000 from sales",
		Reward: Reward{Cash: 500}, done: func(s *State) bool { return s.Stats.TotalEarned >= 10000 }},
	{ID: "earned_50k", Name: "Big League", Description: "Earn $50,000 from sales",
		Reward: Reward{Cash: 2000}, done: func(s *State) bool { return s.Stats.TotalEarned >= 50000 }},

	// Trading
	{ID: "first_buy", Name: "First Catch", Description: "Buy your first lobster",
		Reward: Reward{Reputation: 5}, done: func(s *State) bool { return s.Stats.TotalBought > 0 }},
	{ID: "bought_1000", Name: "Bulk Buyer", Description: "Buy 1,000 lbs total",
		Reward: Reward{Cash: 300}, done: func(s *State) bool { return s.Stats.TotalBought >= 1000 }},
	{ID: "bought_10000", Name: "Lobster Baron", Description: "Buy 10,000 lbs total",
		Reward: Reward{Prestige: 1}, done: func(s *State) bool { return s.Stats.TotalBought >= 10000 }},

	// Quality
	{ID: "select_200", Name: "Quality Dealer", Description: "Sell 200 lbs of select",
		Reward: Reward{Reputation: 10}, done: func(s *State) bool { return s.Stats.SoldByGrade[config.GradeSelect] >= 200 }},
	{ID: "select_1000", Name: "Premium Only", Description: "Sell 1,000 lbs of select",
		Reward: Reward{Prestige: 1}, done: func(s *State) bool { return s.Stats.SoldByGrade[config.GradeSelect] >= 1000 }},

	// Contracts
	{ID: "first_contract", Name: "Handshake Deal", Description: "Complete your first contract",
		Reward: Reward{Reputation: 10}, done: func(s *State) bool { return s.Stats.ContractsCompleted >= 1 }},
	{ID: "contracts_20", Name: "Contract King", Description: "Complete 20 contracts",
		Reward: Reward{Prestige: 1}, done: func(s *State) bool { return s.Stats.ContractsCompleted >= 20 }},

	// Places and rivals
	{ID: "all_towns", Name: "Coast Explorer", Description: "Visit every town",
		Reward: Reward{Cash: 1000}, done: func(s *State) bool { return len(s.Stats.TownsVisited) >= len(config.Towns) }},
	{ID: "outbid_10", Name: "Rival Slayer", Description: "Beat rivals to 10 boats",
		Reward: Reward{Reputation: 15}, done: func(s *State) bool { return s.Stats.RivalsOutbid >= 10 }},
	{ID: "top_dog", Name: "Top Dog", Description: "Lead the dealer standings for 7 days",
		Reward: Reward{Prestige: 2}, done: func(s *State) bool { return s.Stats.DaysAtTop >= 7 }},

	// Survival
	{ID: "recovered", Name: "Survivor", Description: "Recover from negative net worth",
		Reward: Reward{Reputation: 20}, done: func(s *State) bool { return s.Stats.RecoveredDebt }},
	{ID: "loan_paid", Name: "Debt Free", Description: "Pay off a loan completely",
		Reward: Reward{Cash: 500}, done: func(s *State) bool { return s.Stats.LoansPaidOff > 0 }},

	// Relationships
	{ID: "friend_of_fishermen", Name: "Friend of Fishermen", Description: "Earn the trust of 3 captains",
		Reward: Reward{Reputation: 25}, done: func(s *State) bool { return loyalCaptains(s) >= 3 }},

	{ID: "day_100", Name: "Century Club", Description: "Survive 100 days",
		Reward: Reward{Prestige: 1}, done: func(s *State) bool { return s.Day >= 100 }},
}

// loyalCaptainTrust is the trust a captain needs to count as loyal.
const loyalCaptainTrust = 50

func loyalCaptains(s *State) int {
	if s.NPCs == nil {
		return 0
	}
	n := 0
	for _, npc := range s.NPCs.NPCs {
		if npc.Role == social.RoleSeller && npc.Trust >= loyalCaptainTrust {
			n++
		}
	}
	return n
}

// checkAchievements unlocks any milestone reached and pays its reward.
func (g *Game) checkAchievements() {
	for _, a := range Achievements {
		if slices.Contains(g.s.Achievements, a.ID) || !a.done(g.s) {
			continue
		}
		g.s.Achievements = append(g.s.Achievements, a.ID)
		if !slices.Contains(g.legacy.Achievements, a.ID) {
			g.legacy.Achievements = append(g.legacy.Achievements, a.ID)
		}

		r := a.Reward
		if r.Cash > 0 {
			g.s.Cash = economy.RoundCents(g.s.Cash + r.Cash)
		}
		if r.Reputation != 0 {
			g.reportReputation(g.s.Reputation.Adjust(r.Reputation))
		}
		g.legacy.Prestige += r.Prestige
		g.emit(CatAchievement, "Achievement unlocked: %s (%s)", a.Name, a.Description)
		g.log.Info("achievement", "id", a.ID, "day", g.s.Day)
	}
}

// AchievementByID looks up an achievement.
func AchievementByID(id string) (Achievement, bool) {
	i := slices.IndexFunc(Achievements, func(a Achievement) bool { return a.ID == id })
	if i < 0 {
		return Achievement{}, false
	}
	return Achievements[i], true
}
