package engine

import (
	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/social"
)

// maxEvents bounds the event log kept on the state.
const maxEvents = 1000

// Outcome is how a game ended. Empty while the game is running.
type Outcome string

const (
	OutcomeNone       Outcome = ""
	OutcomeWon        Outcome = "won"
	OutcomeBankrupt   Outcome = "bankrupt"
	OutcomeSeasonOver Outcome = "season_over"
	OutcomeRetired    Outcome = "retired"
)

// State is the complete game. It is plain data: every field survives a JSON
// round trip, which is all a save needs.
type State struct {
	Seed int64  `json:"seed"`
	RNG  []byte `json:"rng,omitempty"`

	// Calendar and conditions.
	Day             int            `json:"day"`
	Season          config.Season  `json:"season"`
	Weather         config.Weather `json:"weather"`
	TomorrowWeather config.Weather `json:"tomorrow_weather"`
	MarketTrend     int            `json:"market_trend"`

	// Money.
	Cash          float64 `json:"cash"`
	Debt          float64 `json:"debt"`
	DaysInTrouble int     `json:"days_in_trouble"`
	DailySpent    float64 `json:"daily_spent"`
	DailyEarned   float64 `json:"daily_earned"`
	DailyBought   int     `json:"daily_bought"`
	DailySold     int     `json:"daily_sold"`

	// Where the player is.
	Location     config.TownID   `json:"location"`
	VisitedToday []config.TownID `json:"visited_today"`
	TravelsToday int             `json:"travels_today"`

	// Stock and kit.
	Ledger            *economy.Ledger      `json:"ledger"`
	DayStartInventory int                  `json:"day_start_inventory"`
	Equipment         []config.EquipmentID `json:"equipment"`

	// Today's offers.
	Boats           []Boat     `json:"boats"`
	Buyers          []Buyer    `json:"buyers"`
	ContractOffers  []Contract `json:"contract_offers"`
	ActiveContracts []Contract `json:"active_contracts"`

	// Relationships.
	NPCs       *social.Book      `json:"npcs"`
	Reputation social.Reputation `json:"reputation"`
	Rivals     []RivalState      `json:"rivals"`
	Stories    Storylines        `json:"stories"`

	Stats        Stats    `json:"stats"`
	Achievements []string `json:"achievements"`
	PriceBonus   float64  `json:"price_bonus"`

	Outcome Outcome  `json:"outcome"`
	Summary *Summary `json:"summary,omitempty"`

	Events     []Event `json:"events"`
	EventCount int     `json:"event_count"` // events ever logged, trimmed or not
}

// Over reports whether the game has ended.
func (s *State) Over() bool {
	return s.Outcome != OutcomeNone
}

// Boat is a captain's catch on offer at the dock.
type Boat struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Captain     string   `json:"captain"`
	CatchAmount int      `json:"catch_amount"`
	PricePerLb  float64  `json:"price_per_lb"`
	TimeLeft    float64  `json:"time_left"` // seconds
	Day         int      `json:"day"`
	Interested  []string `json:"interested,omitempty"` // rival ids eyeing the catch
	Bonus       bool     `json:"bonus,omitempty"`
}

// Buyer is a standing order for lobster.
type Buyer struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Kind        config.BuyerKind   `json:"kind"`
	Accepts     []config.Grade     `json:"accepts"` // best first
	AcceptsRun  bool               `json:"accepts_run"`
	PriceGrade  config.Grade       `json:"price_grade"`
	WantsAmount int                `json:"wants_amount"`
	PricePerLb  float64            `json:"price_per_lb"`
	Needs       config.EquipmentID `json:"needs,omitempty"`
	WalkIn      bool               `json:"walk_in,omitempty"`
}

// Contract is a multi-week standing delivery agreement.
type Contract struct {
	ID             string       `json:"id"`
	Client         string       `json:"client"`
	Premium        bool         `json:"premium"`
	MinGrade       config.Grade `json:"min_grade"`
	AcceptsRun     bool         `json:"accepts_run"`
	PerWeek        int          `json:"per_week"`
	Weeks          int          `json:"weeks"`
	WeeksLeft      int          `json:"weeks_left"`
	PricePerLb     float64      `json:"price_per_lb"`
	DeliveredWeek  int          `json:"delivered_week"`
	DeliveredTotal int          `json:"delivered_total"`
}

// RivalState is a competing dealer's running tally.
type RivalState struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Personality config.Personality `json:"personality"`
	Cash        float64            `json:"cash"`
	Inventory   int                `json:"inventory"`
	BoatsWon    int                `json:"boats_won"`
}

// Stats are lifetime-of-game counters. They only ever grow, except the
// best/worst day marks which track extremes.
type Stats struct {
	TotalBought    int     `json:"total_bought"`
	TotalSold      int     `json:"total_sold"`
	TotalSpent     float64 `json:"total_spent"`
	TotalEarned    float64 `json:"total_earned"`
	LostToRivals   int     `json:"lost_to_rivals"`
	RivalsOutbid   int     `json:"rivals_outbid"`
	BoatsPassed    int     `json:"boats_passed"`
	MortalityLoss  int     `json:"mortality_loss"`
	RotLoss        int     `json:"rot_loss"`
	OperatingCosts float64 `json:"operating_costs"`

	SoldByGrade  map[config.Grade]int `json:"sold_by_grade"`
	CaptainDeals map[string]int       `json:"captain_deals"`
	BuyerSales   map[string]int       `json:"buyer_sales"`

	BestDay  float64 `json:"best_day"`
	WorstDay float64 `json:"worst_day"`

	LoansTaken      int     `json:"loans_taken"`
	LoansPaidOff    int     `json:"loans_paid_off"`
	InterestAccrued float64 `json:"interest_accrued"`
	WasInDebt       bool    `json:"was_in_debt"`
	RecoveredDebt   bool    `json:"recovered_debt"`

	ContractsCompleted int `json:"contracts_completed"`
	ContractsMissed    int `json:"contracts_missed"`

	TownsVisited []config.TownID `json:"towns_visited"`
	RandomEvents int             `json:"random_events"`
	DaysAtTop    int             `json:"days_at_top"`
}

// Summary is the scored end-of-game result.
type Summary struct {
	Outcome  Outcome          `json:"outcome"`
	Day      int              `json:"day"`
	Cash     float64          `json:"cash"`
	NetWorth float64          `json:"net_worth"`
	Goal     *config.GoalTier `json:"goal,omitempty"`
	Reason   string           `json:"reason"`
}

// Event is one line of the game's narrative log.
type Event struct {
	Seq      int    `json:"seq"` // 1-based position in the game's log
	Day      int    `json:"day"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Event categories.
const (
	CatTrade       = "trade"
	CatRejected    = "rejected"
	CatMarket      = "market"
	CatReputation  = "reputation"
	CatTrust       = "trust"
	CatFinance     = "finance"
	CatRival       = "rival"
	CatIncident    = "incident"
	CatContract    = "contract"
	CatAchievement = "achievement"
	CatTravel      = "travel"
	CatStory       = "story"
	CatGame        = "game"
)

func newStats() Stats {
	return Stats{
		SoldByGrade:  make(map[config.Grade]int),
		CaptainDeals: make(map[string]int),
		BuyerSales:   make(map[string]int),
	}
}

// clone returns a deep copy of the state.
func (s *State) clone() *State {
	c := *s
	c.RNG = append([]byte(nil), s.RNG...)
	c.VisitedToday = append([]config.TownID(nil), s.VisitedToday...)
	c.Ledger = s.Ledger.Clone()
	c.Equipment = append([]config.EquipmentID(nil), s.Equipment...)
	c.Boats = make([]Boat, len(s.Boats))
	for i, b := range s.Boats {
		b.Interested = append([]string(nil), b.Interested...)
		c.Boats[i] = b
	}
	c.Buyers = make([]Buyer, len(s.Buyers))
	for i, b := range s.Buyers {
		b.Accepts = append([]config.Grade(nil), b.Accepts...)
		c.Buyers[i] = b
	}
	c.ContractOffers = append([]Contract(nil), s.ContractOffers...)
	c.ActiveContracts = append([]Contract(nil), s.ActiveContracts...)
	c.NPCs = s.NPCs.Clone()
	c.Rivals = append([]RivalState(nil), s.Rivals...)
	c.Stories = s.Stories.clone()
	c.Achievements = append([]string(nil), s.Achievements...)
	c.Events = append([]Event(nil), s.Events...)
	if s.Summary != nil {
		sum := *s.Summary
		c.Summary = &sum
	}

	c.Stats = s.Stats
	c.Stats.SoldByGrade = copyMap(s.Stats.SoldByGrade)
	c.Stats.CaptainDeals = copyMap(s.Stats.CaptainDeals)
	c.Stats.BuyerSales = copyMap(s.Stats.BuyerSales)
	c.Stats.TownsVisited = append([]config.TownID(nil), s.Stats.TownsVisited...)
	return &c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
