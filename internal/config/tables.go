// Package config holds the static game tables and the tunable balance sheet.
// Every other package reads from here; nothing here depends on game state.
package config

// ── Seasons ───────────────────────────────────────────────────────────

// Season is one 30-day block of the 120-day fishing year.
type Season string

const (
	Summer Season = "Summer"
	Fall   Season = "Fall"
	Winter Season = "Winter"
	Spring Season = "Spring"
)

// SeasonInfo carries the price and supply modifiers for a season.
type SeasonInfo struct {
	Name       Season
	BuyMod     float64
	SellMod    float64
	BoatChance float64
}

// Seasons in calendar order, starting with the day-1 season.
var Seasons = []SeasonInfo{
	{Name: Summer, BuyMod: 1.15, SellMod: 1.25, BoatChance: 0.9},
	{Name: Fall, BuyMod: 1.0, SellMod: 1.0, BoatChance: 0.8},
	{Name: Winter, BuyMod: 0.8, SellMod: 0.9, BoatChance: 0.5},
	{Name: Spring, BuyMod: 0.95, SellMod: 1.1, BoatChance: 0.75},
}

const (
	DaysPerSeason = 30
	DaysPerYear   = DaysPerSeason * 4
)

// SeasonForDay maps a day number onto the 120-day cycle.
func SeasonForDay(day int) Season {
	d := day % DaysPerYear
	if d < 0 {
		d += DaysPerYear
	}
	return Seasons[d/DaysPerSeason].Name
}

// SeasonData returns the modifiers for a season, falling back to Fall.
func SeasonData(s Season) SeasonInfo {
	for _, info := range Seasons {
		if info.Name == s {
			return info
		}
	}
	return Seasons[1]
}

// ── Weather ───────────────────────────────────────────────────────────

// Weather is a daily sea condition.
type Weather string

const (
	Sunny  Weather = "sunny"
	Cloudy Weather = "cloudy"
	Rainy  Weather = "rainy"
	Stormy Weather = "stormy"
	Foggy  Weather = "foggy"
)

// WeatherInfo carries how a weather kind shifts supply, demand and price.
type WeatherInfo struct {
	Kind     Weather
	Name     string
	BoatMod  float64
	BuyerMod float64
	PriceMod float64
}

// WeatherKinds lists every weather kind in roll order.
var WeatherKinds = []WeatherInfo{
	{Kind: Sunny, Name: "Sunny", BoatMod: 1.0, BuyerMod: 1.0, PriceMod: 1.0},
	{Kind: Cloudy, Name: "Cloudy", BoatMod: 0.9, BuyerMod: 0.9, PriceMod: 1.0},
	{Kind: Rainy, Name: "Rainy", BoatMod: 0.7, BuyerMod: 0.7, PriceMod: 1.1},
	{Kind: Stormy, Name: "Stormy", BoatMod: 0.0, BuyerMod: 0.5, PriceMod: 1.3},
	{Kind: Foggy, Name: "Foggy", BoatMod: 0.4, BuyerMod: 0.8, PriceMod: 1.05},
}

// WeatherWeights are the per-season roll weights, indexed like WeatherKinds.
var WeatherWeights = map[Season][]float64{
	Summer: {50, 30, 15, 3, 2},
	Fall:   {30, 35, 25, 5, 5},
	Winter: {20, 30, 20, 15, 15},
	Spring: {35, 30, 25, 5, 5},
}

// WeatherData returns the modifiers for a weather kind, falling back to sunny.
func WeatherData(w Weather) WeatherInfo {
	for _, info := range WeatherKinds {
		if info.Kind == w {
			return info
		}
	}
	return WeatherKinds[0]
}

// ── Grades ────────────────────────────────────────────────────────────

// Grade is a quality bucket for inventory.
type Grade string

const (
	GradeSelect  Grade = "select"
	GradeQuarter Grade = "quarter"
	GradeChix    Grade = "chix"
	GradeRun     Grade = "run" // ungraded boat-run stock
)

// GradeInfo carries the relative buy and sell multipliers of a grade.
type GradeInfo struct {
	Grade   Grade
	Name    string
	BuyMod  float64
	SellMod float64
}

// Grades in preference order, best first.
var Grades = []GradeInfo{
	{Grade: GradeSelect, Name: "Select", BuyMod: 1.2, SellMod: 1.4},
	{Grade: GradeQuarter, Name: "Quarter", BuyMod: 1.0, SellMod: 1.0},
	{Grade: GradeChix, Name: "Chix", BuyMod: 0.85, SellMod: 0.7},
	{Grade: GradeRun, Name: "Ungraded", BuyMod: 1.0, SellMod: 0.9},
}

// GradeData returns the table row for g and whether it exists.
func GradeData(g Grade) (GradeInfo, bool) {
	for _, info := range Grades {
		if info.Grade == g {
			return info, true
		}
	}
	return GradeInfo{}, false
}

// GradeRank orders grades best-first; unknown grades sort last.
func GradeRank(g Grade) int {
	for i, info := range Grades {
		if info.Grade == g {
			return i
		}
	}
	return len(Grades)
}

// ── Towns ─────────────────────────────────────────────────────────────

// TownID identifies a harbor town.
type TownID string

// Trait is a town characteristic that bends pricing or demand.
type Trait string

const (
	TraitFishingHub   Trait = "fishing_hub"
	TraitRemote       Trait = "remote"
	TraitWorkingClass Trait = "working_class"
	TraitTourist      Trait = "tourist"
	TraitWealthy      Trait = "wealthy"
	TraitCity         Trait = "city"
	TraitHighVolume   Trait = "high_volume"
	TraitSeasonal     Trait = "seasonal"
	TraitPremium      Trait = "premium"
	TraitExclusive    Trait = "exclusive"
)

// Town is a static location row.
type Town struct {
	ID          TownID
	Name        string
	Description string
	BuyMod      float64
	SellMod     float64
	BoatBonus   int
	BuyerBonus  int
	TravelCost  float64
	Traits      []Trait
	MinRepTier  int // index into RepTiers
}

// HasTrait reports whether the town carries t.
func (t Town) HasTrait(trait Trait) bool {
	for _, tr := range t.Traits {
		if tr == trait {
			return true
		}
	}
	return false
}

const StartingTown TownID = "stonington"

// Towns along the coast, west to east is not implied.
var Towns = []Town{
	{ID: "stonington", Name: "Stonington", Description: "Remote fishing village, cheapest lobster",
		BuyMod: 0.80, SellMod: 0.85, BoatBonus: 2, BuyerBonus: -1, TravelCost: 0,
		Traits: []Trait{TraitFishingHub, TraitRemote}},
	{ID: "rockland", Name: "Rockland", Description: "Working harbor, good supply and fair prices",
		BuyMod: 0.90, SellMod: 0.95, BoatBonus: 1, BuyerBonus: 0, TravelCost: 100,
		Traits: []Trait{TraitFishingHub, TraitWorkingClass}},
	{ID: "camden", Name: "Camden", Description: "Wealthy yacht town with premium buyers",
		BuyMod: 1.10, SellMod: 1.20, BoatBonus: 0, BuyerBonus: 0, TravelCost: 150,
		Traits: []Trait{TraitTourist, TraitWealthy}, MinRepTier: 1},
	{ID: "portland", Name: "Portland", Description: "Big city, high volume and competitive prices",
		BuyMod: 1.00, SellMod: 1.05, BoatBonus: 1, BuyerBonus: 1, TravelCost: 200,
		Traits: []Trait{TraitCity, TraitHighVolume}, MinRepTier: 1},
	{ID: "boothbay", Name: "Boothbay Harbor", Description: "Tourist destination with seasonal demand",
		BuyMod: 1.05, SellMod: 1.15, BoatBonus: 0, BuyerBonus: 0, TravelCost: 150,
		Traits: []Trait{TraitTourist, TraitSeasonal}, MinRepTier: 1},
	{ID: "barHarbor", Name: "Bar Harbor", Description: "Acadia tourists pay the highest prices",
		BuyMod: 1.20, SellMod: 1.40, BoatBonus: -1, BuyerBonus: 2, TravelCost: 250,
		Traits: []Trait{TraitTourist, TraitPremium, TraitRemote}, MinRepTier: 2},
	{ID: "kennebunkport", Name: "Kennebunkport", Description: "Old money buyers",
		BuyMod: 1.15, SellMod: 1.30, BoatBonus: 0, BuyerBonus: 1, TravelCost: 250,
		Traits: []Trait{TraitWealthy, TraitExclusive}, MinRepTier: 3},
}

// TownByID looks up a town row.
func TownByID(id TownID) (Town, bool) {
	for _, t := range Towns {
		if t.ID == id {
			return t, true
		}
	}
	return Town{}, false
}

// ── Equipment ─────────────────────────────────────────────────────────

// EquipmentID identifies a purchasable upgrade.
type EquipmentID string

const (
	LargeTank         EquipmentID = "largeTank"
	IndustrialTank    EquipmentID = "industrialTank"
	Filtration        EquipmentID = "filtration"
	Chiller           EquipmentID = "chiller"
	DeliveryVan       EquipmentID = "deliveryVan"
	RefrigeratedTruck EquipmentID = "refrigeratedTruck"
	DockRunner        EquipmentID = "dockRunner"
	Scale             EquipmentID = "scale"
	GradingTable      EquipmentID = "gradingTable"
	BandingStation    EquipmentID = "bandingStation"
)

// Effects is the closed set of effect slots an upgrade can contribute to.
// Zero means "no contribution" for every slot.
type Effects struct {
	CapacityBonus     int     // max
	ExtraBoats        int     // max
	TransactionBonus  float64 // max
	DeliveryBonus     float64 // max
	MortalityRate     float64 // min over contributors, replaces the base rate
	FreshnessDecayMod float64 // min over contributors, multiplies lot decay

	ContractsEnabled  bool
	PremiumContracts  bool
	TravelEnabled     bool
	GradingEnabled    bool
	RestaurantEnabled bool
}

// Equipment is one shop row.
type Equipment struct {
	ID          EquipmentID
	Name        string
	Category    string
	Cost        float64
	Description string
	Requires    EquipmentID
	Effects     Effects
}

// EquipmentList is the shop catalogue in display order.
var EquipmentList = []Equipment{
	{ID: LargeTank, Name: "Large Tank", Category: "tanks", Cost: 3000,
		Description: "Increases capacity to 800 lbs", Effects: Effects{CapacityBonus: 300}},
	{ID: IndustrialTank, Name: "Industrial Tank", Category: "tanks", Cost: 8000, Requires: LargeTank,
		Description: "Increases capacity to 1,500 lbs", Effects: Effects{CapacityBonus: 1000}},
	{ID: Filtration, Name: "Filtration System", Category: "tanks", Cost: 2000,
		Description: "Reduces daily mortality to 2%", Effects: Effects{MortalityRate: 0.02}},
	{ID: Chiller, Name: "Chiller Unit", Category: "tanks", Cost: 4000, Requires: Filtration,
		Description: "Mortality 0.5%, halves freshness decay", Effects: Effects{MortalityRate: 0.005, FreshnessDecayMod: 0.5}},
	{ID: DeliveryVan, Name: "Delivery Van", Category: "vehicles", Cost: 5000,
		Description: "Travel between towns, contracts, +15% delivery sales",
		Effects:     Effects{ContractsEnabled: true, TravelEnabled: true, DeliveryBonus: 0.15}},
	{ID: RefrigeratedTruck, Name: "Refrigerated Truck", Category: "vehicles", Cost: 12000, Requires: DeliveryVan,
		Description: "Premium contracts, +25% delivery sales", Effects: Effects{PremiumContracts: true, DeliveryBonus: 0.25}},
	{ID: DockRunner, Name: "Dock Runner", Category: "vehicles", Cost: 3500,
		Description: "One more boat slot per day", Effects: Effects{ExtraBoats: 1}},
	{ID: Scale, Name: "Commercial Scale", Category: "processing", Cost: 800,
		Description: "+5% on all sales", Effects: Effects{TransactionBonus: 0.05}},
	{ID: GradingTable, Name: "Grading Table", Category: "processing", Cost: 1500,
		Description: "Grade purchases into select, quarter and chix", Effects: Effects{GradingEnabled: true}},
	{ID: BandingStation, Name: "Banding Station", Category: "processing", Cost: 600,
		Description: "Required for restaurant sales", Effects: Effects{RestaurantEnabled: true}},
}

// EquipmentByID looks up a shop row.
func EquipmentByID(id EquipmentID) (Equipment, bool) {
	for _, e := range EquipmentList {
		if e.ID == id {
			return e, true
		}
	}
	return Equipment{}, false
}

// ── Boats & captains ──────────────────────────────────────────────────

// BoatType shapes catch size, offer lifetime and quality.
type BoatType struct {
	ID          string
	Name        string
	CatchMin    int
	CatchMax    int
	TimerSecs   float64
	QualityBias float64 // fractional price shift for better/worse catch
	Weight      float64
}

var BoatTypes = []BoatType{
	{ID: "skiff", Name: "Skiff", CatchMin: 40, CatchMax: 120, TimerSecs: 40, QualityBias: -0.05, Weight: 4},
	{ID: "lobsterBoat", Name: "Lobster Boat", CatchMin: 80, CatchMax: 220, TimerSecs: 60, QualityBias: 0, Weight: 5},
	{ID: "offshore", Name: "Offshore Dragger", CatchMin: 180, CatchMax: 320, TimerSecs: 90, QualityBias: 0.08, Weight: 1},
}

// Captain is a recurring seller identity.
type Captain struct {
	Name          string
	CatchModifier float64
	PriceVariance float64
}

var Captains = []Captain{
	{Name: "Cap'n Joe", CatchModifier: 1.0, PriceVariance: 0.05},
	{Name: "Old Pete", CatchModifier: 0.9, PriceVariance: 0.04},
	{Name: "Sarah Mae", CatchModifier: 1.1, PriceVariance: 0.08},
	{Name: "Big Mike", CatchModifier: 1.25, PriceVariance: 0.12},
	{Name: "Tommy Two-Traps", CatchModifier: 0.85, PriceVariance: 0.06},
	{Name: "Weathered Walt", CatchModifier: 1.05, PriceVariance: 0.1},
	{Name: "Lucky Lucy", CatchModifier: 1.15, PriceVariance: 0.15},
	{Name: "Salty Sam", CatchModifier: 0.95, PriceVariance: 0.07},
	{Name: "Iron Jim", CatchModifier: 1.2, PriceVariance: 0.09},
	{Name: "Young Ben", CatchModifier: 0.9, PriceVariance: 0.11},
}

var BoatNames = []string{
	"Mary Lou", "Downeast Dreamer", "Lucky Catch", "Sea Spray",
	"Morning Star", "Old Salt", "Coastal Runner", "Tide Rider",
	"Harbor Queen", "Misty Morning", "Wave Dancer", "Salty Dog",
	"Blue Horizon", "Lobster Lady", "Captain's Pride", "Sea Breeze",
}

// ── Buyers ────────────────────────────────────────────────────────────

// BuyerKind classifies demand.
type BuyerKind string

const (
	BuyerWholesaler BuyerKind = "wholesaler"
	BuyerBudget     BuyerKind = "budget"
	BuyerRestaurant BuyerKind = "restaurant"
	BuyerSpecial    BuyerKind = "special"
)

// BuyerType is the template a buyer offer is rolled from.
type BuyerType struct {
	Kind           BuyerKind
	MinRepTier     int
	Accepts        []Grade // preference order, best first
	PriceGrade     Grade
	PriceMod       float64
	WantMin        int
	WantMax        int
	Weight         float64
	RunIfUngraded  bool // accept ungraded stock while the player cannot grade
	NeedsEquipment EquipmentID
	Names          []string
}

var BuyerTypes = []BuyerType{
	{Kind: BuyerWholesaler, Accepts: []Grade{GradeSelect, GradeQuarter, GradeChix, GradeRun},
		PriceGrade: GradeChix, PriceMod: 1.0, WantMin: 80, WantMax: 200,
		Names: []string{"Portland Seafood Co.", "Maine Coast Dist.", "Atlantic Fresh", "NE Wholesale"}},
	{Kind: BuyerBudget, Accepts: []Grade{GradeChix, GradeRun},
		PriceGrade: GradeChix, PriceMod: 0.9, WantMin: 20, WantMax: 60, Weight: 2,
		Names: []string{"Local Market", "Seafood Co-op", "Church Supper", "Roadside Stand"}},
	{Kind: BuyerRestaurant, MinRepTier: 1, Accepts: []Grade{GradeSelect, GradeQuarter},
		PriceGrade: GradeQuarter, PriceMod: 1.0, WantMin: 15, WantMax: 40, Weight: 3,
		RunIfUngraded: true, NeedsEquipment: BandingStation,
		Names: []string{"Harbor Bistro", "The Clam Shack", "Oceanview Grill", "Pier 7", "Captain's Table"}},
	{Kind: BuyerSpecial, MinRepTier: 2, Accepts: []Grade{GradeSelect},
		PriceGrade: GradeSelect, PriceMod: 1.0, WantMin: 30, WantMax: 80, Weight: 2,
		RunIfUngraded: true,
		Names:         []string{"Tourist Group", "Private Yacht", "Wedding Caterer", "Food Festival"}},
}

// BuyerTypeFor looks up a buyer template.
func BuyerTypeFor(kind BuyerKind) (BuyerType, bool) {
	for _, bt := range BuyerTypes {
		if bt.Kind == kind {
			return bt, true
		}
	}
	return BuyerType{}, false
}

// ── Reputation & trust ────────────────────────────────────────────────

// RepTier is one rung of the player's reputation ladder.
type RepTier struct {
	Index int
	Name  string
	Min   int
}

var RepTiers = []RepTier{
	{Index: 0, Name: "Newcomer", Min: 0},
	{Index: 1, Name: "Known Dealer", Min: 40},
	{Index: 2, Name: "Respected", Min: 80},
	{Index: 3, Name: "Trusted", Min: 140},
	{Index: 4, Name: "Legendary", Min: 220},
}

// TrustTier is one step of the per-NPC trust function.
type TrustTier struct {
	Name    string
	Min     int
	BuyMod  float64
	SellMod float64
}

// TrustTiers ascend by Min; lower bounds are inclusive.
var TrustTiers = []TrustTier{
	{Name: "cold", Min: -100, BuyMod: 1.10, SellMod: 0.90},
	{Name: "neutral", Min: -25, BuyMod: 1.0, SellMod: 1.0},
	{Name: "warm", Min: 25, BuyMod: 0.95, SellMod: 1.05},
	{Name: "preferred", Min: 60, BuyMod: 0.90, SellMod: 1.10},
}

// ── Rivals ────────────────────────────────────────────────────────────

// Personality drives how a rival bids.
type Personality string

const (
	Aggressive   Personality = "aggressive"
	Conservative Personality = "conservative"
	Chaotic      Personality = "chaotic"
)

// Rival is a competing dealer template.
type Rival struct {
	ID           string
	Name         string
	Personality  Personality
	StartingCash float64
	BidStyle     float64
	Urgency      float64
	Taunts       []string
}

var Rivals = []Rival{
	{ID: "slickRick", Name: "Slick Rick", Personality: Aggressive, StartingCash: 6000, BidStyle: 1.15, Urgency: 0.8,
		Taunts: []string{"Too slow there, friend!", "You snooze, you lose!"}},
	{ID: "prudentPenny", Name: "Prudent Penny", Personality: Conservative, StartingCash: 8000, BidStyle: 0.95, Urgency: 0.3,
		Taunts: []string{"The numbers don't lie, dear.", "Patience wins the race."}},
	{ID: "crazyCarl", Name: "Crazy Carl", Personality: Chaotic, StartingCash: 4000, BidStyle: 1.0,
		Taunts: []string{"LOBSTERS! I NEED 'EM ALL!", "You can't predict CRAZY!"}},
}

// ── Goals, prestige, retirement ───────────────────────────────────────

// GoalTier ranks an end-of-season cash total.
type GoalTier struct {
	Cash  float64
	Title string
	Stars int
}

var GoalTiers = []GoalTier{
	{Cash: 10000, Title: "Dock Hand", Stars: 1},
	{Cash: 25000, Title: "Junior Dealer", Stars: 2},
	{Cash: 50000, Title: "Established Dealer", Stars: 3},
	{Cash: 100000, Title: "Lobster Tycoon", Stars: 4},
	{Cash: 250000, Title: "Lobster Legend", Stars: 5},
}

// PrestigeBonus names what a prestige level grants.
type PrestigeBonus string

const (
	BonusStartingCash       PrestigeBonus = "startingCash"
	BonusStartingReputation PrestigeBonus = "startingReputation"
	BonusPrice              PrestigeBonus = "priceBonus"
	BonusStartingEquipment  PrestigeBonus = "startingEquipment"
	BonusAll                PrestigeBonus = "allBonuses"
)

// PrestigeReward unlocks once lifetime prestige reaches Level.
type PrestigeReward struct {
	Level  int
	Name   string
	Bonus  PrestigeBonus
	Amount float64
	Item   EquipmentID
}

var PrestigeRewards = []PrestigeReward{
	{Level: 1, Name: "Apprentice Dealer", Bonus: BonusStartingCash, Amount: 500},
	{Level: 2, Name: "Journeyman Dealer", Bonus: BonusStartingCash, Amount: 1000},
	{Level: 3, Name: "Expert Dealer", Bonus: BonusStartingReputation, Amount: 10},
	{Level: 5, Name: "Master Dealer", Bonus: BonusPrice, Amount: 0.05},
	{Level: 7, Name: "Lobster Tycoon", Bonus: BonusStartingEquipment, Item: Scale},
	{Level: 10, Name: "Lobster Baron", Bonus: BonusStartingCash, Amount: 5000},
	{Level: 15, Name: "Lobster Legend", Bonus: BonusAll, Amount: 1},
}

// RetirementOption ends a run in exchange for prestige.
type RetirementOption struct {
	ID          string
	Name        string
	Requirement float64
	Prestige    int
}

var RetirementOptions = []RetirementOption{
	{ID: "comfortable", Name: "Comfortable Retirement", Requirement: 50000, Prestige: 1},
	{ID: "wealthy", Name: "Wealthy Magnate", Requirement: 100000, Prestige: 2},
	{ID: "legendary", Name: "Living Legend", Requirement: 250000, Prestige: 5},
}
