package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Balance is every tunable number of the simulation. The zero value is not
// usable; start from DefaultBalance and overlay a YAML file with LoadBalance.
type Balance struct {
	StartingCash        float64 `yaml:"starting_cash" json:"starting_cash"`
	StartingReputation  int     `yaml:"starting_reputation" json:"starting_reputation"`
	WinCash             float64 `yaml:"win_cash" json:"win_cash"`
	BankruptcyFloor     float64 `yaml:"bankruptcy_floor" json:"bankruptcy_floor"`
	DaysUntilBankruptcy int     `yaml:"days_until_bankruptcy" json:"days_until_bankruptcy"`
	SeasonLength        int     `yaml:"season_length" json:"season_length"` // 0 = open-ended
	InventoryValuePerLb float64 `yaml:"inventory_value_per_lb" json:"inventory_value_per_lb"`

	Pricing  PricingBalance  `yaml:"pricing" json:"pricing"`
	Tank     TankBalance     `yaml:"tank" json:"tank"`
	Trust    TrustBalance    `yaml:"trust" json:"trust"`
	Rep      RepBalance      `yaml:"reputation" json:"reputation"`
	Finance  FinanceBalance  `yaml:"finance" json:"finance"`
	Supply   SupplyBalance   `yaml:"supply" json:"supply"`
	Weather  WeatherBalance  `yaml:"weather" json:"weather"`
	Rivals   RivalBalance    `yaml:"rivals" json:"rivals"`
	Events   EventBalance    `yaml:"events" json:"events"`
	Contract ContractBalance `yaml:"contracts" json:"contracts"`
}

type PricingBalance struct {
	BasePrice    float64 `yaml:"base_price" json:"base_price"`
	BuyNoiseMin  float64 `yaml:"buy_noise_min" json:"buy_noise_min"`
	BuyNoiseMax  float64 `yaml:"buy_noise_max" json:"buy_noise_max"`
	SellNoiseMin float64 `yaml:"sell_noise_min" json:"sell_noise_min"`
	SellNoiseMax float64 `yaml:"sell_noise_max" json:"sell_noise_max"`
	BuyTrendStep float64 `yaml:"buy_trend_step" json:"buy_trend_step"`
	SellTrend    float64 `yaml:"sell_trend_step" json:"sell_trend_step"`
	TouristBoost float64 `yaml:"tourist_summer_boost" json:"tourist_summer_boost"`
	WealthyRain  float64 `yaml:"wealthy_rain_cushion" json:"wealthy_rain_cushion"`
	MinPrice     float64 `yaml:"min_price" json:"min_price"`
}

type TankBalance struct {
	BaseCapacity      int     `yaml:"base_capacity" json:"base_capacity"`
	BaseMortality     float64 `yaml:"base_mortality" json:"base_mortality"`
	DecayRateMin      float64 `yaml:"decay_rate_min" json:"decay_rate_min"`
	DecayRateMax      float64 `yaml:"decay_rate_max" json:"decay_rate_max"`
	MortalityScale    float64 `yaml:"mortality_scale" json:"mortality_scale"`
	CriticalFreshness float64 `yaml:"critical_freshness" json:"critical_freshness"`
	RotFraction       float64 `yaml:"rot_fraction" json:"rot_fraction"`
	DiscountFloor     float64 `yaml:"freshness_discount_floor" json:"freshness_discount_floor"`
}

type TrustBalance struct {
	InteractBase    int `yaml:"interact_base" json:"interact_base"`
	VolumeThreshold int `yaml:"volume_threshold" json:"volume_threshold"`
	StreakDays      int `yaml:"streak_days" json:"streak_days"`
	StreakBonus     int `yaml:"streak_bonus" json:"streak_bonus"`
	AbsentDecay     int `yaml:"absent_decay" json:"absent_decay"`
	ContractMiss    int `yaml:"contract_miss" json:"contract_miss"`
}

type RepBalance struct {
	ActivityGain      int     `yaml:"activity_gain" json:"activity_gain"`
	VolumePerPoint    int     `yaml:"volume_per_point" json:"volume_per_point"`
	VolumeCap         int     `yaml:"volume_cap" json:"volume_cap"`
	SpoilageThreshold float64 `yaml:"spoilage_threshold" json:"spoilage_threshold"`
	SpoilagePenalty   int     `yaml:"spoilage_penalty" json:"spoilage_penalty"`
}

type FinanceBalance struct {
	MinLoanCap          float64 `yaml:"min_loan_cap" json:"min_loan_cap"`
	LoanCashMultiple    float64 `yaml:"loan_cash_multiple" json:"loan_cash_multiple"`
	WeeklyInterest      float64 `yaml:"weekly_interest" json:"weekly_interest"`
	OperatingBase       float64 `yaml:"operating_base" json:"operating_base"`
	OperatingPerLb      float64 `yaml:"operating_per_lb" json:"operating_per_lb"`
	MaxTravelsPerDay    int     `yaml:"max_travels_per_day" json:"max_travels_per_day"`
	ContractShortfallPc float64 `yaml:"contract_shortfall_penalty" json:"contract_shortfall_penalty"`
}

type SupplyBalance struct {
	BaseMaxBoats  int     `yaml:"base_max_boats" json:"base_max_boats"`
	BaseBuyers    int     `yaml:"base_buyers" json:"base_buyers"`
	BaselineGrade Grade   `yaml:"baseline_grade" json:"baseline_grade"`
	GradeSelectLo float64 `yaml:"grade_select_lo" json:"grade_select_lo"`
	GradeSelectHi float64 `yaml:"grade_select_hi" json:"grade_select_hi"`
	GradeQuartLo  float64 `yaml:"grade_quarter_lo" json:"grade_quarter_lo"`
	GradeQuartHi  float64 `yaml:"grade_quarter_hi" json:"grade_quarter_hi"`
}

type WeatherBalance struct {
	Persistence float64 `yaml:"persistence" json:"persistence"`
	FrontScale  float64 `yaml:"front_scale" json:"front_scale"`
	TrendDown   float64 `yaml:"trend_down" json:"trend_down"`
	TrendFlat   float64 `yaml:"trend_flat" json:"trend_flat"`
}

type RivalBalance struct {
	ActChance     float64 `yaml:"act_chance" json:"act_chance"`
	MinCash       float64 `yaml:"min_cash" json:"min_cash"`
	SellThreshold int     `yaml:"sell_threshold" json:"sell_threshold"`
	SellPriceMin  float64 `yaml:"sell_price_min" json:"sell_price_min"`
	SellPriceMax  float64 `yaml:"sell_price_max" json:"sell_price_max"`
	GoodDealPrice float64 `yaml:"good_deal_price" json:"good_deal_price"`
}

type EventBalance struct {
	Enabled           bool    `yaml:"enabled" json:"enabled"`
	SecondEventChance float64 `yaml:"second_event_chance" json:"second_event_chance"`
}

type ContractBalance struct {
	StandardChance float64 `yaml:"standard_chance" json:"standard_chance"`
	PremiumChance  float64 `yaml:"premium_chance" json:"premium_chance"`
	StandardMod    float64 `yaml:"standard_price_mod" json:"standard_price_mod"`
	CompletionRep  int     `yaml:"completion_trust" json:"completion_trust"`
}

// DefaultBalance returns the shipped game balance.
func DefaultBalance() Balance {
	return Balance{
		StartingCash:        5000,
		StartingReputation:  50,
		WinCash:             100000,
		BankruptcyFloor:     -5000,
		DaysUntilBankruptcy: 3,
		SeasonLength:        30,
		InventoryValuePerLb: 3,
		Pricing: PricingBalance{
			BasePrice:    4.50,
			BuyNoiseMin:  -0.50,
			BuyNoiseMax:  0.50,
			SellNoiseMin: -0.30,
			SellNoiseMax: 0.50,
			BuyTrendStep: 0.10,
			SellTrend:    0.15,
			TouristBoost: 1.15,
			WealthyRain:  1.05,
			MinPrice:     0.01,
		},
		Tank: TankBalance{
			BaseCapacity:      500,
			BaseMortality:     0.05,
			DecayRateMin:      8,
			DecayRateMax:      14,
			MortalityScale:    2,
			CriticalFreshness: 10,
			RotFraction:       0.30,
			DiscountFloor:     0.7,
		},
		Trust: TrustBalance{
			InteractBase:    2,
			VolumeThreshold: 50,
			StreakDays:      3,
			StreakBonus:     2,
			AbsentDecay:     1,
			ContractMiss:    20,
		},
		Rep: RepBalance{
			ActivityGain:      1,
			VolumePerPoint:    100,
			VolumeCap:         5,
			SpoilageThreshold: 0.10,
			SpoilagePenalty:   3,
		},
		Finance: FinanceBalance{
			MinLoanCap:          5000,
			LoanCashMultiple:    2,
			WeeklyInterest:      0.05,
			OperatingBase:       50,
			OperatingPerLb:      0.05,
			MaxTravelsPerDay:    2,
			ContractShortfallPc: 0.5,
		},
		Supply: SupplyBalance{
			BaseMaxBoats:  1,
			BaseBuyers:    2,
			BaselineGrade: GradeQuarter,
			GradeSelectLo: 0.20,
			GradeSelectHi: 0.30,
			GradeQuartLo:  0.45,
			GradeQuartHi:  0.55,
		},
		Weather: WeatherBalance{
			Persistence: 1.5,
			FrontScale:  0.5,
			TrendDown:   0.3,
			TrendFlat:   0.7,
		},
		Rivals: RivalBalance{
			ActChance:     0.4,
			MinCash:       200,
			SellThreshold: 50,
			SellPriceMin:  5.5,
			SellPriceMax:  7.5,
			GoodDealPrice: 4.50,
		},
		Events: EventBalance{
			Enabled:           true,
			SecondEventChance: 0.5,
		},
		Contract: ContractBalance{
			StandardChance: 0.5,
			PremiumChance:  0.4,
			StandardMod:    0.95,
			CompletionRep:  2,
		},
	}
}

// LoadBalance overlays the YAML file at path onto DefaultBalance.
// An empty path returns the defaults.
func LoadBalance(path string) (Balance, error) {
	b := DefaultBalance()
	if path == "" {
		return b, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Balance{}, fmt.Errorf("read balance: %w", err)
	}
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return Balance{}, fmt.Errorf("parse balance %s: %w", path, err)
	}
	if err := b.Validate(); err != nil {
		return Balance{}, fmt.Errorf("balance %s: %w", path, err)
	}
	return b, nil
}

// Validate rejects balance sheets the engine cannot run with.
func (b Balance) Validate() error {
	var errs []error
	if b.StartingCash < 0 {
		errs = append(errs, errors.New("starting_cash must be >= 0"))
	}
	if b.Pricing.BasePrice <= 0 {
		errs = append(errs, errors.New("pricing.base_price must be > 0"))
	}
	if b.Pricing.BuyNoiseMin > b.Pricing.BuyNoiseMax || b.Pricing.SellNoiseMin > b.Pricing.SellNoiseMax {
		errs = append(errs, errors.New("pricing noise ranges must have min <= max"))
	}
	if b.Tank.BaseCapacity <= 0 {
		errs = append(errs, errors.New("tank.base_capacity must be > 0"))
	}
	if b.Tank.BaseMortality < 0 || b.Tank.BaseMortality >= 1 {
		errs = append(errs, errors.New("tank.base_mortality must be in [0,1)"))
	}
	if b.Tank.DecayRateMin < 0 || b.Tank.DecayRateMin > b.Tank.DecayRateMax {
		errs = append(errs, errors.New("tank decay range invalid"))
	}
	if b.Tank.RotFraction < 0 || b.Tank.RotFraction > 1 {
		errs = append(errs, errors.New("tank.rot_fraction must be in [0,1]"))
	}
	if b.DaysUntilBankruptcy < 1 {
		errs = append(errs, errors.New("days_until_bankruptcy must be >= 1"))
	}
	if b.Trust.VolumeThreshold <= 0 || b.Rep.VolumePerPoint <= 0 {
		errs = append(errs, errors.New("volume thresholds must be > 0"))
	}
	if _, ok := GradeData(b.Supply.BaselineGrade); !ok {
		errs = append(errs, fmt.Errorf("supply.baseline_grade %q unknown", b.Supply.BaselineGrade))
	}
	if b.Supply.GradeSelectHi+b.Supply.GradeQuartHi > 1 {
		errs = append(errs, errors.New("grading split exceeds 100%"))
	}
	return errors.Join(errs...)
}
