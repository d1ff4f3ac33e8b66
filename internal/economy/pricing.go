package economy

import (
	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/entropy"
)

// Market is the slice of game state a price depends on.
type Market struct {
	Season  config.Season
	Weather config.Weather
	Town    config.Town
	Trend   int // -1, 0, +1
}

// SellTerms are the player-side multipliers applied to a sell price.
type SellTerms struct {
	TransactionBonus float64 // best owned processing bonus
	DeliveryBonus    float64 // contracts only
	PriceBonus       float64 // prestige
}

// Pricer computes unit prices from a market and the balance sheet.
type Pricer struct {
	b config.PricingBalance
}

// NewPricer returns a pricer for the given balance.
func NewPricer(b config.PricingBalance) Pricer {
	return Pricer{b: b}
}

// LocationSellMod returns the town's sell modifier with its trait bonuses.
// Tourist towns pay more in Summer; wealthy towns shrug off rain. The two
// stack multiplicatively.
func (p Pricer) LocationSellMod(m Market) float64 {
	mod := m.Town.SellMod
	if m.Town.HasTrait(config.TraitTourist) && m.Season == config.Summer {
		mod *= p.b.TouristBoost
	}
	if m.Town.HasTrait(config.TraitWealthy) && m.Weather == config.Rainy {
		mod *= p.b.WealthyRain
	}
	return mod
}

// BuyBase is the noiseless buy price of grade.
func (p Pricer) BuyBase(m Market, grade config.Grade, trust config.TrustTier) float64 {
	g, _ := config.GradeData(grade)
	price := p.b.BasePrice
	price *= config.SeasonData(m.Season).BuyMod
	price *= config.WeatherData(m.Weather).PriceMod
	price *= g.BuyMod
	price *= m.Town.BuyMod
	price *= 1 + float64(m.Trend)*p.b.BuyTrendStep
	price *= trustMod(trust.BuyMod)
	return price
}

// SellBase is the noiseless sell price of grade.
func (p Pricer) SellBase(m Market, grade config.Grade, trust config.TrustTier, t SellTerms) float64 {
	g, _ := config.GradeData(grade)
	price := p.b.BasePrice
	price *= config.SeasonData(m.Season).SellMod
	price *= g.SellMod
	price *= p.LocationSellMod(m)
	price *= 1 + float64(m.Trend)*p.b.SellTrend
	price *= 1 + t.TransactionBonus
	price *= 1 + t.DeliveryBonus
	price *= 1 + t.PriceBonus
	price *= trustMod(trust.SellMod)
	return price
}

// BuyPrice draws one buy price: base plus uniform noise, rounded to cents.
func (p Pricer) BuyPrice(src *entropy.Source, m Market, grade config.Grade, trust config.TrustTier) float64 {
	return p.finish(p.BuyBase(m, grade, trust) + src.Float(p.b.BuyNoiseMin, p.b.BuyNoiseMax))
}

// SellPrice draws one sell price: base plus uniform noise, rounded to cents.
func (p Pricer) SellPrice(src *entropy.Source, m Market, grade config.Grade, trust config.TrustTier, t SellTerms) float64 {
	return p.finish(p.SellBase(m, grade, trust, t) + src.Float(p.b.SellNoiseMin, p.b.SellNoiseMax))
}

// Adjust scales an already drawn price and re-rounds it.
func (p Pricer) Adjust(price, factor float64) float64 {
	return p.finish(price * factor)
}

// BuyBounds returns the closed range every BuyPrice for these inputs falls in.
func (p Pricer) BuyBounds(m Market, grade config.Grade, trust config.TrustTier) (lo, hi float64) {
	base := p.BuyBase(m, grade, trust)
	return p.bounds(base+p.b.BuyNoiseMin, base+p.b.BuyNoiseMax)
}

// SellBounds returns the closed range every SellPrice for these inputs falls in.
func (p Pricer) SellBounds(m Market, grade config.Grade, trust config.TrustTier, t SellTerms) (lo, hi float64) {
	base := p.SellBase(m, grade, trust, t)
	return p.bounds(base+p.b.SellNoiseMin, base+p.b.SellNoiseMax)
}

func (p Pricer) bounds(lo, hi float64) (float64, float64) {
	return p.finish(lo), p.finish(hi)
}

func (p Pricer) finish(v float64) float64 {
	return RoundCents(max(v, p.b.MinPrice))
}

func trustMod(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// FreshnessFactor is the sell discount for stock at the given freshness:
// floor at zero freshness, full price at 100.
func FreshnessFactor(freshness, floor float64) float64 {
	f := Clamp(freshness, 0, 100) / 100
	return floor + (1-floor)*f
}
