package economy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/entropy"
)

func isCents(v float64) bool {
	return math.Abs(v*100-math.Round(v*100)) < 1e-6
}

func town(id config.TownID) config.Town {
	t, _ := config.TownByID(id)
	return t
}

func TestPricesStayInBoundsAndCents(t *testing.T) {
	p := NewPricer(config.DefaultBalance().Pricing)
	src := entropy.New(77)
	terms := SellTerms{TransactionBonus: 0.05}

	for _, season := range config.Seasons {
		for _, w := range config.WeatherKinds {
			for _, g := range config.Grades {
				for _, tier := range config.TrustTiers {
					for _, trend := range []int{-1, 0, 1} {
						m := Market{Season: season.Name, Weather: w.Kind, Town: town("camden"), Trend: trend}

						buy := p.BuyPrice(src, m, g.Grade, tier)
						lo, hi := p.BuyBounds(m, g.Grade, tier)
						require.True(t, isCents(buy), "buy %v", buy)
						require.GreaterOrEqual(t, buy, lo)
						require.LessOrEqual(t, buy, hi)

						sell := p.SellPrice(src, m, g.Grade, tier, terms)
						lo, hi = p.SellBounds(m, g.Grade, tier, terms)
						require.True(t, isCents(sell), "sell %v", sell)
						require.GreaterOrEqual(t, sell, lo)
						require.LessOrEqual(t, sell, hi)
						require.Positive(t, sell)
					}
				}
			}
		}
	}
}

func TestBuyBaseFormula(t *testing.T) {
	p := NewPricer(config.DefaultBalance().Pricing)
	m := Market{Season: config.Winter, Weather: config.Rainy, Town: town("stonington"), Trend: 1}
	neutral := config.TrustTiers[1]

	// 4.50 × 0.8 × 1.1 × 1.2 × 0.80 × 1.1
	want := 4.50 * 0.8 * 1.1 * 1.2 * 0.80 * 1.1
	assert.InDelta(t, want, p.BuyBase(m, config.GradeSelect, neutral), 1e-9)

	preferred := config.TrustTiers[3]
	assert.InDelta(t, want*0.9, p.BuyBase(m, config.GradeSelect, preferred), 1e-9)
}

func TestLocationSellModStacksTraits(t *testing.T) {
	p := NewPricer(config.DefaultBalance().Pricing)
	camden := town("camden") // tourist + wealthy

	summerRain := p.LocationSellMod(Market{Season: config.Summer, Weather: config.Rainy, Town: camden})
	assert.InDelta(t, 1.20*1.15*1.05, summerRain, 1e-9)

	fallSun := p.LocationSellMod(Market{Season: config.Fall, Weather: config.Sunny, Town: camden})
	assert.InDelta(t, 1.20, fallSun, 1e-9)

	rockland := p.LocationSellMod(Market{Season: config.Summer, Weather: config.Rainy, Town: town("rockland")})
	assert.InDelta(t, 0.95, rockland, 1e-9)
}

func TestSellTermsMultiply(t *testing.T) {
	p := NewPricer(config.DefaultBalance().Pricing)
	m := Market{Season: config.Fall, Weather: config.Sunny, Town: town("portland")}
	neutral := config.TrustTiers[1]

	plain := p.SellBase(m, config.GradeQuarter, neutral, SellTerms{})
	bonus := p.SellBase(m, config.GradeQuarter, neutral, SellTerms{TransactionBonus: 0.05, DeliveryBonus: 0.15})
	assert.InDelta(t, plain*1.05*1.15, bonus, 1e-9)
}

func TestMinPriceFloor(t *testing.T) {
	b := config.DefaultBalance().Pricing
	b.BasePrice = 0.01
	b.BuyNoiseMin, b.BuyNoiseMax = -1, -1
	p := NewPricer(b)
	m := Market{Season: config.Fall, Weather: config.Sunny, Town: town("rockland")}
	assert.Equal(t, 0.01, p.BuyPrice(entropy.New(1), m, config.GradeChix, config.TrustTiers[1]))
}

func TestFreshnessFactor(t *testing.T) {
	assert.InDelta(t, 1.0, FreshnessFactor(100, 0.7), 1e-9)
	assert.InDelta(t, 0.7, FreshnessFactor(0, 0.7), 1e-9)
	assert.InDelta(t, 0.85, FreshnessFactor(50, 0.7), 1e-9)
	assert.InDelta(t, 1.0, FreshnessFactor(150, 0.7), 1e-9)
}
