// Package weather rolls the daily sea conditions and the market trend.
// Tomorrow's weather is drawn from season weights, nudged toward today's
// weather (Markov persistence) and toward wet weather when a storm front,
// a smooth simplex noise signal over days, is building.
package weather

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/entropy"
)

// frontFrequency controls how many days a front takes to build and clear.
const frontFrequency = 0.18

// Forecaster rolls weather. It keeps no mutable state of its own: the same
// seed, day and draw sequence always produce the same forecast.
type Forecaster struct {
	noise       opensimplex.Noise
	persistence float64
	frontScale  float64
}

// NewForecaster builds a forecaster whose fronts are fixed by seed.
func NewForecaster(seed int64, b config.WeatherBalance) *Forecaster {
	return &Forecaster{
		noise:       opensimplex.NewNormalized(seed),
		persistence: b.Persistence,
		frontScale:  b.FrontScale,
	}
}

// Front returns the storm-front pressure for a day in [0, 1].
func (f *Forecaster) Front(day int) float64 {
	v := f.noise.Eval2(float64(day)*frontFrequency, 0.5)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Weights returns tomorrow's roll weights, indexed like config.WeatherKinds.
func (f *Forecaster) Weights(season config.Season, today config.Weather, day int) []float64 {
	base := config.WeatherWeights[season]
	weights := make([]float64, len(config.WeatherKinds))
	front := f.Front(day + 1)
	wetMod := (1 - f.frontScale/2) + f.frontScale*front

	for i, info := range config.WeatherKinds {
		if i < len(base) {
			weights[i] = base[i]
		}
		switch info.Kind {
		case config.Rainy, config.Stormy, config.Foggy:
			weights[i] *= wetMod
		}
		if info.Kind == today {
			weights[i] *= f.persistence
		}
	}
	return weights
}

// Next rolls the weather for day+1 given today's weather on day.
func (f *Forecaster) Next(src *entropy.Source, season config.Season, today config.Weather, day int) config.Weather {
	idx := src.Weighted(f.Weights(season, today, day))
	if idx < 0 {
		return config.Sunny
	}
	return config.WeatherKinds[idx].Kind
}

// RollTrend draws the daily market trend: -1 falling, 0 stable, +1 rising.
func RollTrend(src *entropy.Source, b config.WeatherBalance) int {
	roll := src.Float64()
	switch {
	case roll < b.TrendDown:
		return -1
	case roll < b.TrendFlat:
		return 0
	default:
		return 1
	}
}

// Describe returns the display name of a weather kind.
func Describe(w config.Weather) string {
	return config.WeatherData(w).Name
}
