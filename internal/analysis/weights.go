package analysis

import (
	"fmt"

	"crypto-swing-advisor/internal/domain"
)

// FusionWeights blends the three domain scores for one primary
// interval. The tuple always sums to 1.
type FusionWeights struct {
	Technical   float64
	Fundamental float64
	Macro       float64
}

// Weight tables keyed by interval. Every table must cover all four
// standard intervals; init panics otherwise so a gap is caught at
// startup, not silently defaulted at scoring time.
var (
	// Momentum/trend oscillator family: RSI, MACD, EMA, volume,
	// Bollinger, divergence. Short timeframes weigh these higher.
	oscillatorWeight = map[domain.Interval]float64{
		domain.Interval1H: 1.2,
		domain.Interval4H: 1.0,
		domain.Interval1D: 0.8,
		domain.Interval1W: 0.6,
	}

	// ADX is a trend-strength read and matters more on slow timeframes.
	adxWeight = map[domain.Interval]float64{
		domain.Interval1H: 1.0,
		domain.Interval4H: 1.0,
		domain.Interval1D: 1.2,
		domain.Interval1W: 1.2,
	}

	// Global macro weight: macro conditions barely move a 1h trade and
	// dominate a weekly one.
	macroIntervalWeight = map[domain.Interval]float64{
		domain.Interval1H: 0.2,
		domain.Interval4H: 0.4,
		domain.Interval1D: 0.6,
		domain.Interval1W: 0.8,
	}

	// Contribution of each sibling timeframe's technical score to the
	// blended score.
	mtfaWeight = map[domain.Interval]float64{
		domain.Interval1H: 0.1,
		domain.Interval4H: 0.2,
		domain.Interval1D: 0.3,
		domain.Interval1W: 0.4,
	}

	fusionWeights = map[domain.Interval]FusionWeights{
		domain.Interval1H: {Technical: 0.6, Fundamental: 0.2, Macro: 0.2},
		domain.Interval4H: {Technical: 0.5, Fundamental: 0.3, Macro: 0.2},
		domain.Interval1D: {Technical: 0.4, Fundamental: 0.3, Macro: 0.3},
		domain.Interval1W: {Technical: 0.3, Fundamental: 0.4, Macro: 0.3},
	}

	// Multiplier on ATR when projecting the profit target.
	volatilityFactor = map[domain.Interval]float64{
		domain.Interval1H: 1.0,
		domain.Interval4H: 1.5,
		domain.Interval1D: 2.0,
		domain.Interval1W: 3.0,
	}

	// Maximum allowed distance of a price target from the current
	// price, as a fraction.
	maxDeviation = map[domain.Interval]float64{
		domain.Interval1H: 0.02,
		domain.Interval4H: 0.03,
		domain.Interval1D: 0.05,
		domain.Interval1W: 0.10,
	}
)

func init() {
	for _, iv := range domain.Intervals {
		mustHave(oscillatorWeight, iv, "oscillatorWeight")
		mustHave(adxWeight, iv, "adxWeight")
		mustHave(macroIntervalWeight, iv, "macroIntervalWeight")
		mustHave(mtfaWeight, iv, "mtfaWeight")
		mustHave(volatilityFactor, iv, "volatilityFactor")
		mustHave(maxDeviation, iv, "maxDeviation")
		if _, ok := fusionWeights[iv]; !ok {
			panic(fmt.Sprintf("fusionWeights missing interval %s", iv))
		}
	}
}

func mustHave(table map[domain.Interval]float64, iv domain.Interval, name string) {
	if _, ok := table[iv]; !ok {
		panic(fmt.Sprintf("%s missing interval %s", name, iv))
	}
}

func weightFor(table map[domain.Interval]float64, iv domain.Interval) float64 {
	w, ok := table[iv]
	if !ok {
		panic(fmt.Sprintf("no weight for interval %q", iv))
	}
	return w
}
