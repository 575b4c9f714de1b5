package analysis

import (
	"log"
	"math"

	"crypto-swing-advisor/internal/domain"
)

const (
	baseThreshold         = 0.3
	confidenceSoftening   = 4.0
	volatilityCap         = 10.0
	minUpsideForBuy       = 1.02
	baseMinSpreadPct      = 0.5
	zeroVolSpreadFraction = 0.01
)

// SiblingScores computes the technical score of every interval in the
// dataset other than primary, keyed by interval. Each series is scored
// once; the fusion step consumes the resulting map.
func SiblingScores(primary domain.Interval, dataset EnrichedSet) map[domain.Interval]int {
	out := make(map[domain.Interval]int)
	for _, iv := range domain.Intervals {
		if iv == primary {
			continue
		}
		sib, ok := dataset[iv]
		if !ok || sib == nil || len(sib.Bars) == 0 {
			continue
		}
		out[iv] = ScoreTechnical(sib, dataset).Score
	}
	return out
}

// Recommend fuses the three domain scores into a discrete signal with
// bounded price targets. The pass is deterministic and stateless:
// identical inputs give identical outputs.
func Recommend(s *Series, tech, fund, macro domain.ScoreResult, dataset EnrichedSet) (domain.Recommendation, error) {
	last := s.Last()
	price := last.Price
	atr := last.ATR14
	if price == 0 || math.IsNaN(price) {
		return domain.Recommendation{}, &ComputationError{Field: "price", Reason: "zero or undefined close"}
	}
	if math.IsNaN(atr) || math.IsNaN(last.Support) || math.IsNaN(last.Resistance) ||
		math.IsNaN(last.Fibo382) || math.IsNaN(last.Fibo618) {
		return domain.Recommendation{}, &ComputationError{Field: "indicators", Reason: "insufficient warm-up for price targets"}
	}

	volatility := s.Volatility()
	capped := math.Min(volatility, volatilityCap)

	// Blend sibling timeframes into the technical score.
	adjustedTech := float64(tech.Score)
	siblings := SiblingScores(s.Interval, dataset)
	for _, iv := range domain.Intervals {
		score, ok := siblings[iv]
		if !ok {
			continue
		}
		adjustedTech += float64(score) * weightFor(mtfaWeight, iv)
	}

	fw := fusionWeights[s.Interval]
	total := (adjustedTech*fw.Technical + float64(fund.Score)*fw.Fundamental + float64(macro.Score)*fw.Macro) *
		(1 + capped/200)
	threshold := baseThreshold * (1 + capped/100)

	signal := domain.SignalHold
	confidence := 0.0
	switch {
	case total > threshold:
		signal = domain.SignalBuy
		confidence = math.Abs(total) / (math.Abs(total) + confidenceSoftening)
	case total < -threshold:
		signal = domain.SignalSell
		confidence = math.Abs(total) / (math.Abs(total) + confidenceSoftening)
	}

	volFactor := weightFor(volatilityFactor, s.Interval)
	var buy, sell float64
	switch signal {
	case domain.SignalBuy:
		buy = math.Max(price-0.5*atr, last.Support)
		sell = math.Min(price+atr*volFactor, last.Fibo618)
	case domain.SignalSell:
		sell = math.Min(price+0.5*atr, last.Resistance)
		buy = math.Max(price-atr*volFactor, last.Fibo382)
	default:
		buy = price - 0.5*atr
		sell = price + 0.5*atr
	}

	// Higher-timeframe levels bound the band, never widen it.
	for _, tf := range higherTimeframes {
		sib, ok := dataset[tf]
		if !ok || sib == nil || len(sib.Bars) == 0 {
			continue
		}
		tfLast := sib.Last()
		if !math.IsNaN(tfLast.Support) {
			buy = math.Max(buy, tfLast.Support)
		}
		if !math.IsNaN(tfLast.Resistance) {
			sell = math.Min(sell, tfLast.Resistance)
		}
	}

	maxDev := weightFor(maxDeviation, s.Interval)
	if floor := price * (1 - maxDev); buy < floor {
		buy = floor
	}
	if ceil := price * (1 + maxDev); sell > ceil {
		sell = ceil
	}

	minSpread := baseMinSpreadPct + capped/100
	if volatility == 0 {
		minSpread = baseMinSpreadPct + zeroVolSpreadFraction
	}
	if (sell-buy)/price*100 < minSpread {
		// Recenter symmetrically around price, still honoring the
		// deviation bound.
		offset := math.Min(atr/price, maxDev)
		buy = price * (1 - offset)
		sell = price * (1 + offset)
	}

	// A BUY without at least 2% of upside to the sell target is not
	// actionable. Strict comparison: the deviation clamp can pin the
	// target at exactly price*1.02, which still counts as actionable.
	if signal == domain.SignalBuy && sell < price*minUpsideForBuy {
		log.Printf("downgrading BUY to HOLD: sell target %.4f under %.0f%% above price %.4f",
			sell, (minUpsideForBuy-1)*100, price)
		signal = domain.SignalHold
		confidence = 0
	}

	return domain.Recommendation{
		Signal:     signal,
		Confidence: confidence,
		BuyPrice:   buy,
		SellPrice:  sell,
	}, nil
}
