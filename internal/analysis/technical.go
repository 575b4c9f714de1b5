package analysis

import (
	"fmt"
	"math"

	"crypto-swing-advisor/internal/domain"
)

const (
	adxTrendThreshold = 25
	volumeSpikeMul    = 2.0
	mtfaTrendBonus    = 2

	// Volatility above this widens the RSI bands by its own value.
	rsiBandVolCutoff = 5.0
	rsiBaseOverbought = 65.0
	rsiBaseOversold   = 35.0
)

// higherTimeframes are the candidates for trend confirmation and price
// clamping, coarsest last.
var higherTimeframes = []domain.Interval{domain.Interval4H, domain.Interval1D, domain.Interval1W}

// ScoreTechnical evaluates the rule set against the series' last bar
// and returns the interval-weighted score with one reason per fired
// rule, in firing order. Sibling series in dataset are only used for
// the trend-confirmation bonus; a missing timeframe is skipped, never
// read as disconfirming.
func ScoreTechnical(s *Series, dataset EnrichedSet) domain.ScoreResult {
	last := s.Last()
	volatility := s.Volatility()

	score := 0
	var reasons []string
	add := func(pts int, format string, args ...any) {
		score += pts
		reasons = append(reasons, fmt.Sprintf(format, args...))
	}

	oscW := weightFor(oscillatorWeight, s.Interval)

	overbought := rsiBaseOverbought
	oversold := rsiBaseOversold
	if volatility > rsiBandVolCutoff {
		overbought += volatility
		oversold -= volatility
	}
	if last.RSI > overbought {
		pts := -trunc(4 * oscW)
		add(pts, "RSI > %.2f: overbought (%d)", overbought, pts)
	} else if last.RSI < oversold {
		pts := trunc(4 * oscW)
		add(pts, "RSI < %.2f: oversold (+%d)", oversold, pts)
	}

	if last.MACD > last.MACDSignal {
		pts := trunc(4 * oscW)
		add(pts, "MACD above signal: bullish (+%d)", pts)
	} else if last.MACD < last.MACDSignal {
		pts := -trunc(4 * oscW)
		add(pts, "MACD below signal: bearish (%d)", pts)
	}

	if last.EMA12 > last.EMA26 {
		pts := trunc(3 * oscW)
		add(pts, "EMA 12 > EMA 26: uptrend (+%d)", pts)
		if confirmTrend(s.Interval, dataset, true) {
			add(mtfaTrendBonus, "uptrend confirmed by higher timeframes (+%d)", mtfaTrendBonus)
		}
	} else if last.EMA12 < last.EMA26 {
		pts := -trunc(3 * oscW)
		add(pts, "EMA 12 < EMA 26: downtrend (%d)", pts)
		if confirmTrend(s.Interval, dataset, false) {
			add(-mtfaTrendBonus, "downtrend confirmed by higher timeframes (-%d)", mtfaTrendBonus)
		}
	}

	adxW := weightFor(adxWeight, s.Interval)
	if last.ADX > adxTrendThreshold {
		if last.Price > last.EMA20 {
			pts := trunc(3 * adxW)
			add(pts, "ADX > 25 with price above EMA 20: strong uptrend (+%d)", pts)
		} else {
			pts := -trunc(3 * adxW)
			add(pts, "ADX > 25 with price below EMA 20: strong downtrend (%d)", pts)
		}
	}

	if avgVolume := s.AvgVolume20(); !math.IsNaN(avgVolume) && avgVolume != 0 && last.Volume > volumeSpikeMul*avgVolume {
		if last.Price > last.EMA20 {
			pts := trunc(2 * oscW)
			add(pts, "high volume with price above EMA 20: bullish (+%d)", pts)
		} else {
			pts := -trunc(2 * oscW)
			add(pts, "high volume with price below EMA 20: bearish (%d)", pts)
		}
	}

	if last.Price <= last.BBLower {
		pts := trunc(3 * oscW)
		add(pts, "price at lower Bollinger band: oversold (+%d)", pts)
	} else if last.Price >= last.BBUpper {
		pts := -trunc(3 * oscW)
		add(pts, "price at upper Bollinger band: overbought (%d)", pts)
	}

	if last.Divergence == 1 {
		pts := trunc(3 * oscW)
		add(pts, "bullish RSI divergence (+%d)", pts)
	} else if last.Divergence == -1 {
		pts := -trunc(3 * oscW)
		add(pts, "bearish RSI divergence (%d)", pts)
	}

	return domain.ScoreResult{Score: score, Reasons: reasons}
}

// confirmTrend checks whether every available higher timeframe agrees
// with the primary trend direction. The primary interval itself is
// excluded; an absent timeframe cannot disconfirm.
func confirmTrend(primary domain.Interval, dataset EnrichedSet, bullish bool) bool {
	for _, tf := range higherTimeframes {
		if tf == primary {
			continue
		}
		sib, ok := dataset[tf]
		if !ok || sib == nil || len(sib.Bars) == 0 {
			continue
		}
		last := sib.Last()
		if math.IsNaN(last.EMA12) || math.IsNaN(last.EMA26) {
			continue
		}
		if bullish && last.EMA12 < last.EMA26 {
			return false
		}
		if !bullish && last.EMA12 > last.EMA26 {
			return false
		}
	}
	return true
}

// trunc matches the original contribution arithmetic: multiply and
// truncate toward zero.
func trunc(v float64) int {
	return int(v)
}
