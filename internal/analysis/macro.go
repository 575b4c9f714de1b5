package analysis

import (
	"fmt"

	"crypto-swing-advisor/internal/domain"
)

// S&P 500 regime threshold, as an index level. Earlier revisions of the
// rule compared the SPY ETF price against 400 instead; the index-level
// variant is the canonical one here.
const sp500BullLevel = 4500.0

// ScoreMacro rates the macroeconomic backdrop, scaled by how much
// macro conditions matter for the target interval. Rules with missing
// trend arrays or zero denominators are skipped silently; zero-valued
// scalar fields still hit their thresholds, mirroring the upstream
// zero-fill convention.
func ScoreMacro(m domain.MacroMetrics, interval domain.Interval) domain.ScoreResult {
	weight := weightFor(macroIntervalWeight, interval)

	score := 0
	var reasons []string
	add := func(base int, format string, args ...any) {
		pts := trunc(float64(base) * weight)
		score += pts
		reasons = append(reasons, fmt.Sprintf(format, args...)+fmt.Sprintf(" (%+d)", pts))
	}

	if m.FearGreedIndex < 30 {
		add(2, "Fear & Greed below 30: opportunity")
	} else if m.FearGreedIndex > 70 {
		add(-2, "Fear & Greed above 70: caution")
	}
	if n := len(m.FNGTrend); n >= 2 {
		if m.FNGTrend[n-1] > m.FNGTrend[n-2] {
			add(1, "Fear & Greed rising")
		} else if m.FNGTrend[n-1] < m.FNGTrend[n-2] {
			add(-1, "Fear & Greed falling")
		}
	}

	if m.VIXValue > 30 {
		add(-3, "VIX above 30: turbulent market")
	} else if m.VIXValue < 15 {
		add(3, "VIX below 15: calm market")
	}
	if n := len(m.VIXTrend); n >= 2 {
		if m.VIXTrend[n-1] > m.VIXTrend[n-2] {
			add(-2, "VIX rising: growing volatility")
		} else if m.VIXTrend[n-1] < m.VIXTrend[n-2] {
			add(2, "VIX falling: volatility easing")
		}
	}

	if m.FedInterestRate > 5 {
		add(-3, "Fed rate above 5%%: bearish pressure")
	} else if m.FedInterestRate < 2 {
		add(3, "Fed rate below 2%%: supportive environment")
	}

	if m.CPICurrent != 0 && m.CPIPrevious != 0 {
		inflation := (m.CPICurrent - m.CPIPrevious) / m.CPIPrevious * 100
		if inflation > 3 {
			add(-2, "CPI inflation above 3%% (%.2f%%)", inflation)
		} else if inflation < 1 {
			add(2, "CPI inflation below 1%% (%.2f%%)", inflation)
		}
	}

	if m.GDPCurrent != 0 && m.GDPPrevious != 0 {
		growth := (m.GDPCurrent - m.GDPPrevious) / m.GDPPrevious * 100
		if growth < 1 {
			add(-2, "GDP growth below 1%% (%.2f%%)", growth)
		} else if growth > 3 {
			add(2, "GDP growth above 3%% (%.2f%%)", growth)
		}
	}

	if m.UnemploymentRate > 5 {
		add(-2, "unemployment above 5%%: weak economy")
	} else if m.UnemploymentRate < 4 {
		add(2, "unemployment below 4%%: robust economy")
	}

	if m.SP500Value != 0 {
		if m.SP500Value < sp500BullLevel {
			add(-3, "S&P 500 below %.0f: bear market", sp500BullLevel)
		} else {
			add(3, "S&P 500 above %.0f: bull market", sp500BullLevel)
		}
	}

	if change, ok := sp500WeeklyChange(m.SP500Values); ok {
		if change > 2 {
			add(3, "S&P 500 up %.2f%% over 7 days", change)
		} else if change < -2 {
			add(-3, "S&P 500 down %.2f%% over 7 days", change)
		}
	}

	return domain.ScoreResult{Score: score, Reasons: reasons}
}

// sp500WeeklyChange derives the 7-day percent change from a trailing
// window of daily closes. With exactly two samples the previous close
// is the baseline; fewer than seven (but more than two) samples cannot
// anchor a weekly comparison and skip the rule.
func sp500WeeklyChange(values []float64) (float64, bool) {
	n := len(values)
	if n < 2 {
		return 0, false
	}
	current := values[n-1]
	var base float64
	switch {
	case n == 2:
		base = values[0]
	case n >= 7:
		base = values[n-7]
	default:
		return 0, false
	}
	if base == 0 {
		return 0, false
	}
	return (current - base) / base * 100, true
}
