package domain

// Interval identifies one of the four standard analysis timeframes.
type Interval string

const (
	Interval1H Interval = "1h"
	Interval4H Interval = "4h"
	Interval1D Interval = "1d"
	Interval1W Interval = "1w"
)

// Intervals lists the standard timeframes, finest first. Every weight
// table in the engine is keyed by these four values.
var Intervals = []Interval{Interval1H, Interval4H, Interval1D, Interval1W}

// ParseInterval normalizes user input ("1H", "4h", ...) to an Interval.
func ParseInterval(s string) (Interval, bool) {
	switch s {
	case "1h", "1H":
		return Interval1H, true
	case "4h", "4H":
		return Interval4H, true
	case "1d", "1D":
		return Interval1D, true
	case "1w", "1W":
		return Interval1W, true
	}
	return "", false
}

// IsValid reports whether iv is one of the four standard intervals.
func (iv Interval) IsValid() bool {
	switch iv {
	case Interval1H, Interval4H, Interval1D, Interval1W:
		return true
	}
	return false
}

// Signal is the discrete trading advice emitted by the engine.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// ScoreResult carries an integer score together with the human-readable
// reasons that produced it, in rule-firing order. The order is part of
// the observable contract: it feeds audit logs and the LLM advisor.
type ScoreResult struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// FundamentalMetrics are the monetary magnitudes (USD) consumed by the
// fundamental scorer. Missing fields are zero, never negative.
type FundamentalMetrics struct {
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
	TVL       float64 `json:"tvl"`
}

// MacroMetrics are the macroeconomic inputs to the macro scorer. Trend
// slices are chronological, most recent last; absent series are empty,
// never fabricated.
type MacroMetrics struct {
	FearGreedIndex   int       `json:"fear_greed_index"`
	FNGTrend         []int     `json:"fng_trend"`
	VIXValue         float64   `json:"vix_value"`
	VIXTrend         []float64 `json:"vix_trend"`
	FedInterestRate  float64   `json:"fed_interest_rate"`
	CPICurrent       float64   `json:"cpi_current"`
	CPIPrevious      float64   `json:"cpi_previous"`
	GDPCurrent       float64   `json:"gdp_current"`
	GDPPrevious      float64   `json:"gdp_previous"`
	UnemploymentRate float64   `json:"unemployment_rate"`
	SP500Value       float64   `json:"sp500_value"`
	SP500Values      []float64 `json:"sp500_values"`
}

// Recommendation is the engine's final advisory output.
type Recommendation struct {
	Signal     Signal  `json:"signal"`
	Confidence float64 `json:"confidence"`
	BuyPrice   float64 `json:"buy_price"`
	SellPrice  float64 `json:"sell_price"`
}

// AnalysisReport bundles everything one analysis run produced for a
// symbol: the three score breakdowns and the fused recommendation.
type AnalysisReport struct {
	Symbol         string         `json:"symbol"`
	Interval       Interval       `json:"interval"`
	Technical      ScoreResult    `json:"technical"`
	Fundamental    ScoreResult    `json:"fundamental"`
	Macro          ScoreResult    `json:"macro"`
	Recommendation Recommendation `json:"recommendation"`
	Commentary     string         `json:"commentary,omitempty"`
}
