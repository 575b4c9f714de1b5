package analysis

import (
	"fmt"
	"math"

	"crypto-swing-advisor/internal/domain"
	"crypto-swing-advisor/internal/ta"
)

// ComputationError reports a raw or derived field that could not be
// computed. Validation failures are not ComputationErrors; they are
// reported by Validate as a terminal (ok, reason) pair.
type ComputationError struct {
	Field  string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("cannot compute %s: %s", e.Field, e.Reason)
}

// Series is a candle history enriched with indicator columns. Columns
// are aligned with Bars; values inside an indicator's warm-up window
// are NaN. Downstream scoring only consults the last bar.
type Series struct {
	Interval domain.Interval
	Bars     []domain.Candle

	closes  []float64
	volumes []float64

	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	EMA12      []float64
	EMA20      []float64
	EMA26      []float64
	ATR14      []float64
	ADX        []float64
	Support    []float64
	Resistance []float64
	Fibo382    []float64
	Fibo618    []float64
	BBUpper    []float64
	BBLower    []float64
	Divergence []float64
}

// EnrichedSet maps every available interval to its enriched series.
// Missing intervals are skipped by multi-timeframe logic.
type EnrichedSet map[domain.Interval]*Series

// LastBar is a snapshot of the most recent bar with all indicator
// values attached.
type LastBar struct {
	Price      float64
	Volume     float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	EMA12      float64
	EMA20      float64
	EMA26      float64
	ATR14      float64
	ADX        float64
	Support    float64
	Resistance float64
	Fibo382    float64
	Fibo618    float64
	BBUpper    float64
	BBLower    float64
	Divergence int
}

func lastValue(col []float64) float64 {
	if len(col) == 0 {
		return math.NaN()
	}
	return col[len(col)-1]
}

// Last returns the most recent bar's snapshot. Fields whose warm-up
// window extends past the series length are NaN.
func (s *Series) Last() LastBar {
	div := 0
	if d := lastValue(s.Divergence); !math.IsNaN(d) {
		div = int(d)
	}
	return LastBar{
		Price:      lastValue(s.closes),
		Volume:     lastValue(s.volumes),
		RSI:        lastValue(s.RSI),
		MACD:       lastValue(s.MACD),
		MACDSignal: lastValue(s.MACDSignal),
		EMA12:      lastValue(s.EMA12),
		EMA20:      lastValue(s.EMA20),
		EMA26:      lastValue(s.EMA26),
		ATR14:      lastValue(s.ATR14),
		ADX:        lastValue(s.ADX),
		Support:    lastValue(s.Support),
		Resistance: lastValue(s.Resistance),
		Fibo382:    lastValue(s.Fibo382),
		Fibo618:    lastValue(s.Fibo618),
		BBUpper:    lastValue(s.BBUpper),
		BBLower:    lastValue(s.BBLower),
		Divergence: div,
	}
}

// Volatility is the 20-bar trailing realized volatility of the close:
// std of one-bar pct changes, in percent. Defaults to 1.0 when the
// window is not yet computable or the market was perfectly flat, so it
// can always be used as a divisor or threshold adjustment.
func (s *Series) Volatility() float64 {
	v := s.rawVolatility()
	if math.IsNaN(v) || v == 0 {
		return 1.0
	}
	return v
}

func (s *Series) rawVolatility() float64 {
	pct := ta.PctChangeSeries(s.closes, 1)
	std := ta.RollingStdSeries(pct, 20)
	return lastValue(std) * 100
}

// AvgVolume20 is the 20-bar rolling mean volume at the last bar.
func (s *Series) AvgVolume20() float64 {
	return lastValue(ta.SMASeries(s.volumes, 20))
}
