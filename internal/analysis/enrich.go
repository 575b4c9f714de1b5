package analysis

import (
	"math"

	"crypto-swing-advisor/internal/domain"
	"crypto-swing-advisor/internal/ta"
)

const (
	atrPeriod          = 14
	macdFast           = 12
	macdSlow           = 26
	macdSignalPeriod   = 9
	bollingerPeriod    = 20
	bollingerStdDevs   = 2.0
	divergenceLookback = 5

	// Realized volatility at or above this level switches the RSI to
	// the shorter, more reactive window.
	rsiVolCutoff    = 2.0
	rsiCalmWindow   = 14
	rsiVolatileWind = 10
)

// Enrich computes the full indicator battery over the candle history.
// Bars must be ordered by time, most recent last. It fails with a
// ComputationError if any raw OHLCV field is non-finite; warm-up bars
// keep NaN in every derived column.
func Enrich(bars []domain.Candle, interval domain.Interval) (*Series, error) {
	s := &Series{Interval: interval, Bars: bars}
	n := len(bars)
	if n == 0 {
		return s, nil
	}

	highs := make([]float64, n)
	lows := make([]float64, n)
	s.closes = make([]float64, n)
	s.volumes = make([]float64, n)
	for i, b := range bars {
		if !finite(b.Open) || !finite(b.High) || !finite(b.Low) || !finite(b.Close) || !finite(b.Volume) {
			return nil, &ComputationError{Field: "ohlcv", Reason: "non-numeric raw value"}
		}
		highs[i] = b.High
		lows[i] = b.Low
		s.closes[i] = b.Close
		s.volumes[i] = b.Volume
	}

	s.RSI = ta.RSISeries(s.closes, rsiWindow(s))
	s.MACD, s.MACDSignal = ta.MACDSeries(s.closes, macdFast, macdSlow, macdSignalPeriod)
	s.EMA12 = ta.EMASeries(s.closes, 12)
	s.EMA20 = ta.EMASeries(s.closes, 20)
	s.EMA26 = ta.EMASeries(s.closes, 26)
	s.ATR14 = ta.ATRSeries(highs, lows, s.closes, atrPeriod)
	s.ADX = ta.ADXSeries(highs, lows, s.closes, adxWindow(interval))

	srWindow := supportWindow(interval)
	rawSupport := ta.RollingMinSeries(lows, srWindow)
	rawResistance := ta.RollingMaxSeries(highs, srWindow)
	// Smooth the raw extrema so a single spike bar cannot move the
	// price targets.
	s.Support = emaIgnoringNaN(rawSupport, srWindow)
	s.Resistance = emaIgnoringNaN(rawResistance, srWindow)

	s.Fibo382 = fiboSeries(s.Support, s.Resistance, 0.382)
	s.Fibo618 = fiboSeries(s.Support, s.Resistance, 0.618)

	_, s.BBUpper, s.BBLower = ta.BollingerSeries(s.closes, bollingerPeriod, bollingerStdDevs)
	s.Divergence = ta.DivergenceSeries(s.closes, s.RSI, divergenceLookback)

	return s, nil
}

// rsiWindow picks the RSI period from trailing realized volatility:
// calm markets use 14, volatile ones 10.
func rsiWindow(s *Series) int {
	v := s.rawVolatility()
	if math.IsNaN(v) || v == 0 {
		v = 1.0
	}
	if v < rsiVolCutoff {
		return rsiCalmWindow
	}
	return rsiVolatileWind
}

func adxWindow(interval domain.Interval) int {
	switch interval {
	case domain.Interval1D, domain.Interval1W:
		return 14
	default:
		return 10
	}
}

func supportWindow(interval domain.Interval) int {
	switch interval {
	case domain.Interval1H, domain.Interval4H:
		return 10
	default:
		return 20
	}
}

func fiboSeries(support, resistance []float64, ratio float64) []float64 {
	out := make([]float64, len(support))
	for i := range support {
		out[i] = support[i] + ratio*(resistance[i]-support[i])
	}
	return out
}

// emaIgnoringNaN applies the standard EMA recursion but seeds at the
// first finite value, leaving the warm-up prefix NaN. Used for series
// that start with a rolling warm-up window.
func emaIgnoringNaN(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	prev := math.NaN()
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = prev
		case math.IsNaN(prev):
			out[i] = v
		default:
			out[i] = alpha*v + (1-alpha)*prev
		}
		prev = out[i]
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
