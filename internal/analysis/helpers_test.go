package analysis

import (
	"math"

	"crypto-swing-advisor/internal/domain"
)

// stubSeries builds a series with n flat bars at the given price and a
// full set of indicator columns initialized to NaN. Tests set only the
// last-bar values their scenario needs; NaN columns are neutral for
// every rule.
func stubSeries(iv domain.Interval, price float64, n int) *Series {
	bars := make([]domain.Candle, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := range bars {
		closes[i] = price
		volumes[i] = 1000
		bars[i] = domain.Candle{Symbol: "BTC", Interval: iv, Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	nan := func() []float64 {
		col := make([]float64, n)
		for i := range col {
			col[i] = math.NaN()
		}
		return col
	}
	return &Series{
		Interval:   iv,
		Bars:       bars,
		closes:     closes,
		volumes:    volumes,
		RSI:        nan(),
		MACD:       nan(),
		MACDSignal: nan(),
		EMA12:      nan(),
		EMA20:      nan(),
		EMA26:      nan(),
		ATR14:      nan(),
		ADX:        nan(),
		Support:    nan(),
		Resistance: nan(),
		Fibo382:    nan(),
		Fibo618:    nan(),
		BBUpper:    nan(),
		BBLower:    nan(),
		Divergence: nan(),
	}
}

func setLast(col []float64, v float64) {
	col[len(col)-1] = v
}

// bullishSibling is a higher-timeframe series that confirms an uptrend
// and carries wide price levels that never clamp the primary band.
func bullishSibling(iv domain.Interval) *Series {
	s := stubSeries(iv, 100, 30)
	setLast(s.EMA12, 101)
	setLast(s.EMA26, 100)
	setLast(s.Support, 80)
	setLast(s.Resistance, 130)
	return s
}
