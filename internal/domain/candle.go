package domain

import "time"

// Candle represents a single OHLCV bar for an asset at a given interval.
type Candle struct {
	Symbol   string    `json:"symbol"`
	Interval Interval  `json:"interval"`
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// PriceDataSet holds the candle history for each standard interval.
// A missing or empty entry means "timeframe unavailable" and is skipped
// by multi-timeframe logic, never treated as zero.
type PriceDataSet map[Interval][]Candle

// Has reports whether the data set carries a usable series for iv.
func (d PriceDataSet) Has(iv Interval) bool {
	return len(d[iv]) > 0
}
