package ta

import "math"

func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if period <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// SMASeries is the rolling mean over period bars. Bars inside the
// warm-up window are NaN. NaN inputs poison their windows.
func SMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		if hasNaN(window) {
			continue
		}
		mean, _ := MeanStd(window)
		out[i] = mean
	}
	return out
}

// RollingStdSeries is the rolling standard deviation over period bars.
func RollingStdSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		if hasNaN(window) {
			continue
		}
		_, std := MeanStd(window)
		out[i] = std
	}
	return out
}

func RollingMinSeries(values []float64, period int) []float64 {
	return rollingExtreme(values, period, math.Min)
}

func RollingMaxSeries(values []float64, period int) []float64 {
	return rollingExtreme(values, period, math.Max)
}

func rollingExtreme(values []float64, period int, pick func(a, b float64) float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		if hasNaN(window) {
			continue
		}
		acc := window[0]
		for _, v := range window[1:] {
			acc = pick(acc, v)
		}
		out[i] = acc
	}
	return out
}

func RollingSumSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		if hasNaN(window) {
			continue
		}
		var sum float64
		for _, v := range window {
			sum += v
		}
		out[i] = sum
	}
	return out
}

// PctChangeSeries is the fractional change over periods bars:
// (v[i] - v[i-p]) / v[i-p]. NaN inside the warm-up window or when the
// base value is zero.
func PctChangeSeries(values []float64, periods int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := nanSlice(len(values))
	if periods <= 0 {
		return out
	}
	for i := periods; i < len(values); i++ {
		base := values[i-periods]
		if base == 0 || math.IsNaN(base) || math.IsNaN(values[i]) {
			continue
		}
		out[i] = (values[i] - base) / base
	}
	return out
}

// RSISeries computes an RSI whose average gain and average loss are the
// plain rolling means of the positive and negative close deltas over
// period bars. RSI is defined as 100 when the average loss is zero.
func RSISeries(closes []float64, period int) []float64 {
	if len(closes) == 0 {
		return nil
	}
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}
	gains := nanSlice(len(closes))
	losses := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}
	avgGain := SMASeries(gains, period)
	avgLoss := SMASeries(losses, period)
	for i := period; i < len(closes); i++ {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		out[i] = rsiFromAvg(avgGain[i], avgLoss[i])
	}
	return out
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

func MACDSeries(values []float64, fast, slow, signal int) ([]float64, []float64) {
	if len(values) == 0 {
		return nil, nil
	}
	fastEMA := EMASeries(values, fast)
	slowEMA := EMASeries(values, slow)
	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := EMASeries(macdLine, signal)
	return macdLine, signalLine
}

func BollingerSeries(values []float64, period int, stdDevs float64) ([]float64, []float64, []float64) {
	if len(values) == 0 {
		return nil, nil, nil
	}
	middle := nanSlice(len(values))
	upper := nanSlice(len(values))
	lower := nanSlice(len(values))
	if period <= 0 {
		return middle, upper, lower
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		mean, std := MeanStd(window)
		middle[i] = mean
		upper[i] = mean + stdDevs*std
		lower[i] = mean - stdDevs*std
	}
	return middle, upper, lower
}

// TrueRangeSeries computes TR = max(high-low, |high-prevClose|,
// |low-prevClose|). The first bar has no previous close and falls back
// to high-low.
func TrueRangeSeries(highs, lows, closes []float64) []float64 {
	if len(highs) == 0 {
		return nil
	}
	out := make([]float64, len(highs))
	out[0] = highs[0] - lows[0]
	for i := 1; i < len(highs); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATRSeries is the rolling mean of the true range.
func ATRSeries(highs, lows, closes []float64, period int) []float64 {
	return SMASeries(TrueRangeSeries(highs, lows, closes), period)
}

// ADXSeries computes the average directional index: directional
// movement from high/low diffs, DI± over rolling sums of DM± and TR,
// DX from the DI spread, and ADX as the rolling mean of DX.
func ADXSeries(highs, lows, closes []float64, period int) []float64 {
	if len(highs) == 0 {
		return nil
	}
	tr := TrueRangeSeries(highs, lows, closes)
	plusDM := make([]float64, len(highs))
	minusDM := make([]float64, len(highs))
	for i := 1; i < len(highs); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	trSum := RollingSumSeries(tr, period)
	plusSum := RollingSumSeries(plusDM, period)
	minusSum := RollingSumSeries(minusDM, period)

	dx := nanSlice(len(highs))
	for i := range highs {
		if math.IsNaN(trSum[i]) || trSum[i] == 0 {
			continue
		}
		plusDI := 100 * plusSum[i] / trSum[i]
		minusDI := 100 * minusSum[i] / trSum[i]
		if plusDI+minusDI == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}
	return SMASeries(dx, period)
}

// DivergenceSeries flags bars where price and RSI moved in opposite
// directions over the lookback: +1 bullish (price down, RSI up),
// -1 bearish (price up, RSI down), 0 otherwise.
func DivergenceSeries(closes, rsi []float64, lookback int) []float64 {
	if len(closes) == 0 {
		return nil
	}
	out := make([]float64, len(closes))
	if lookback <= 0 {
		return out
	}
	for i := lookback; i < len(closes); i++ {
		if math.IsNaN(rsi[i]) || math.IsNaN(rsi[i-lookback]) {
			continue
		}
		priceDelta := closes[i] - closes[i-lookback]
		rsiDelta := rsi[i] - rsi[i-lookback]
		switch {
		case priceDelta < 0 && rsiDelta > 0:
			out[i] = 1
		case priceDelta > 0 && rsiDelta < 0:
			out[i] = -1
		}
	}
	return out
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
