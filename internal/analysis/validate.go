package analysis

import (
	"math"

	"crypto-swing-advisor/internal/domain"
	"crypto-swing-advisor/internal/ta"
)

const (
	minBars            = 20
	maxStepChange      = 0.10 // |5-bar pct change| above this is rejected
	volumeSpikeFactor  = 3.0
	volumeSpikeWindow  = 20
	stepChangeLookback = 5
)

// Validate gates a candle series before any enrichment or scoring.
// Rules are checked in order and the first failure wins; a failed
// series is rejected terminally, never retried. The reason string is
// stable and surfaced to callers.
func Validate(bars []domain.Candle) (bool, string) {
	if len(bars) == 0 {
		return false, "missing/invalid data"
	}
	if len(bars) < minBars {
		return false, "insufficient history"
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		if b.Close == 0 || math.IsNaN(b.Close) {
			return false, "missing/null close values"
		}
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	change := ta.PctChangeSeries(closes, stepChangeLookback)
	if last := change[len(change)-1]; !math.IsNaN(last) && math.Abs(last) > maxStepChange {
		return false, "sudden volatility"
	}

	meanVol := ta.SMASeries(volumes, volumeSpikeWindow)
	if avg := meanVol[len(meanVol)-1]; !math.IsNaN(avg) && bars[len(bars)-1].Volume > volumeSpikeFactor*avg {
		return false, "abnormal volume"
	}

	return true, "valid"
}
