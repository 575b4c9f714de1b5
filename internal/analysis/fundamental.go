package analysis

import (
	"fmt"

	"crypto-swing-advisor/internal/domain"
)

const (
	marketCapThreshold   = 10e9
	tvlThreshold         = 1e9
	volumeRatioThreshold = 0.01
)

// ScoreFundamental rates the asset's monetary footprint. Thresholds
// are static and the rules are independent; a zero market cap simply
// drops the volume-ratio rule instead of dividing by zero.
func ScoreFundamental(m domain.FundamentalMetrics) domain.ScoreResult {
	score := 0
	var reasons []string

	if m.MarketCap > marketCapThreshold {
		score += 3
		reasons = append(reasons, fmt.Sprintf("market cap above %.0fB USD (+3)", marketCapThreshold/1e9))
	}
	if m.MarketCap != 0 && m.Volume24h/m.MarketCap > volumeRatioThreshold {
		score += 2
		reasons = append(reasons, fmt.Sprintf("24h volume above %.0f%% of market cap (+2)", volumeRatioThreshold*100))
	}
	if m.TVL > tvlThreshold {
		score += 3
		reasons = append(reasons, fmt.Sprintf("TVL above %.0fB USD (+3)", tvlThreshold/1e9))
	}

	return domain.ScoreResult{Score: score, Reasons: reasons}
}
