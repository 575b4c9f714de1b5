package analysis

import (
	"testing"

	"crypto-swing-advisor/internal/domain"
)

func TestScoreFundamentalMajorAsset(t *testing.T) {
	res := ScoreFundamental(domain.FundamentalMetrics{
		MarketCap: 800e9,
		Volume24h: 20e9,
		TVL:       5e9,
	})
	if res.Score != 8 {
		t.Fatalf("want 8, got %d (%v)", res.Score, res.Reasons)
	}
	if len(res.Reasons) != 3 {
		t.Fatalf("want 3 reasons, got %v", res.Reasons)
	}
}

func TestScoreFundamentalSmallAsset(t *testing.T) {
	res := ScoreFundamental(domain.FundamentalMetrics{
		MarketCap: 1e8,
		Volume24h: 1e5,
	})
	if res.Score != 0 || len(res.Reasons) != 0 {
		t.Fatalf("want 0, got %d (%v)", res.Score, res.Reasons)
	}
}

func TestScoreFundamentalZeroMarketCapSkipsRatio(t *testing.T) {
	res := ScoreFundamental(domain.FundamentalMetrics{
		MarketCap: 0,
		Volume24h: 50e9,
		TVL:       2e9,
	})
	// Only the TVL rule can fire.
	if res.Score != 3 {
		t.Fatalf("want 3, got %d (%v)", res.Score, res.Reasons)
	}
}

func TestScoreFundamentalVolumeRatioBoundary(t *testing.T) {
	// Exactly 1% does not fire; strictly above does.
	at := ScoreFundamental(domain.FundamentalMetrics{MarketCap: 100e9, Volume24h: 1e9})
	above := ScoreFundamental(domain.FundamentalMetrics{MarketCap: 100e9, Volume24h: 1.5e9})
	if at.Score != 3 {
		t.Fatalf("ratio at threshold must not fire: got %d", at.Score)
	}
	if above.Score != 5 {
		t.Fatalf("ratio above threshold must fire: got %d", above.Score)
	}
}
