package analysis

import (
	"strings"
	"testing"

	"crypto-swing-advisor/internal/domain"
)

func TestScoreTechnicalNeutralBar(t *testing.T) {
	s := stubSeries(domain.Interval1H, 100, 30)
	res := ScoreTechnical(s, EnrichedSet{domain.Interval1H: s})
	if res.Score != 0 || len(res.Reasons) != 0 {
		t.Fatalf("NaN indicators must score 0, got %d (%v)", res.Score, res.Reasons)
	}
}

func TestScoreTechnicalOversold(t *testing.T) {
	s := stubSeries(domain.Interval1H, 100, 30)
	setLast(s.RSI, 20)
	res := ScoreTechnical(s, EnrichedSet{domain.Interval1H: s})
	if res.Score != 4 {
		t.Fatalf("oversold at 1h must add +4, got %d", res.Score)
	}
	if len(res.Reasons) != 1 || !strings.Contains(res.Reasons[0], "oversold") {
		t.Fatalf("unexpected reasons: %v", res.Reasons)
	}
}

func TestScoreTechnicalIntervalWeighting(t *testing.T) {
	// The same RSI fires with different magnitude per interval.
	want := map[domain.Interval]int{
		domain.Interval1H: 4, // 4 * 1.2 truncated
		domain.Interval4H: 4,
		domain.Interval1D: 3, // 4 * 0.8 truncated
		domain.Interval1W: 2, // 4 * 0.6 truncated
	}
	for iv, expected := range want {
		s := stubSeries(iv, 100, 30)
		setLast(s.RSI, 20)
		res := ScoreTechnical(s, EnrichedSet{iv: s})
		if res.Score != expected {
			t.Errorf("%s: want %d, got %d", iv, expected, res.Score)
		}
	}
}

func TestScoreTechnicalFullBullish(t *testing.T) {
	s := stubSeries(domain.Interval1H, 100, 30)
	setLast(s.RSI, 20)
	setLast(s.MACD, 1)
	setLast(s.MACDSignal, 0)
	setLast(s.EMA12, 101)
	setLast(s.EMA26, 100)
	setLast(s.EMA20, 99)
	setLast(s.ADX, 30)
	setLast(s.BBLower, 100) // price touches the lower band
	setLast(s.BBUpper, 120)
	setLast(s.Divergence, 1)
	s.volumes[len(s.volumes)-1] = 3000 // 3x the 20-bar average

	dataset := EnrichedSet{
		domain.Interval1H: s,
		domain.Interval4H: bullishSibling(domain.Interval4H),
		domain.Interval1D: bullishSibling(domain.Interval1D),
		domain.Interval1W: bullishSibling(domain.Interval1W),
	}

	res := ScoreTechnical(s, dataset)
	// +4 RSI, +4 MACD, +3 EMA cross, +2 confirmation, +3 ADX,
	// +2 volume, +3 Bollinger, +3 divergence.
	if res.Score != 24 {
		t.Fatalf("want 24, got %d (%v)", res.Score, res.Reasons)
	}
	if len(res.Reasons) != 8 {
		t.Fatalf("want 8 reasons, got %d: %v", len(res.Reasons), res.Reasons)
	}
}

func TestConfirmTrendMissingSiblingsIsVacuous(t *testing.T) {
	s := stubSeries(domain.Interval1H, 100, 30)
	setLast(s.EMA12, 101)
	setLast(s.EMA26, 100)
	res := ScoreTechnical(s, EnrichedSet{domain.Interval1H: s})
	// +3 EMA cross, +2 bonus: no sibling can disconfirm.
	if res.Score != 5 {
		t.Fatalf("want 5, got %d (%v)", res.Score, res.Reasons)
	}
}

func TestConfirmTrendBlockedByBearishSibling(t *testing.T) {
	s := stubSeries(domain.Interval1H, 100, 30)
	setLast(s.EMA12, 101)
	setLast(s.EMA26, 100)

	bear := stubSeries(domain.Interval1D, 100, 30)
	setLast(bear.EMA12, 99)
	setLast(bear.EMA26, 100)

	res := ScoreTechnical(s, EnrichedSet{domain.Interval1H: s, domain.Interval1D: bear})
	if res.Score != 3 {
		t.Fatalf("bearish daily must block the bonus: want 3, got %d (%v)", res.Score, res.Reasons)
	}
}

func TestConfirmTrendExcludesPrimary(t *testing.T) {
	// A bearish 4h primary must not disconfirm its own downtrend.
	s := stubSeries(domain.Interval4H, 100, 30)
	setLast(s.EMA12, 99)
	setLast(s.EMA26, 100)
	res := ScoreTechnical(s, EnrichedSet{domain.Interval4H: s})
	// -3 EMA cross, -2 bonus.
	if res.Score != -5 {
		t.Fatalf("want -5, got %d (%v)", res.Score, res.Reasons)
	}
}

func TestScoreTechnicalVolatilityWidensRSIBands(t *testing.T) {
	s := stubSeries(domain.Interval1H, 100, 30)
	// A noisy tail pushes realized volatility over the cutoff.
	for i := 0; i < len(s.closes); i++ {
		if i%2 == 0 {
			s.closes[i] = 110
		} else {
			s.closes[i] = 90
		}
	}
	if v := s.Volatility(); v <= rsiBandVolCutoff {
		t.Fatalf("fixture volatility %f must exceed cutoff", v)
	}
	setLast(s.RSI, 68) // overbought at the base band, not at the widened one
	res := ScoreTechnical(s, EnrichedSet{domain.Interval1H: s})
	if res.Score != 0 {
		t.Fatalf("widened bands must absorb RSI 68, got %d (%v)", res.Score, res.Reasons)
	}
}

func TestSiblingScores(t *testing.T) {
	primary := stubSeries(domain.Interval1H, 100, 30)
	sib := stubSeries(domain.Interval4H, 100, 30)
	setLast(sib.RSI, 20)
	dataset := EnrichedSet{domain.Interval1H: primary, domain.Interval4H: sib}

	scores := SiblingScores(domain.Interval1H, dataset)
	if len(scores) != 1 {
		t.Fatalf("want one sibling, got %v", scores)
	}
	if scores[domain.Interval4H] != 4 {
		t.Fatalf("want 4h score 4, got %d", scores[domain.Interval4H])
	}
	if _, ok := scores[domain.Interval1H]; ok {
		t.Fatalf("primary must be excluded")
	}
}
