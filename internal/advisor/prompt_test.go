package advisor

import (
	"strings"
	"testing"

	"crypto-swing-advisor/internal/domain"
)

func sampleReport() domain.AnalysisReport {
	return domain.AnalysisReport{
		Symbol:   "BTC",
		Interval: domain.Interval4H,
		Technical: domain.ScoreResult{
			Score:   12,
			Reasons: []string{"RSI oversold (+4)", "EMA bullish crossover (+4)"},
		},
		Fundamental: domain.ScoreResult{
			Score:   8,
			Reasons: []string{"large market cap (+3)"},
		},
		Macro: domain.ScoreResult{
			Score:   -2,
			Reasons: []string{"VIX elevated (-1)"},
		},
		Recommendation: domain.Recommendation{
			Signal:     domain.SignalBuy,
			Confidence: 0.72,
			BuyPrice:   49250.50,
			SellPrice:  51800.25,
		},
	}
}

func TestBuildReportPromptContainsAllSections(t *testing.T) {
	prompt := BuildReportPrompt(sampleReport())

	for _, want := range []string{
		"Crypto: BTC",
		"Interval: 4h",
		"Technical (score: 12):",
		"- RSI oversold (+4)",
		"Fundamental (score: 8):",
		"- large market cap (+3)",
		"Macro (score: -2):",
		"- VIX elevated (-1)",
		"Raw signal: BUY (confidence: 72%)",
		"Suggested buy price: $49250.50",
		"Suggested sell price: $51800.25",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildReportPromptEmptySection(t *testing.T) {
	report := sampleReport()
	report.Macro = domain.ScoreResult{}

	prompt := BuildReportPrompt(report)
	if !strings.Contains(prompt, "Macro (score: 0):\n- no rules fired") {
		t.Fatalf("expected empty-section fallback, got:\n%s", prompt)
	}
}

func TestAnalystCharterShape(t *testing.T) {
	if !strings.Contains(analystCharter, "Never fabricate") {
		t.Fatal("expected no-fabrication rule in charter")
	}
	if !strings.Contains(analystCharter, "swing traders") {
		t.Fatal("expected audience in charter")
	}
}
