package advisor

import (
	"fmt"
	"strings"

	"crypto-swing-advisor/internal/domain"
)

const analystCharter = `You are an expert crypto trading analyst. You interpret technical, fundamental and macroeconomic analysis results to write a synthesis useful to experienced swing traders.

Rules:
- Work only from the data you are given. Never fabricate indicator values or news.
- Reference the specific scores and reasons when making observations.
- Express uncertainty when the three analysis domains conflict.
- Structure the synthesis: market backdrop first, then the asset's technicals, then fundamentals, then the overall read.
- Close with how the suggested entry and exit levels relate to the analysis, without inventing new levels.
- Keep it under 300 words. No financial advice disclaimers.`

// BuildReportPrompt renders one analysis report as the user message
// for the synthesis completion.
func BuildReportPrompt(report domain.AnalysisReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Crypto: %s\n", report.Symbol)
	fmt.Fprintf(&sb, "Interval: %s\n", report.Interval)

	writeSection(&sb, "Technical", report.Technical)
	writeSection(&sb, "Fundamental", report.Fundamental)
	writeSection(&sb, "Macro", report.Macro)

	rec := report.Recommendation
	fmt.Fprintf(&sb, "\nRaw signal: %s (confidence: %.0f%%)\n", rec.Signal, rec.Confidence*100)
	fmt.Fprintf(&sb, "Suggested buy price: $%.2f\n", rec.BuyPrice)
	fmt.Fprintf(&sb, "Suggested sell price: $%.2f\n", rec.SellPrice)

	return sb.String()
}

func writeSection(sb *strings.Builder, name string, result domain.ScoreResult) {
	fmt.Fprintf(sb, "\n%s (score: %d):\n", name, result.Score)
	if len(result.Reasons) == 0 {
		sb.WriteString("- no rules fired\n")
		return
	}
	for _, reason := range result.Reasons {
		fmt.Fprintf(sb, "- %s\n", reason)
	}
}
