package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"crypto-swing-advisor/internal/analysis"
	"crypto-swing-advisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// ValidationError reports a candle series the validation gate rejected.
// The run is terminal; callers should not retry with the same data.
type ValidationError struct {
	Symbol   string
	Interval domain.Interval
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid price data for %s %s: %s", e.Symbol, e.Interval, e.Reason)
}

// Commentator turns a finished report into prose. Nil means commentary
// is disabled.
type Commentator interface {
	Comment(ctx context.Context, report domain.AnalysisReport) (string, error)
}

// MarketData is the slice of MarketDataService the analysis pipeline
// consumes.
type MarketData interface {
	GetPriceData(ctx context.Context, symbol string) (domain.PriceDataSet, error)
	GetFundamentals(ctx context.Context, symbol string) domain.FundamentalMetrics
	GetMacro(ctx context.Context) domain.MacroMetrics
}

// AnalysisService runs the full single-pass pipeline: validate the
// primary series, enrich every available timeframe, score the three
// domains, and fuse them into a recommendation. It holds no state
// between runs.
type AnalysisService struct {
	tracer     trace.Tracer
	market     MarketData
	commentary Commentator
}

func NewAnalysisService(tracer trace.Tracer, market MarketData, commentary Commentator) *AnalysisService {
	return &AnalysisService{
		tracer:     tracer,
		market:     market,
		commentary: commentary,
	}
}

// Analyze produces the full report for one symbol and primary
// interval.
func (s *AnalysisService) Analyze(ctx context.Context, symbol string, interval domain.Interval) (domain.AnalysisReport, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.analyze")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	dataset, err := s.market.GetPriceData(ctx, symbol)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	primaryBars, ok := dataset[interval]
	if !ok {
		return domain.AnalysisReport{}, &ValidationError{Symbol: symbol, Interval: interval, Reason: "missing/invalid data"}
	}
	if ok, reason := analysis.Validate(primaryBars); !ok {
		return domain.AnalysisReport{}, &ValidationError{Symbol: symbol, Interval: interval, Reason: reason}
	}

	enriched := make(analysis.EnrichedSet, len(dataset))
	for _, iv := range domain.Intervals {
		bars, ok := dataset[iv]
		if !ok {
			continue
		}
		if ok, reason := analysis.Validate(bars); !ok {
			if iv == interval {
				return domain.AnalysisReport{}, &ValidationError{Symbol: symbol, Interval: iv, Reason: reason}
			}
			log.Printf("skipping %s %s: %s", symbol, iv, reason)
			continue
		}
		series, err := analysis.Enrich(bars, iv)
		if err != nil {
			if iv == interval {
				return domain.AnalysisReport{}, err
			}
			log.Printf("skipping %s %s: %v", symbol, iv, err)
			continue
		}
		enriched[iv] = series
	}
	primary, ok := enriched[interval]
	if !ok {
		return domain.AnalysisReport{}, &ValidationError{Symbol: symbol, Interval: interval, Reason: "missing/invalid data"}
	}

	fundamentals := s.market.GetFundamentals(ctx, symbol)
	macro := s.market.GetMacro(ctx)

	tech := analysis.ScoreTechnical(primary, enriched)
	fund := analysis.ScoreFundamental(fundamentals)
	macroScore := analysis.ScoreMacro(macro, interval)

	recommendation, err := analysis.Recommend(primary, tech, fund, macroScore, enriched)
	if err != nil {
		return domain.AnalysisReport{}, err
	}

	report := domain.AnalysisReport{
		Symbol:         symbol,
		Interval:       interval,
		Technical:      tech,
		Fundamental:    fund,
		Macro:          macroScore,
		Recommendation: recommendation,
	}

	if s.commentary != nil {
		commentary, err := s.commentary.Comment(ctx, report)
		if err != nil {
			log.Printf("commentary unavailable for %s %s: %v", symbol, interval, err)
		} else {
			report.Commentary = commentary
		}
	}
	return report, nil
}
