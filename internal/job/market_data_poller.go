package job

import (
	"context"
	"log"
	"time"

	"crypto-swing-advisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// MarketWarmer is the slice of the market data service the poller
// drives.
type MarketWarmer interface {
	Warm(ctx context.Context, symbols []string)
	GetMacro(ctx context.Context) domain.MacroMetrics
}

// MarketDataPoller keeps the caches warm in the background so interactive
// analysis requests rarely wait on upstream APIs.
type MarketDataPoller struct {
	tracer        trace.Tracer
	market        MarketWarmer
	symbols       []string
	pollInterval  time.Duration
	macroInterval time.Duration
}

func NewMarketDataPoller(tracer trace.Tracer, market MarketWarmer, symbols []string, pollSecs, macroPollSecs int) *MarketDataPoller {
	return &MarketDataPoller{
		tracer:        tracer,
		market:        market,
		symbols:       symbols,
		pollInterval:  time.Duration(pollSecs) * time.Second,
		macroInterval: time.Duration(macroPollSecs) * time.Second,
	}
}

// Start launches the polling goroutines. Blocks until ctx is cancelled.
func (p *MarketDataPoller) Start(ctx context.Context) {
	log.Println("Market poller starting...")

	go p.pollLoop(ctx, "market-data", p.pollInterval, func(ctx context.Context) {
		p.warm(ctx)
	})
	go p.pollMacro(ctx)

	<-ctx.Done()
	log.Println("Market poller stopped")
}

func (p *MarketDataPoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	// Run immediately on start
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func (p *MarketDataPoller) warm(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "poller.warm")
	defer span.End()

	p.market.Warm(ctx, p.symbols)
}

func (p *MarketDataPoller) pollMacro(ctx context.Context) {
	// Stagger the first macro fetch so the kline burst settles first
	select {
	case <-ctx.Done():
		return
	case <-time.After(10 * time.Second):
	}

	p.refreshMacro(ctx)

	ticker := time.NewTicker(p.macroInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshMacro(ctx)
		}
	}
}

func (p *MarketDataPoller) refreshMacro(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "poller.refresh-macro")
	defer span.End()

	p.market.GetMacro(ctx)
}
