package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"crypto-swing-advisor/internal/cache"
	"crypto-swing-advisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	klineCacheTTL       = 60 * time.Second
	fundamentalCacheTTL = 5 * time.Minute
	macroCacheTTL       = 15 * time.Minute
)

type KlineProvider interface {
	FetchKlines(ctx context.Context, pair string, interval domain.Interval) ([]domain.Candle, error)
}

type FundamentalProvider interface {
	FetchFundamentals(ctx context.Context, symbol string) (domain.FundamentalMetrics, error)
	AssetID(symbol string) string
}

type TVLProvider interface {
	FetchTVL(ctx context.Context, assetID string) (float64, error)
}

type FearGreedProvider interface {
	FetchIndex(ctx context.Context) (int, []int, error)
}

type EconomicProvider interface {
	FetchVIX(ctx context.Context) (float64, []float64, error)
	FetchFedRate(ctx context.Context) (float64, error)
	FetchCPI(ctx context.Context) (current, previous float64, err error)
	FetchGDP(ctx context.Context) (current, previous float64, err error)
	FetchUnemployment(ctx context.Context) (float64, error)
}

type EquityIndexProvider interface {
	FetchSP500(ctx context.Context) (float64, []float64, error)
}

type CandleRepository interface {
	GetCandles(ctx context.Context, symbol string, interval domain.Interval, limit int) ([]domain.Candle, error)
	UpsertCandles(ctx context.Context, candles []domain.Candle) error
}

// MarketDataService assembles everything one analysis run consumes:
// candles for all timeframes, fundamental metrics, and the macro
// backdrop. Reads are cache-first; upstream failures degrade to
// zero-valued metrics rather than failing the run.
type MarketDataService struct {
	tracer       trace.Tracer
	klines       KlineProvider
	fundamentals FundamentalProvider
	tvl          TVLProvider
	fearGreed    FearGreedProvider
	economy      EconomicProvider
	equityIndex  EquityIndexProvider
	repo         CandleRepository
	redis        cache.KV
}

func NewMarketDataService(
	tracer trace.Tracer,
	klines KlineProvider,
	fundamentals FundamentalProvider,
	tvl TVLProvider,
	fearGreed FearGreedProvider,
	economy EconomicProvider,
	equityIndex EquityIndexProvider,
	repo CandleRepository,
	redisClient cache.KV,
) *MarketDataService {
	return &MarketDataService{
		tracer:       tracer,
		klines:       klines,
		fundamentals: fundamentals,
		tvl:          tvl,
		fearGreed:    fearGreed,
		economy:      economy,
		equityIndex:  equityIndex,
		repo:         repo,
		redis:        redisClient,
	}
}

// Pair maps a bare symbol to its USDT trading pair.
func Pair(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(s, "USDT") {
		return s
	}
	return s + "USDT"
}

// GetPriceData fetches candles for every standard interval
// concurrently. Intervals whose every source failed are simply absent
// from the returned set; downstream scoring skips them.
func (s *MarketDataService) GetPriceData(ctx context.Context, symbol string) (domain.PriceDataSet, error) {
	ctx, span := s.tracer.Start(ctx, "market-data.get-price-data")
	defer span.End()

	pair := Pair(symbol)
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		dataset = make(domain.PriceDataSet, len(domain.Intervals))
	)
	for _, iv := range domain.Intervals {
		wg.Add(1)
		go func(iv domain.Interval) {
			defer wg.Done()
			candles, err := s.getKlines(ctx, pair, iv)
			if err != nil {
				log.Printf("price data unavailable for %s %s: %v", pair, iv, err)
				return
			}
			mu.Lock()
			dataset[iv] = candles
			mu.Unlock()
		}(iv)
	}
	wg.Wait()

	if len(dataset) == 0 {
		return nil, fmt.Errorf("no price data available for %s", pair)
	}
	return dataset, nil
}

func (s *MarketDataService) getKlines(ctx context.Context, pair string, interval domain.Interval) ([]domain.Candle, error) {
	key := fmt.Sprintf("klines:%s:%s", pair, interval)
	if s.redis != nil {
		var cached []domain.Candle
		if hit, err := cache.GetJSON(ctx, s.redis, key, &cached); err != nil {
			log.Printf("redis cache read error for %s: %v", key, err)
		} else if hit {
			return cached, nil
		}
	}

	candles, err := s.klines.FetchKlines(ctx, pair, interval)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, key, candles, klineCacheTTL); err != nil {
			log.Printf("redis cache write error for %s: %v", key, err)
		}
	}
	if s.repo != nil {
		if err := s.repo.UpsertCandles(ctx, candles); err != nil {
			log.Printf("candle upsert failed for %s %s: %v", pair, interval, err)
		}
	}
	return candles, nil
}

// GetFundamentals returns market cap, 24h volume and TVL for the
// symbol. Each upstream failure zeroes its fields after a log line.
func (s *MarketDataService) GetFundamentals(ctx context.Context, symbol string) domain.FundamentalMetrics {
	ctx, span := s.tracer.Start(ctx, "market-data.get-fundamentals")
	defer span.End()

	key := "fundamentals:" + Pair(symbol)
	if s.redis != nil {
		var cached domain.FundamentalMetrics
		if hit, err := cache.GetJSON(ctx, s.redis, key, &cached); err != nil {
			log.Printf("redis cache read error for %s: %v", key, err)
		} else if hit {
			return cached
		}
	}

	metrics, err := s.fundamentals.FetchFundamentals(ctx, symbol)
	if err != nil {
		log.Printf("fundamentals unavailable for %s: %v", symbol, err)
		metrics = domain.FundamentalMetrics{}
	}
	if tvl, err := s.tvl.FetchTVL(ctx, s.fundamentals.AssetID(symbol)); err != nil {
		log.Printf("TVL unavailable for %s: %v", symbol, err)
	} else {
		metrics.TVL = tvl
	}

	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, key, metrics, fundamentalCacheTTL); err != nil {
			log.Printf("redis cache write error for %s: %v", key, err)
		}
	}
	return metrics
}

// GetMacro returns the macroeconomic snapshot shared by every symbol.
// The seven upstream series are fetched concurrently; failed series
// stay zero-valued so their rules are skipped.
func (s *MarketDataService) GetMacro(ctx context.Context) domain.MacroMetrics {
	ctx, span := s.tracer.Start(ctx, "market-data.get-macro")
	defer span.End()

	const key = "macro"
	if s.redis != nil {
		var cached domain.MacroMetrics
		if hit, err := cache.GetJSON(ctx, s.redis, key, &cached); err != nil {
			log.Printf("redis cache read error for %s: %v", key, err)
		} else if hit {
			return cached
		}
	}

	var (
		m  domain.MacroMetrics
		wg sync.WaitGroup
	)
	run := func(name string, f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(); err != nil {
				log.Printf("macro series %s unavailable: %v", name, err)
			}
		}()
	}
	run("fear-greed", func() error {
		value, trend, err := s.fearGreed.FetchIndex(ctx)
		if err != nil {
			return err
		}
		m.FearGreedIndex, m.FNGTrend = value, trend
		return nil
	})
	run("vix", func() error {
		value, trend, err := s.economy.FetchVIX(ctx)
		if err != nil {
			return err
		}
		m.VIXValue, m.VIXTrend = value, trend
		return nil
	})
	run("fed-rate", func() error {
		rate, err := s.economy.FetchFedRate(ctx)
		if err != nil {
			return err
		}
		m.FedInterestRate = rate
		return nil
	})
	run("cpi", func() error {
		current, previous, err := s.economy.FetchCPI(ctx)
		if err != nil {
			return err
		}
		m.CPICurrent, m.CPIPrevious = current, previous
		return nil
	})
	run("gdp", func() error {
		current, previous, err := s.economy.FetchGDP(ctx)
		if err != nil {
			return err
		}
		m.GDPCurrent, m.GDPPrevious = current, previous
		return nil
	})
	run("unemployment", func() error {
		rate, err := s.economy.FetchUnemployment(ctx)
		if err != nil {
			return err
		}
		m.UnemploymentRate = rate
		return nil
	})
	run("sp500", func() error {
		value, values, err := s.equityIndex.FetchSP500(ctx)
		if err != nil {
			return err
		}
		m.SP500Value, m.SP500Values = value, values
		return nil
	})
	wg.Wait()

	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, key, m, macroCacheTTL); err != nil {
			log.Printf("redis cache write error for %s: %v", key, err)
		}
	}
	return m
}

// GetCandleHistory serves stored candles for the history endpoint.
func (s *MarketDataService) GetCandleHistory(ctx context.Context, symbol string, interval domain.Interval, limit int) ([]domain.Candle, error) {
	_, span := s.tracer.Start(ctx, "market-data.get-candle-history")
	defer span.End()

	if s.repo == nil {
		return nil, fmt.Errorf("candle history requires a database")
	}
	return s.repo.GetCandles(ctx, Pair(symbol), interval, limit)
}

// Warm refreshes price data and fundamentals for the given symbols;
// the poller calls it on a schedule so interactive requests mostly hit
// warm caches. The shared macro snapshot is refreshed on its own
// slower cadence.
func (s *MarketDataService) Warm(ctx context.Context, symbols []string) {
	ctx, span := s.tracer.Start(ctx, "market-data.warm")
	defer span.End()

	for _, symbol := range symbols {
		if _, err := s.GetPriceData(ctx, symbol); err != nil {
			log.Printf("warm: price data for %s: %v", symbol, err)
		}
		s.GetFundamentals(ctx, symbol)
	}
}
