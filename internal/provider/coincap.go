package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crypto-swing-advisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coincapBaseURL = "https://rest.coincap.io/v3"

// AssetIDMap resolves a ticker symbol (lower-cased) to a CoinCap asset
// id. It is built once at startup and treated as read-only afterwards.
type AssetIDMap map[string]string

// Lookup resolves a trading-pair or bare symbol to an asset id. Unknown
// symbols fall back to the lower-cased symbol with any USDT suffix
// stripped, which matches CoinCap ids for most single-word assets.
func (m AssetIDMap) Lookup(symbol string) string {
	s := strings.ToLower(strings.TrimSuffix(strings.ToUpper(symbol), "USDT"))
	if id, ok := m[s]; ok {
		return id
	}
	return s
}

// DefaultAssetIDs is the startup fallback when the top-assets endpoint
// is unreachable.
func DefaultAssetIDs() AssetIDMap {
	return AssetIDMap{
		"btc": "bitcoin",
		"eth": "ethereum",
		"bnb": "binance-coin",
		"ada": "cardano",
		"tao": "bittensor",
	}
}

// CoinCapProvider serves asset metadata and candle fallback data from
// the CoinCap v3 REST API. All calls require an API key and run behind
// a shared rate limiter.
type CoinCapProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	ids     AssetIDMap
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewCoinCapProvider(apiKey string, ids AssetIDMap, tracer trace.Tracer) *CoinCapProvider {
	if ids == nil {
		ids = DefaultAssetIDs()
	}
	return &CoinCapProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: coincapBaseURL,
		apiKey:  apiKey,
		ids:     ids,
		tracer:  tracer,
		limiter: NewRateLimiter(10, 6*time.Second),
	}
}

// FetchAssetIDs returns the symbol->id map for the top 100 assets by
// market cap. Callers feed the result back through NewCoinCapProvider
// at startup.
func (p *CoinCapProvider) FetchAssetIDs(ctx context.Context) (AssetIDMap, error) {
	_, span := p.tracer.Start(ctx, "coincap.fetch-asset-ids")
	defer span.End()

	if p.apiKey == "" {
		return nil, fmt.Errorf("coincap API key is not configured")
	}
	url := fmt.Sprintf("%s/assets?limit=100&apiKey=%s", p.baseURL, p.apiKey)
	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch asset ids: %w", err)
	}

	var payload struct {
		Data []struct {
			ID     string `json:"id"`
			Symbol string `json:"symbol"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse asset ids: %w", err)
	}
	ids := make(AssetIDMap, len(payload.Data))
	for _, asset := range payload.Data {
		ids[strings.ToLower(asset.Symbol)] = asset.ID
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("coincap returned no assets")
	}
	return ids, nil
}

// AssetID resolves the CoinCap asset id behind a symbol, for callers
// that key other upstreams (DeFiLlama) by it.
func (p *CoinCapProvider) AssetID(symbol string) string {
	return p.ids.Lookup(symbol)
}

// FetchFundamentals returns market cap and 24h volume for the asset
// behind symbol. TVL comes from DeFiLlama, not from here.
func (p *CoinCapProvider) FetchFundamentals(ctx context.Context, symbol string) (domain.FundamentalMetrics, error) {
	_, span := p.tracer.Start(ctx, "coincap.fetch-fundamentals")
	defer span.End()

	if p.apiKey == "" {
		return domain.FundamentalMetrics{}, fmt.Errorf("coincap API key is not configured")
	}
	id := p.ids.Lookup(symbol)
	url := fmt.Sprintf("%s/assets/%s?apiKey=%s", p.baseURL, id, p.apiKey)
	body, err := p.doRequest(ctx, url)
	if err != nil {
		return domain.FundamentalMetrics{}, fmt.Errorf("fetch fundamentals for %s: %w", id, err)
	}

	var payload struct {
		Data struct {
			MarketCapUSD string `json:"marketCapUsd"`
			VolumeUSD24h string `json:"volumeUsd24Hr"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.FundamentalMetrics{}, fmt.Errorf("parse fundamentals for %s: %w", id, err)
	}
	return domain.FundamentalMetrics{
		MarketCap: parseFloatOrZero(payload.Data.MarketCapUSD),
		Volume24h: parseFloatOrZero(payload.Data.VolumeUSD24h),
	}, nil
}

var coincapIntervals = map[domain.Interval]string{
	domain.Interval1H: "h1",
	domain.Interval4H: "h4",
	domain.Interval1D: "d1",
	domain.Interval1W: "d7",
}

// FetchCandles is the candle fallback used when the Binance proxy is
// unavailable.
func (p *CoinCapProvider) FetchCandles(ctx context.Context, pair string, interval domain.Interval) ([]domain.Candle, error) {
	_, span := p.tracer.Start(ctx, "coincap.fetch-candles")
	defer span.End()

	if p.apiKey == "" {
		return nil, fmt.Errorf("coincap API key is not configured")
	}
	ccInterval, ok := coincapIntervals[interval]
	if !ok {
		ccInterval = "h1"
	}
	id := p.ids.Lookup(pair)
	url := fmt.Sprintf("%s/candles?exchange=binance_timestamps&interval=%s&baseId=%s&apiKey=%s",
		p.baseURL, ccInterval, id, p.apiKey)
	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch candles for %s: %w", id, err)
	}

	var payload struct {
		Data []struct {
			Open   string `json:"open"`
			High   string `json:"high"`
			Low    string `json:"low"`
			Close  string `json:"close"`
			Volume string `json:"volume"`
			Period int64  `json:"period"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse candles for %s: %w", id, err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("coincap returned no candles for %s", id)
	}

	candles := make([]domain.Candle, 0, len(payload.Data))
	for _, row := range payload.Data {
		candles = append(candles, domain.Candle{
			Symbol:   pair,
			Interval: interval,
			OpenTime: time.UnixMilli(row.Period).UTC(),
			Open:     parseFloatOrZero(row.Open),
			High:     parseFloatOrZero(row.High),
			Low:      parseFloatOrZero(row.Low),
			Close:    parseFloatOrZero(row.Close),
			Volume:   parseFloatOrZero(row.Volume),
		})
	}
	return candles, nil
}

func (p *CoinCapProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coincap API error %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
