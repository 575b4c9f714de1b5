package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"crypto-swing-advisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	defaultProxyBaseURL   = "https://crypto-swing-proxy.fly.dev"
	defaultKrakenBaseURL  = "https://api.kraken.com"
	defaultFuturesBaseURL = "https://fapi.binance.com"

	klineLimit      = 200
	klineMaxRetries = 3
)

// KlineProvider fetches OHLCV candles for a trading pair. The primary
// source is the Binance spot API behind a relay proxy; when the proxy
// is geo-blocked (HTTP 451) or keeps failing, it falls through CoinCap
// candles, then Kraken OHLC, then Binance Futures.
type KlineProvider struct {
	client         *http.Client
	proxyBaseURL   string
	krakenBaseURL  string
	futuresBaseURL string
	retryDelay     time.Duration
	tracer         trace.Tracer
	coincap        *CoinCapProvider
}

func NewKlineProvider(proxyBaseURL string, coincap *CoinCapProvider, tracer trace.Tracer) *KlineProvider {
	if proxyBaseURL == "" {
		proxyBaseURL = defaultProxyBaseURL
	}
	return &KlineProvider{
		client:         &http.Client{Timeout: 10 * time.Second},
		proxyBaseURL:   proxyBaseURL,
		krakenBaseURL:  defaultKrakenBaseURL,
		futuresBaseURL: defaultFuturesBaseURL,
		retryDelay:     10 * time.Second,
		tracer:         tracer,
		coincap:        coincap,
	}
}

// FetchKlines returns up to 200 candles for the pair at the given
// interval, oldest first. Every fallback source is normalized to the
// same candle shape; fields a source cannot provide are zero.
func (p *KlineProvider) FetchKlines(ctx context.Context, pair string, interval domain.Interval) ([]domain.Candle, error) {
	ctx, span := p.tracer.Start(ctx, "klines.fetch")
	defer span.End()

	url := fmt.Sprintf("%s/proxy/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		p.proxyBaseURL, pair, interval, klineLimit)

	var lastErr error
	for attempt := 1; attempt <= klineMaxRetries; attempt++ {
		candles, retriable, err := p.fetchBinanceKlines(ctx, url, pair, interval)
		if err == nil {
			return candles, nil
		}
		lastErr = err
		if !retriable {
			break
		}
		log.Printf("klines via proxy failed for %s %s (attempt %d/%d): %v", pair, interval, attempt, klineMaxRetries, err)
		if attempt < klineMaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.retryDelay):
			}
		}
	}
	log.Printf("klines via proxy exhausted for %s %s, falling back to CoinCap: %v", pair, interval, lastErr)

	if candles, err := p.coincap.FetchCandles(ctx, pair, interval); err == nil {
		return candles, nil
	} else {
		log.Printf("CoinCap candles failed for %s %s, falling back to Kraken: %v", pair, interval, err)
	}
	if candles, err := p.fetchKrakenOHLC(ctx, pair, interval); err == nil {
		return candles, nil
	} else {
		log.Printf("Kraken OHLC failed for %s %s, falling back to Binance Futures: %v", pair, interval, err)
	}
	return p.fetchFuturesKlines(ctx, pair, interval)
}

// fetchBinanceKlines hits a Binance-shaped klines endpoint. The second
// return reports whether the caller may retry: an HTTP 451 or an
// in-band error payload is terminal for this source.
func (p *KlineProvider) fetchBinanceKlines(ctx context.Context, url, pair string, interval domain.Interval) ([]domain.Candle, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	if resp.StatusCode == http.StatusUnavailableForLegalReasons {
		return nil, false, fmt.Errorf("access blocked for legal reasons (451)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, true, fmt.Errorf("klines API error %d: %s", resp.StatusCode, string(body))
	}

	// Binance reports errors in-band as {"code": ..., "msg": ...}.
	var apiErr struct {
		Code *int   `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != nil {
		return nil, false, fmt.Errorf("klines API error: %s (code %d)", apiErr.Msg, *apiErr.Code)
	}

	var raw [][]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, true, fmt.Errorf("parse klines for %s: %w", pair, err)
	}

	candles := make([]domain.Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}
		openTime, err0 := asInt64(row[0])
		open, err1 := asFloat(row[1])
		high, err2 := asFloat(row[2])
		low, err3 := asFloat(row[3])
		closePrice, err4 := asFloat(row[4])
		volume, err5 := asFloat(row[5])
		if firstErr(err0, err1, err2, err3, err4, err5) != nil {
			return nil, true, fmt.Errorf("parse kline row for %s: %w", pair, firstErr(err0, err1, err2, err3, err4, err5))
		}
		candles = append(candles, domain.Candle{
			Symbol:   pair,
			Interval: interval,
			OpenTime: time.UnixMilli(openTime).UTC(),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
		})
	}
	return candles, false, nil
}

var krakenIntervalMinutes = map[domain.Interval]int{
	domain.Interval1H: 60,
	domain.Interval4H: 240,
	domain.Interval1D: 1440,
	domain.Interval1W: 10080,
}

// krakenPairs covers the majors whose Kraken name is not a plain
// USDT->USD swap.
var krakenPairs = map[string]string{
	"BTCUSDT": "XBTUSD",
	"ETHUSDT": "ETHUSD",
	"BNBUSDT": "BNBUSD",
	"ADAUSDT": "ADAUSD",
}

func krakenPair(pair string) string {
	if mapped, ok := krakenPairs[pair]; ok {
		return mapped
	}
	if len(pair) > 4 && pair[len(pair)-4:] == "USDT" {
		return pair[:len(pair)-4] + "USD"
	}
	return pair
}

func (p *KlineProvider) fetchKrakenOHLC(ctx context.Context, pair string, interval domain.Interval) ([]domain.Candle, error) {
	kp := krakenPair(pair)
	minutes, ok := krakenIntervalMinutes[interval]
	if !ok {
		minutes = 60
	}
	url := fmt.Sprintf("%s/0/public/OHLC?pair=%s&interval=%d", p.krakenBaseURL, kp, minutes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("kraken API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Error  []string                  `json:"error"`
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode kraken response: %w", err)
	}
	if len(payload.Error) > 0 {
		return nil, fmt.Errorf("kraken API error: %v", payload.Error)
	}
	rawRows, ok := payload.Result[kp]
	if !ok {
		return nil, fmt.Errorf("kraken returned no data for %s", kp)
	}
	var rows [][]any
	if err := json.Unmarshal(rawRows, &rows); err != nil {
		return nil, fmt.Errorf("parse kraken OHLC for %s: %w", kp, err)
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		// [time, open, high, low, close, vwap, volume, count]
		if len(row) < 7 {
			continue
		}
		ts, err0 := asInt64(row[0])
		open, err1 := asFloat(row[1])
		high, err2 := asFloat(row[2])
		low, err3 := asFloat(row[3])
		closePrice, err4 := asFloat(row[4])
		volume, err5 := asFloat(row[6])
		if firstErr(err0, err1, err2, err3, err4, err5) != nil {
			return nil, fmt.Errorf("parse kraken row for %s: %w", kp, firstErr(err0, err1, err2, err3, err4, err5))
		}
		candles = append(candles, domain.Candle{
			Symbol:   pair,
			Interval: interval,
			OpenTime: time.Unix(ts, 0).UTC(),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("kraken returned no data for %s", kp)
	}
	return candles, nil
}

func (p *KlineProvider) fetchFuturesKlines(ctx context.Context, pair string, interval domain.Interval) ([]domain.Candle, error) {
	url := fmt.Sprintf("%s/fapi/v1/klines?symbol=%s&interval=%s&limit=%d",
		p.futuresBaseURL, pair, interval, klineLimit)
	candles, _, err := p.fetchBinanceKlines(ctx, url, pair, interval)
	if err != nil {
		return nil, fmt.Errorf("binance futures: %w", err)
	}
	return candles, nil
}

// asFloat reads a JSON value that Binance-style APIs encode either as
// a number or as a numeric string.
func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	case json.Number:
		return x.Float64()
	default:
		return 0, fmt.Errorf("unexpected numeric type %T", v)
	}
}

func asInt64(v any) (int64, error) {
	f, err := asFloat(v)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
