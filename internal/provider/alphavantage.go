package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// sp500WindowDays is the number of trading days kept for the weekly
// change rule.
const sp500WindowDays = 7

// AlphaVantageProvider reads SPY daily closes, the equity-market proxy
// consumed by the macro scorer.
type AlphaVantageProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewAlphaVantageProvider(apiKey string, tracer trace.Tracer) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: alphaVantageBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(5, 15*time.Second),
	}
}

// FetchSP500 returns the latest SPY close and the closes of the last
// seven weekdays, oldest first. Weekend rows are discarded so holiday
// gaps do not shrink the window below trading days.
func (p *AlphaVantageProvider) FetchSP500(ctx context.Context) (float64, []float64, error) {
	_, span := p.tracer.Start(ctx, "alphavantage.fetch-sp500")
	defer span.End()

	if p.apiKey == "" {
		return 0, nil, fmt.Errorf("alpha vantage API key is not configured")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=SPY&apikey=%s&outputsize=compact",
		p.baseURL, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, nil, fmt.Errorf("alpha vantage API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Daily map[string]struct {
			Close string `json:"4. close"`
		} `json:"Time Series (Daily)"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, nil, fmt.Errorf("decode alpha vantage response: %w", err)
	}
	if len(payload.Daily) == 0 {
		return 0, nil, fmt.Errorf("alpha vantage returned no daily rows")
	}

	dates := make([]string, 0, len(payload.Daily))
	for date := range payload.Daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	closes := make([]float64, 0, len(dates))
	for _, date := range dates {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		v := parseFloatOrZero(payload.Daily[date].Close)
		if v == 0 {
			continue
		}
		closes = append(closes, v)
	}
	if len(closes) < sp500WindowDays {
		return 0, nil, fmt.Errorf("only %d weekday closes available, need %d", len(closes), sp500WindowDays)
	}

	window := closes[len(closes)-sp500WindowDays:]
	return window[len(window)-1], window, nil
}
