package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const fredBaseURL = "https://api.stlouisfed.org/fred"

// FREDProvider reads economic series observations from the St. Louis
// Fed API. All series share one key and one rate limiter.
type FREDProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewFREDProvider(apiKey string, tracer trace.Tracer) *FREDProvider {
	return &FREDProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: fredBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(20, 3*time.Second),
	}
}

// FetchVIX returns the latest VIX close and its trailing 7-observation
// trend, chronological.
func (p *FREDProvider) FetchVIX(ctx context.Context) (float64, []float64, error) {
	values, err := p.fetchSeries(ctx, "VIXCLS", 7)
	if err != nil {
		return 0, nil, err
	}
	return values[len(values)-1], values, nil
}

// FetchFedRate returns the latest effective federal funds rate.
func (p *FREDProvider) FetchFedRate(ctx context.Context) (float64, error) {
	values, err := p.fetchSeries(ctx, "FEDFUNDS", 1)
	if err != nil {
		return 0, err
	}
	return values[len(values)-1], nil
}

// FetchCPI returns the two most recent CPI readings, current first.
func (p *FREDProvider) FetchCPI(ctx context.Context) (current, previous float64, err error) {
	values, err := p.fetchSeries(ctx, "CPIAUCSL", 2)
	if err != nil {
		return 0, 0, err
	}
	if len(values) < 2 {
		return 0, 0, fmt.Errorf("CPI series has %d observations, need 2", len(values))
	}
	return values[len(values)-1], values[len(values)-2], nil
}

// FetchGDP returns the two most recent valid GDP readings, current
// first. The GDP series carries placeholder observations ("." rows,
// thousands separators, occasional junk) that are dropped before the
// comparison.
func (p *FREDProvider) FetchGDP(ctx context.Context) (current, previous float64, err error) {
	values, err := p.fetchSeries(ctx, "GDP", 20)
	if err != nil {
		return 0, 0, err
	}
	if len(values) < 2 {
		return 0, 0, fmt.Errorf("GDP series has %d valid observations, need 2", len(values))
	}
	return values[len(values)-1], values[len(values)-2], nil
}

// FetchUnemployment returns the latest U.S. unemployment rate.
func (p *FREDProvider) FetchUnemployment(ctx context.Context) (float64, error) {
	values, err := p.fetchSeries(ctx, "UNRATE", 1)
	if err != nil {
		return 0, err
	}
	return values[len(values)-1], nil
}

// fetchSeries returns the last limit valid observations of a series in
// chronological order. Invalid observations are skipped, so the result
// may be shorter than limit.
func (p *FREDProvider) fetchSeries(ctx context.Context, seriesID string, limit int) ([]float64, error) {
	_, span := p.tracer.Start(ctx, "fred.fetch-series")
	defer span.End()

	if p.apiKey == "" {
		return nil, fmt.Errorf("FRED API key is not configured")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/series/observations?series_id=%s&api_key=%s&file_type=json&limit=%d&sort_order=desc",
		p.baseURL, seriesID, p.apiKey, limit)
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
		return nil, fmt.Errorf("FRED API error %d for %s: %s", resp.StatusCode, seriesID, string(body))
	}

	var payload struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode FRED response for %s: %w", seriesID, err)
	}
	if len(payload.Observations) == 0 {
		return nil, fmt.Errorf("FRED series %s has no observations", seriesID)
	}

	// Observations arrive newest first; reverse to chronological while
	// filtering.
	values := make([]float64, 0, len(payload.Observations))
	invalid := 0
	for i := len(payload.Observations) - 1; i >= 0; i-- {
		obs := payload.Observations[i]
		v, ok := cleanObservation(obs.Value)
		if !ok {
			invalid++
			continue
		}
		values = append(values, v)
	}
	if invalid > 0 {
		log.Printf("FRED series %s: dropped %d invalid observations", seriesID, invalid)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("FRED series %s has no valid observations", seriesID)
	}
	return values, nil
}

// cleanObservation parses a FRED value string. Placeholder dots, empty
// strings, malformed numbers and non-positive readings are rejected.
func cleanObservation(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "." {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	if strings.Count(s, ".") > 1 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
