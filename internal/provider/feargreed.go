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

	"go.opentelemetry.io/otel/trace"
)

const fearGreedBaseURL = "https://api.alternative.me"

// fngTrendDays is the trailing window fetched for trend scoring.
const fngTrendDays = 7

// FearGreedProvider reads the crypto Fear & Greed index from
// alternative.me.
type FearGreedProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewFearGreedProvider(tracer trace.Tracer) *FearGreedProvider {
	return &FearGreedProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: fearGreedBaseURL,
		tracer:  tracer,
	}
}

// FetchIndex returns the latest index value and the trailing 7-day
// trend in chronological order, most recent last. The API reports
// newest first; the slice is reversed on the way in.
func (p *FearGreedProvider) FetchIndex(ctx context.Context) (int, []int, error) {
	_, span := p.tracer.Start(ctx, "feargreed.fetch-index")
	defer span.End()

	url := fmt.Sprintf("%s/fng/?limit=%d", strings.TrimRight(p.baseURL, "/"), fngTrendDays)
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
		return 0, nil, fmt.Errorf("fear & greed API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data []struct {
			Value string `json:"value"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, nil, fmt.Errorf("decode fear & greed response: %w", err)
	}
	if len(payload.Data) == 0 {
		return 0, nil, fmt.Errorf("fear & greed response has no rows")
	}

	trend := make([]int, 0, len(payload.Data))
	for i := len(payload.Data) - 1; i >= 0; i-- {
		value, err := strconv.Atoi(strings.TrimSpace(payload.Data[i].Value))
		if err != nil {
			return 0, nil, fmt.Errorf("parse fear & greed value: %w", err)
		}
		trend = append(trend, value)
	}
	return trend[len(trend)-1], trend, nil
}
