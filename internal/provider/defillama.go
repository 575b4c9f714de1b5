package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const defillamaBaseURL = "https://api.llama.fi"

// defillamaGeckoIDs maps CoinCap asset ids to the gecko id DeFiLlama
// keys its chain list by, where they differ.
var defillamaGeckoIDs = map[string]string{
	"binance-coin": "binancecoin",
	"xrp":          "ripple",
}

// DeFiLlamaProvider reads total value locked per chain from the public
// DeFiLlama API. No key, no rate limit.
type DeFiLlamaProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewDeFiLlamaProvider(tracer trace.Tracer) *DeFiLlamaProvider {
	return &DeFiLlamaProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defillamaBaseURL,
		tracer:  tracer,
	}
}

// FetchTVL returns the TVL in USD of the chain matching the asset id,
// or 0 when the asset is not a chain DeFiLlama tracks.
func (p *DeFiLlamaProvider) FetchTVL(ctx context.Context, assetID string) (float64, error) {
	_, span := p.tracer.Start(ctx, "defillama.fetch-tvl")
	defer span.End()

	geckoID := assetID
	if mapped, ok := defillamaGeckoIDs[assetID]; ok {
		geckoID = mapped
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v2/chains", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("defillama API error %d: %s", resp.StatusCode, string(body))
	}

	var chains []struct {
		GeckoID string  `json:"gecko_id"`
		TVL     float64 `json:"tvl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chains); err != nil {
		return 0, fmt.Errorf("decode defillama response: %w", err)
	}
	for _, chain := range chains {
		if chain.GeckoID == geckoID {
			return chain.TVL, nil
		}
	}
	return 0, nil
}
