package provider

import (
	"context"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestFearGreedFetchIndex(t *testing.T) {
	p := NewFearGreedProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "https://example.com"
	p.client = stubClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/fng/" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("limit") != "7" {
			t.Fatalf("unexpected limit: %s", req.URL.RawQuery)
		}
		// Newest first, as the API serves it.
		body := `{"data":[{"value":"63"},{"value":"60"},{"value":"55"},{"value":"50"},{"value":"45"},{"value":"40"},{"value":"35"}]}`
		return jsonResponse(http.StatusOK, body), nil
	})

	latest, trend, err := p.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != 63 {
		t.Fatalf("expected latest 63, got %d", latest)
	}
	if len(trend) != 7 || trend[0] != 35 || trend[6] != 63 {
		t.Fatalf("trend must be chronological, got %v", trend)
	}
}

func TestFearGreedFetchIndexEmpty(t *testing.T) {
	p := NewFearGreedProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = stubClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":[]}`), nil
	})
	if _, _, err := p.FetchIndex(context.Background()); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestFearGreedFetchIndexHTTPError(t *testing.T) {
	p := NewFearGreedProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = stubClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `rate limited`), nil
	})
	if _, _, err := p.FetchIndex(context.Background()); err == nil {
		t.Fatalf("expected error for HTTP 429")
	}
}
