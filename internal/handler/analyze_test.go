package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-swing-advisor/internal/domain"
	"crypto-swing-advisor/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

var handlerTracer = trace.NewNoopTracerProvider().Tracer("test")

func smoothBars(iv domain.Interval, n int) []domain.Candle {
	bars := make([]domain.Candle, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		base := 100 + 2*math.Sin(float64(i)/5) + 0.05*float64(i)
		bars[i] = domain.Candle{
			Symbol:   "BTCUSDT",
			Interval: iv,
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     base - 0.2,
			High:     base + 0.5,
			Low:      base - 0.5,
			Close:    base,
			Volume:   1000 + 10*float64(i%7),
		}
	}
	return bars
}

type stubMarketData struct {
	dataset domain.PriceDataSet
}

func (s *stubMarketData) GetPriceData(ctx context.Context, symbol string) (domain.PriceDataSet, error) {
	return s.dataset, nil
}

func (s *stubMarketData) GetFundamentals(ctx context.Context, symbol string) domain.FundamentalMetrics {
	return domain.FundamentalMetrics{MarketCap: 2e11, Volume24h: 1.5e10}
}

func (s *stubMarketData) GetMacro(ctx context.Context) domain.MacroMetrics {
	return domain.MacroMetrics{FearGreedIndex: 50, VIXValue: 20, FedInterestRate: 3, UnemploymentRate: 4.5}
}

func newAnalyzeRouter(market service.MarketData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &Handler{
		tracer:          handlerTracer,
		analysisService: service.NewAnalysisService(handlerTracer, market, nil),
	}
	r.GET("/api/analyze/:symbol", h.Analyze)
	return r
}

func TestAnalyzeEndpoint(t *testing.T) {
	dataset := make(domain.PriceDataSet)
	for _, iv := range domain.Intervals {
		dataset[iv] = smoothBars(iv, 60)
	}
	r := newAnalyzeRouter(&stubMarketData{dataset: dataset})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/analyze/btc?interval=4h", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var report domain.AnalysisReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if report.Symbol != "BTC" || report.Interval != domain.Interval4H {
		t.Fatalf("unexpected report header: %s %s", report.Symbol, report.Interval)
	}
	if report.Recommendation.Signal == "" {
		t.Fatal("expected a signal in the report")
	}
}

func TestAnalyzeEndpointBadInterval(t *testing.T) {
	r := newAnalyzeRouter(&stubMarketData{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/analyze/btc?interval=5m", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestAnalyzeEndpointInvalidData(t *testing.T) {
	dataset := domain.PriceDataSet{
		domain.Interval1H: smoothBars(domain.Interval1H, 5),
	}
	r := newAnalyzeRouter(&stubMarketData{dataset: dataset})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/analyze/btc?interval=1h", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["error"] != "insufficient history" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
}

type stubCandleRepo struct {
	candles []domain.Candle

	lastSymbol   string
	lastInterval domain.Interval
	lastLimit    int
}

func (s *stubCandleRepo) GetCandles(ctx context.Context, symbol string, interval domain.Interval, limit int) ([]domain.Candle, error) {
	s.lastSymbol = symbol
	s.lastInterval = interval
	s.lastLimit = limit
	return s.candles, nil
}

func (s *stubCandleRepo) UpsertCandles(ctx context.Context, candles []domain.Candle) error {
	return nil
}

func newCandlesRouter(repo *stubCandleRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &Handler{
		tracer:        handlerTracer,
		marketService: service.NewMarketDataService(handlerTracer, nil, nil, nil, nil, nil, nil, repo, nil),
	}
	r.GET("/api/candles/:symbol", h.GetCandles)
	return r
}

func TestGetCandlesEndpoint(t *testing.T) {
	repo := &stubCandleRepo{candles: smoothBars(domain.Interval1D, 3)}
	r := newCandlesRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/candles/btc?interval=1d&limit=50", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if repo.lastSymbol != "BTCUSDT" || repo.lastInterval != domain.Interval1D || repo.lastLimit != 50 {
		t.Fatalf("unexpected repo args: %s %s %d", repo.lastSymbol, repo.lastInterval, repo.lastLimit)
	}
	var body struct {
		Symbol  string          `json:"symbol"`
		Candles []domain.Candle `json:"candles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body.Symbol != "BTCUSDT" || len(body.Candles) != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetCandlesEndpointBadInterval(t *testing.T) {
	r := newCandlesRouter(&stubCandleRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/candles/btc?interval=15m", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestGetCandlesEndpointLimitClamp(t *testing.T) {
	repo := &stubCandleRepo{}
	r := newCandlesRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/candles/btc?limit=9999", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if repo.lastLimit != 100 {
		t.Fatalf("out-of-range limit should fall back to 100, got %d", repo.lastLimit)
	}
}
