package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"crypto-swing-advisor/internal/analysis"
	"crypto-swing-advisor/internal/domain"
	"crypto-swing-advisor/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Analyze godoc
// @Summary      Run a full analysis for a crypto asset
// @Description  Validates, enriches and scores every timeframe, then returns the fused recommendation with its reasoning
// @Tags         analysis
// @Produce      json
// @Param        symbol    path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        interval  query  string  false  "Primary interval (1h, 4h, 1d, 1w)"  default(1h)
// @Success      200  {object}  domain.AnalysisReport
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/analyze/{symbol} [get]
func (h *Handler) Analyze(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	interval, ok := domain.ParseInterval(c.DefaultQuery("interval", "1h"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported interval: " + c.Query("interval"),
			"supported_intervals": domain.Intervals,
		})
		return
	}
	span.SetAttributes(attribute.String("interval", string(interval)))

	report, err := h.analysisService.Analyze(ctx, symbol, interval)
	if err != nil {
		span.RecordError(err)
		var verr *service.ValidationError
		var cerr *analysis.ComputationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":    verr.Reason,
				"symbol":   verr.Symbol,
				"interval": verr.Interval,
			})
		case errors.As(err, &cerr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": cerr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetCandles godoc
// @Summary      Get historical OHLCV candles
// @Description  Returns stored candle data for a given asset and interval
// @Tags         candles
// @Produce      json
// @Param        symbol    path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        interval  query  string  false  "Candle interval (1h, 4h, 1d, 1w)"  default(1h)
// @Param        limit     query  int     false  "Number of candles (default 100, max 500)"  default(100)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/candles/{symbol} [get]
func (h *Handler) GetCandles(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-candles")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	interval, ok := domain.ParseInterval(c.DefaultQuery("interval", "1h"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported interval: " + c.Query("interval"),
			"supported_intervals": domain.Intervals,
		})
		return
	}

	limit := 100
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	candles, err := h.marketService.GetCandleHistory(ctx, symbol, interval, limit)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   service.Pair(symbol),
		"interval": interval,
		"candles":  candles,
	})
}
