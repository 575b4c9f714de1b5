package handler

import (
	"crypto-swing-advisor/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer          trace.Tracer
	analysisService *service.AnalysisService
	marketService   *service.MarketDataService
}

func New(tracer trace.Tracer, analysisService *service.AnalysisService, marketService *service.MarketDataService) *Handler {
	return &Handler{
		tracer:          tracer,
		analysisService: analysisService,
		marketService:   marketService,
	}
}

// RegisterRoutes mounts the API. An empty apiKey leaves the /api group
// unauthenticated.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/analyze/:symbol", h.Analyze)
	api.GET("/candles/:symbol", h.GetCandles)
}
