package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-swing-advisor/internal/advisor"
	"crypto-swing-advisor/internal/cache"
	"crypto-swing-advisor/internal/config"
	"crypto-swing-advisor/internal/db"
	"crypto-swing-advisor/internal/handler"
	"crypto-swing-advisor/internal/job"
	"crypto-swing-advisor/internal/provider"
	"crypto-swing-advisor/internal/repository"
	"crypto-swing-advisor/internal/service"
	"crypto-swing-advisor/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "crypto-swing-advisor/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newCandleRepoFunc      = repository.NewCandleRepository
	fetchAssetIDsFunc      = fetchAssetIDs
	newMarketServiceFunc   = service.NewMarketDataService
	newMarketDataPollerFunc    = job.NewMarketDataPoller
	startPollerFunc        = func(p *job.MarketDataPoller, ctx context.Context) { go p.Start(ctx) }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// fetchAssetIDs resolves the symbol-to-CoinCap-id map once at startup.
// The bundled defaults cover the majors if the lookup fails or no API
// key is configured.
func fetchAssetIDs(ctx context.Context, apiKey string, tracer trace.Tracer) provider.AssetIDMap {
	ids := provider.DefaultAssetIDs()
	if apiKey == "" {
		return ids
	}
	lookup := provider.NewCoinCapProvider(apiKey, ids, tracer)
	fetched, err := lookup.FetchAssetIDs(ctx)
	if err != nil {
		log.Printf("asset id lookup failed, using defaults: %v", err)
		return ids
	}
	return fetched
}

// @title           Crypto Swing Advisor API
// @version         1.0
// @description     Multi-timeframe crypto analysis and recommendation service.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repository and run migrations
	candleRepo := newCandleRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := candleRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Upstream providers
	assetIDs := fetchAssetIDsFunc(ctx, cfg.CoinCapAPIKey, tracer)
	coincap := provider.NewCoinCapProvider(cfg.CoinCapAPIKey, assetIDs, tracer)
	klines := provider.NewKlineProvider(cfg.KlineProxyBaseURL, coincap, tracer)
	defillama := provider.NewDeFiLlamaProvider(tracer)
	fearGreed := provider.NewFearGreedProvider(tracer)
	fred := provider.NewFREDProvider(cfg.FREDAPIKey, tracer)
	alphaVantage := provider.NewAlphaVantageProvider(cfg.AlphaVantageAPIKey, tracer)

	var repo service.CandleRepository
	if db.Pool != nil {
		repo = candleRepo
	}
	var redisClient cache.KV
	if cache.Client != nil {
		redisClient = cache.Client
	}
	marketService := newMarketServiceFunc(
		tracer, klines, coincap, defillama, fearGreed, fred, alphaVantage, repo, redisClient,
	)

	// Optional LLM commentary
	var commentator service.Commentator
	if cfg.OpenAIAPIKey != "" {
		commentator = advisor.NewCommentaryService(tracer, advisor.NewOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
	} else {
		log.Println("OPENAI_API_KEY not set, commentary disabled")
	}
	analysisService := service.NewAnalysisService(tracer, marketService, commentator)

	// Start cache-warming poller (background goroutines, stopped by ctx cancel)
	poller := newMarketDataPollerFunc(tracer, marketService, cfg.PollSymbols, cfg.PollSecs, cfg.MacroPollSecs)
	startPollerFunc(poller, ctx)

	// Create handlers and routes
	h := newHandlerFunc(tracer, analysisService, marketService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-swing-advisor"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
