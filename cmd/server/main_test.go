package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"crypto-swing-advisor/internal/config"
	"crypto-swing-advisor/internal/job"
	"crypto-swing-advisor/internal/provider"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestFetchAssetIDsWithoutKey(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	ids := fetchAssetIDs(context.Background(), "", tracer)
	if len(ids) == 0 {
		t.Fatal("expected bundled defaults")
	}
	if ids.Lookup("BTC") != "bitcoin" {
		t.Fatalf("unexpected default mapping: %q", ids.Lookup("BTC"))
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origFetchAssetIDs := fetchAssetIDsFunc
	origStartPoller := startPollerFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			RedisURL:      "",
			DatabaseURL:   "",
			PollSecs:      1,
			MacroPollSecs: 1,
			PollSymbols:   []string{"BTC"},
			OpenAIModel:   "gpt-4o-mini",
		}
	}
	initPostgresFunc = func(context.Context, string) {}
	initRedisFunc = func(context.Context, string) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	fetchAssetIDsFunc = func(context.Context, string, trace.Tracer) provider.AssetIDMap {
		return provider.DefaultAssetIDs()
	}
	startPollerFunc = func(*job.MarketDataPoller, context.Context) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		fetchAssetIDsFunc = origFetchAssetIDs
		startPollerFunc = origStartPoller
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}
