package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"crypto-swing-advisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestNewMarketDataPollerIntervals(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	poller := NewMarketDataPoller(tracer, &stubMarket{}, []string{"BTC"}, 2, 60)
	if poller.pollInterval != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %v", poller.pollInterval)
	}
	if poller.macroInterval != time.Minute {
		t.Fatalf("expected 1m macro interval, got %v", poller.macroInterval)
	}
}

func TestMarketDataPollerStartWarmsImmediately(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubMarket{}
	poller := NewMarketDataPoller(tracer, stub, []string{"BTC", "ETH"}, 1, 60)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	eventually(t, func() bool { return stub.warmCalls() > 0 })
	cancel()

	if got := stub.lastSymbols(); len(got) != 2 || got[0] != "BTC" {
		t.Fatalf("unexpected symbols: %+v", got)
	}
}

func TestMarketDataPollerStopsOnCancel(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubMarket{}
	poller := NewMarketDataPoller(tracer, stub, []string{"BTC"}, 1, 60)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}

func TestRefreshMacro(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubMarket{}
	poller := NewMarketDataPoller(tracer, stub, []string{"BTC"}, 1, 60)

	poller.refreshMacro(context.Background())
	if stub.macroCallCount() != 1 {
		t.Fatalf("expected 1 macro refresh, got %d", stub.macroCallCount())
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

type stubMarket struct {
	mu      sync.Mutex
	warms   int
	macro   int
	symbols []string
}

func (s *stubMarket) Warm(ctx context.Context, symbols []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warms++
	s.symbols = append([]string(nil), symbols...)
}

func (s *stubMarket) GetMacro(ctx context.Context) domain.MacroMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.macro++
	return domain.MacroMetrics{}
}

func (s *stubMarket) warmCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warms
}

func (s *stubMarket) macroCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.macro
}

func (s *stubMarket) lastSymbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.symbols...)
}
