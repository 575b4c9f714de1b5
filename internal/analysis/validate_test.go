package analysis

import (
	"math"
	"testing"

	"crypto-swing-advisor/internal/domain"
)

func TestValidateEmpty(t *testing.T) {
	ok, reason := Validate(nil)
	if ok || reason != "missing/invalid data" {
		t.Fatalf("got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateInsufficientHistory(t *testing.T) {
	ok, reason := Validate(genCandles(10))
	if ok || reason != "insufficient history" {
		t.Fatalf("got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateNullClose(t *testing.T) {
	bars := genCandles(30)
	bars[15].Close = 0
	ok, reason := Validate(bars)
	if ok || reason != "missing/null close values" {
		t.Fatalf("got ok=%v reason=%q", ok, reason)
	}

	bars = genCandles(30)
	bars[15].Close = math.NaN()
	ok, reason = Validate(bars)
	if ok || reason != "missing/null close values" {
		t.Fatalf("got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateSuddenVolatility(t *testing.T) {
	bars := genCandles(30)
	bars[len(bars)-1].Close = bars[len(bars)-6].Close * 1.25
	ok, reason := Validate(bars)
	if ok || reason != "sudden volatility" {
		t.Fatalf("got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateAbnormalVolume(t *testing.T) {
	bars := genCandles(30)
	bars[len(bars)-1].Volume = 50000
	ok, reason := Validate(bars)
	if ok || reason != "abnormal volume" {
		t.Fatalf("got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateAccepts(t *testing.T) {
	ok, reason := Validate(genCandles(30))
	if !ok || reason != "valid" {
		t.Fatalf("got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateOrderOfRules(t *testing.T) {
	// A short series with a null close reports the length failure
	// first.
	bars := []domain.Candle{{Close: 0}}
	ok, reason := Validate(bars)
	if ok || reason != "insufficient history" {
		t.Fatalf("got ok=%v reason=%q", ok, reason)
	}
}
