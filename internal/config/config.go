package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	RedisURL    string

	CoinCapAPIKey      string
	FREDAPIKey         string
	AlphaVantageAPIKey string
	KlineProxyBaseURL  string

	PollSecs      int
	PollSymbols   []string
	MacroPollSecs int

	OpenAIAPIKey string
	OpenAIModel  string

	APIKey string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		CoinCapAPIKey:      strings.TrimSpace(os.Getenv("COINCAP_API_KEY")),
		FREDAPIKey:         strings.TrimSpace(os.Getenv("FRED_API_KEY")),
		AlphaVantageAPIKey: strings.TrimSpace(os.Getenv("ALPHA_VANTAGE_API_KEY")),
		KlineProxyBaseURL:  strings.TrimSpace(os.Getenv("KLINE_PROXY_BASE_URL")),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.CoinCapAPIKey == "" {
		log.Println("Warning: COINCAP_API_KEY not set, fundamental data and candle fallback disabled")
	}
	if cfg.FREDAPIKey == "" {
		log.Println("Warning: FRED_API_KEY not set, macro series disabled")
	}
	if cfg.AlphaVantageAPIKey == "" {
		log.Println("Warning: ALPHA_VANTAGE_API_KEY not set, S&P 500 data disabled")
	}

	cfg.PollSecs = 300
	if v := strings.TrimSpace(os.Getenv("POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollSecs = n
		}
	}

	cfg.MacroPollSecs = 900
	if v := strings.TrimSpace(os.Getenv("MACRO_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MacroPollSecs = n
		}
	}

	cfg.PollSymbols = []string{"BTC", "ETH"}
	if v := strings.TrimSpace(os.Getenv("POLL_SYMBOLS")); v != "" {
		symbols := make([]string, 0)
		for _, s := range strings.Split(v, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				symbols = append(symbols, s)
			}
		}
		if len(symbols) > 0 {
			cfg.PollSymbols = symbols
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor commentary will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv("API_KEY"))
	if cfg.APIKey == "" {
		log.Println("Warning: API_KEY not set, API endpoints are unauthenticated")
	}

	return cfg
}
