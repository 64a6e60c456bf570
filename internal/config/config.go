package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// Optional .env for local development; real env always wins.
	_ = godotenv.Load(".env")
}

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Insider struct {
	URL       string `json:"url"`
	UserAgent string `json:"user_agent"`
}

type Quotes struct {
	QuoteURL       string `json:"quote_url"`
	ChartURL       string `json:"chart_url"`
	MaxConcurrency int    `json:"max_concurrency"`
	CacheMaxSets   int    `json:"cache_max_sets"`
	DelayMinMs     int    `json:"delay_min_ms"`
	DelayMaxMs     int    `json:"delay_max_ms"`
}

type Config struct {
	Server  Server  `json:"server"`
	Insider Insider `json:"insider"`
	Quotes  Quotes  `json:"quotes"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 30},
		Insider: Insider{
			URL:       "http://insider-monitor.com/insider_stock_purchases.html",
			UserAgent: "Mozilla/5.0",
		},
		Quotes: Quotes{
			QuoteURL:       "https://query1.finance.yahoo.com/v7/finance/quote",
			ChartURL:       "https://query1.finance.yahoo.com/v8/finance/chart",
			MaxConcurrency: 10,
			CacheMaxSets:   100,
			DelayMinMs:     500,
			DelayMaxMs:     1000,
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		if x := atoi(v); x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("INSIDER_URL"); v != "" {
		cfg.Insider.URL = v
	}
	if v := os.Getenv("INSIDER_USER_AGENT"); v != "" {
		cfg.Insider.UserAgent = v
	}
	if v := os.Getenv("YAHOO_QUOTE_URL"); v != "" {
		cfg.Quotes.QuoteURL = v
	}
	if v := os.Getenv("YAHOO_CHART_URL"); v != "" {
		cfg.Quotes.ChartURL = v
	}
	if v := os.Getenv("QUOTE_MAX_CONCURRENCY"); v != "" {
		if x := atoi(v); x > 0 {
			cfg.Quotes.MaxConcurrency = x
		}
	}
	if v := os.Getenv("QUOTE_CACHE_MAX_SETS"); v != "" {
		if x := atoi(v); x > 0 {
			cfg.Quotes.CacheMaxSets = x
		}
	}
	if v := os.Getenv("QUOTE_DELAY_MIN_MS"); v != "" {
		if x := atoi(v); x >= 0 {
			cfg.Quotes.DelayMinMs = x
		}
	}
	if v := os.Getenv("QUOTE_DELAY_MAX_MS"); v != "" {
		if x := atoi(v); x >= 0 {
			cfg.Quotes.DelayMaxMs = x
		}
	}
}

func atoi(s string) int {
	var x int
	_, _ = fmt.Sscanf(s, "%d", &x)
	return x
}
