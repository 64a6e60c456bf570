package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"insidermonitor/internal/config"
	"insidermonitor/internal/httpx"
	"insidermonitor/internal/insider"
	"insidermonitor/internal/quote"
	"insidermonitor/internal/quote/yahoo"
)

// fetch runs the scrape+enrich pipeline once and prints the result as JSON.
// Useful for eyeballing the upstream page without standing up the server.
func main() {
	var pageURL string
	var timeout int
	var configPath string
	var skipPrices bool

	flag.StringVar(&pageURL, "url", os.Getenv("INSIDER_URL"), "insider page URL (defaults to config)")
	flag.IntVar(&timeout, "timeout", 30, "request timeout seconds")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.BoolVar(&skipPrices, "skip-prices", false, "print parsed rows without price enrichment")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if pageURL != "" {
		cfg.Insider.URL = pageURL
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	zlog, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	scraper := insider.New(insider.Config{URL: cfg.Insider.URL, UserAgent: cfg.Insider.UserAgent}, httpClient, zlog)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	records, symbols, err := scraper.Scrape(ctx)
	if err != nil {
		log.Fatalf("scrape: %v", err)
	}

	if !skipPrices {
		yahooClient := yahoo.NewClient(
			yahoo.WithHTTPClient(httpClient.HTTP),
			yahoo.WithQuoteURL(cfg.Quotes.QuoteURL),
			yahoo.WithChartURL(cfg.Quotes.ChartURL),
		)
		fetcher, err := quote.NewFetcher(quote.Config{
			MaxConcurrency: cfg.Quotes.MaxConcurrency,
			CacheMaxSets:   cfg.Quotes.CacheMaxSets,
			DelayMin:       time.Duration(cfg.Quotes.DelayMinMs) * time.Millisecond,
			DelayMax:       time.Duration(cfg.Quotes.DelayMaxMs) * time.Millisecond,
		}, yahooClient, zlog)
		if err != nil {
			log.Fatalf("fetcher: %v", err)
		}
		prices, err := fetcher.Prices(ctx, symbols)
		if err != nil {
			log.Fatalf("prices: %v", err)
		}
		for i := range records {
			if p, ok := prices[records[i].Symbol]; ok {
				records[i].RealTimePrice = p
			} else {
				records[i].RealTimePrice = insider.NA
			}
		}
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	fmt.Println(string(out))
}
