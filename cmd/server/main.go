package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"insidermonitor/internal/config"
	"insidermonitor/internal/httpx"
	"insidermonitor/internal/insider"
	"insidermonitor/internal/quote"
	"insidermonitor/internal/quote/yahoo"
)

// pageScraper and priceFetcher are the two pipeline stages behind /api/data.
type pageScraper interface {
	Scrape(ctx context.Context) ([]insider.TradeRecord, []string, error)
}

type priceFetcher interface {
	Prices(ctx context.Context, symbols []string) (map[string]string, error)
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	httpClient := httpx.New(timeout)

	scraper := insider.New(insider.Config{
		URL:       cfg.Insider.URL,
		UserAgent: cfg.Insider.UserAgent,
	}, httpClient, log)

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
	}, yahooClient, log)
	if err != nil {
		log.Fatal("fetcher", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		handleData(w, r.Context(), scraper, fetcher, log)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(mux, log))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server", zap.Error(err))
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// handleData runs the whole pipeline for one request: scrape, price, enrich.
// Any pipeline failure becomes a 500 with a JSON error object; there are no
// partial responses.
func handleData(w http.ResponseWriter, ctx context.Context, s pageScraper, f priceFetcher, log *zap.Logger) {
	records, symbols, err := s.Scrape(ctx)
	if err != nil {
		log.Warn("scrape failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch data: "+err.Error())
		return
	}

	prices, err := f.Prices(ctx, symbols)
	if err != nil {
		log.Warn("price fetch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch prices: "+err.Error())
		return
	}

	for i := range records {
		price, ok := prices[records[i].Symbol]
		if !ok {
			price = insider.NA
		}
		records[i].RealTimePrice = price
	}

	// Serve [] rather than null for an empty table.
	if records == nil {
		records = []insider.TradeRecord{}
	}
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(records)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
