package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"insidermonitor/internal/insider"
)

type fakeScraper struct {
	records []insider.TradeRecord
	symbols []string
	err     error
}

func (f fakeScraper) Scrape(context.Context) ([]insider.TradeRecord, []string, error) {
	return f.records, f.symbols, f.err
}

type fakeFetcher struct {
	prices map[string]string
	err    error
}

func (f fakeFetcher) Prices(context.Context, []string) (map[string]string, error) {
	return f.prices, f.err
}

func TestHandleData_EndToEnd(t *testing.T) {
	s := fakeScraper{
		records: []insider.TradeRecord{
			{Symbol: "AAPL", Company: "Apple Inc.", InsiderName: "Doe John", TradeType: "Purchase",
				ShareAndPrice: "100 $1500", Value: "$1,500.00", DateAndTime: "2025-01-02", AvgPrice: "15.00", RealTimePrice: insider.NA},
			{Symbol: "MSFT", Company: "Microsoft Corp.", InsiderName: "Smith Jane", TradeType: "Purchase",
				ShareAndPrice: "50 $400", Value: "$20,000.00", DateAndTime: "2025-01-03", AvgPrice: "400.00", RealTimePrice: insider.NA},
		},
		symbols: []string{"AAPL", "MSFT"},
	}
	f := fakeFetcher{prices: map[string]string{"AAPL": "$231.12000", "MSFT": "N/A"}}

	rr := httptest.NewRecorder()
	handleData(rr, context.Background(), s, f, zap.NewNop())
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var rows []map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	keys := []string{"symbol", "company", "insider_name", "trade_type", "share_and_price", "value", "date_and_time", "avg_price", "real_time_price"}
	for _, row := range rows {
		for _, k := range keys {
			if _, ok := row[k]; !ok {
				t.Fatalf("row missing key %q: %v", k, row)
			}
		}
		rtp := row["real_time_price"]
		if rtp != "N/A" && !strings.HasPrefix(rtp, "$") {
			t.Fatalf("real_time_price must be dollar-prefixed or N/A: %q", rtp)
		}
	}
	if rows[0]["real_time_price"] != "$231.12000" {
		t.Fatalf("AAPL price: %q", rows[0]["real_time_price"])
	}
	if rows[1]["real_time_price"] != "N/A" {
		t.Fatalf("MSFT price: %q", rows[1]["real_time_price"])
	}
}

func TestHandleData_SymbolMissingFromMapping(t *testing.T) {
	s := fakeScraper{
		records: []insider.TradeRecord{{Symbol: "BRK/B", AvgPrice: insider.NA}},
		symbols: []string{"BRK/B"},
	}
	f := fakeFetcher{prices: map[string]string{}}

	rr := httptest.NewRecorder()
	handleData(rr, context.Background(), s, f, zap.NewNop())

	var rows []map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rows[0]["real_time_price"] != "N/A" {
		t.Fatalf("lookup miss must serve N/A: %q", rows[0]["real_time_price"])
	}
}

func TestHandleData_FetchFailure(t *testing.T) {
	s := fakeScraper{err: &insider.FetchError{URL: "http://example.test", Status: 503}}

	rr := httptest.NewRecorder()
	handleData(rr, context.Background(), s, fakeFetcher{}, zap.NewNop())
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("want error key, got %s", rr.Body.String())
	}
	// No partial data alongside the error.
	if len(body) != 1 {
		t.Fatalf("error payload must be the only content: %v", body)
	}
}

func TestHandleData_EmptyTableServesEmptyArray(t *testing.T) {
	rr := httptest.NewRecorder()
	handleData(rr, context.Background(), fakeScraper{}, fakeFetcher{prices: map[string]string{}}, zap.NewNop())
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Fatalf("want [], got %q", got)
	}
}
