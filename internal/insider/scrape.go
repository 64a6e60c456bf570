package insider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"insidermonitor/internal/httpx"
)

// Config controls the Scraper.
type Config struct {
	URL       string
	UserAgent string
}

// Scraper fetches the insider-purchase page and extracts trade records.
type Scraper struct {
	cfg    Config
	client *httpx.Client
	log    *zap.Logger
}

func New(cfg Config, hc *httpx.Client, log *zap.Logger) *Scraper {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scraper{cfg: cfg, client: hc, log: log}
}

// Scrape retrieves the page and returns the parsed records in document order
// together with the ordered symbol list (duplicates and NA included) for the
// price lookup. A transport error or non-2xx status yields a *FetchError.
func (s *Scraper) Scrape(ctx context.Context) ([]TradeRecord, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, nil, &FetchError{URL: s.cfg.URL, Err: err}
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, nil, &FetchError{URL: s.cfg.URL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2<<10))
		return nil, nil, &FetchError{URL: s.cfg.URL, Status: resp.StatusCode, Err: fmt.Errorf("bad status %d", resp.StatusCode)}
	}

	records, symbols, err := Parse(resp.Body)
	if err != nil {
		return nil, nil, &FetchError{URL: s.cfg.URL, Err: err}
	}
	s.log.Info("scraped insider page", zap.String("url", s.cfg.URL), zap.Int("rows", len(records)))
	return records, symbols, nil
}

// Parse extracts trade records from the page HTML. It selects every table
// row, skips the header row and any row with fewer than 7 cells, and keeps
// the remaining rows in document order.
func Parse(r io.Reader) ([]TradeRecord, []string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}

	var records []TradeRecord
	var symbols []string
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}
		text := func(j int) string { return strings.TrimSpace(cells.Eq(j).Text()) }

		symbol := text(0)
		if symbol == "" {
			symbol = NA
		}
		shareAndPrice := text(4)
		value := text(5)
		records = append(records, TradeRecord{
			Symbol:        symbol,
			Company:       text(1),
			InsiderName:   text(2),
			TradeType:     text(3),
			ShareAndPrice: shareAndPrice,
			Value:         value,
			DateAndTime:   text(6),
			AvgPrice:      AvgPrice(shareAndPrice, value),
			RealTimePrice: NA,
		})
		symbols = append(symbols, symbol)
	})
	return records, symbols, nil
}

// shareCountRe matches a leading share count: digits (with commas) followed
// by a dollar sign, or failing that just the leading digits. The first
// alternative wins when both could match.
var shareCountRe = regexp.MustCompile(`^(?:([\d,]+)\s*\$|([\d,]+))`)

var nonNumericRe = regexp.MustCompile(`[^\d.]`)

// AvgPrice derives the per-share average from the raw shareAndPrice and
// value cells, formatted to two decimals. Every failure path, including a
// zero or unparsable share count, degrades to NA.
func AvgPrice(shareAndPrice, value string) string {
	m := shareCountRe.FindStringSubmatch(shareAndPrice)
	if m == nil {
		return NA
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	shares, err := strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
	if err != nil || shares <= 0 {
		return NA
	}

	total := 0.0
	if value != "" {
		cleaned := nonNumericRe.ReplaceAllString(value, "")
		if cleaned == "" {
			return NA
		}
		total, err = strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return NA
		}
	}
	return fmt.Sprintf("%.2f", total/float64(shares))
}
