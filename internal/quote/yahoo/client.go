package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=yahoo_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	defaultQuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
	defaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

	// Yahoo answers 401/429 to generic clients; a browser User-Agent is required.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client queries Yahoo Finance for per-symbol prices. It satisfies
// quote.Source: the quote endpoint supplies the live price and the chart
// endpoint supplies the one-day closing series used as fallback.
type Client struct {
	// quoteURL is the v7 quote endpoint.
	quoteURL string
	// chartURL is the v8 chart endpoint; the symbol is appended as a path segment.
	chartURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers sent with each request.
	header http.Header
}

// Option is a configuration option for the Yahoo client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithQuoteURL overrides the quote endpoint.
func WithQuoteURL(url string) Option {
	return func(c *Client) {
		c.quoteURL = url
	}
}

// WithChartURL overrides the chart endpoint.
func WithChartURL(url string) Option {
	return func(c *Client) {
		c.chartURL = url
	}
}

// WithHeader adds headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(options ...Option) *Client {
	c := &Client{
		quoteURL:   defaultQuoteURL,
		chartURL:   defaultChartURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	c.header.Set("User-Agent", defaultUserAgent)
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) get(req *http.Request, out any) error {
	for key, values := range c.header {
		for _, value := range values {
			if req.Header.Get(key) == "" {
				req.Header.Set(key, value)
			}
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s -> %d", req.URL, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
