package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Live returns the most recent trade price for symbol from the quote
// endpoint. A missing result or absent regularMarketPrice field is an error.
func (c *Client) Live(ctx context.Context, symbol string) (float64, error) {
	u := c.quoteURL + "?symbols=" + url.QueryEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return 0, err
	}

	var body struct {
		QuoteResponse struct {
			Result []struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := c.get(req, &body); err != nil {
		return 0, err
	}
	if len(body.QuoteResponse.Result) == 0 {
		return 0, fmt.Errorf("yahoo quote: no result for %q", symbol)
	}
	price := body.QuoteResponse.Result[0].RegularMarketPrice
	if price == nil {
		return 0, fmt.Errorf("yahoo quote: no regularMarketPrice for %q", symbol)
	}
	return *price, nil
}

// LastClose returns the closing price of the most recent completed trading
// day from the one-day chart series. An empty series is an error.
func (c *Client) LastClose(ctx context.Context, symbol string) (float64, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.chartURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return 0, err
	}

	var body struct {
		Chart struct {
			Result []struct {
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := c.get(req, &body); err != nil {
		return 0, err
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return 0, fmt.Errorf("yahoo chart: no series for %q", symbol)
	}
	closes := body.Chart.Result[0].Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return *closes[i], nil
		}
	}
	return 0, fmt.Errorf("yahoo chart: empty close series for %q", symbol)
}
