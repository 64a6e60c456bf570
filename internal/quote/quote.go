package quote

import (
	"context"
	"fmt"
	"strings"
)

// NA is the price served when a symbol could not be resolved. Note the
// asymmetry with FormatPrice: failures carry no dollar prefix.
const NA = "N/A"

// Source resolves a single symbol against the market-data provider.
type Source interface {
	// Live returns the most recent trade price.
	Live(ctx context.Context, symbol string) (float64, error)
	// LastClose returns the closing price of the most recent trading day.
	LastClose(ctx context.Context, symbol string) (float64, error)
}

// IsValidSymbol reports whether symbol is worth a provider lookup.
// Placeholder and slash/hash/at symbols (e.g. "BRK/B") are rejected.
func IsValidSymbol(symbol string) bool {
	if symbol == "" || symbol == NA {
		return false
	}
	return !strings.ContainsAny(symbol, "#@/")
}

// FormatPrice renders a resolved price as a dollar-prefixed string with
// exactly five decimal places.
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.5f", price)
}
