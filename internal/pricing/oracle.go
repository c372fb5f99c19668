// Package pricing maps ticker symbols to share prices.
//
// Prices come from a fixed table; there is no market-data feed. Symbols
// missing from the table are priced at zero rather than rejected, so an
// unknown symbol can be traded but never moves any cash.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Oracle returns the current price of a symbol. Implementations must be
// total: any string, including "", yields a price.
type Oracle interface {
	Price(symbol string) decimal.Decimal

	// Known reports whether symbol is listed. Unlisted symbols still
	// have a price of zero.
	Known(symbol string) bool
}

// DefaultPrices is the built-in price table.
func DefaultPrices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"AAPL":  decimal.NewFromInt(150),
		"TSLA":  decimal.NewFromInt(700),
		"GOOGL": decimal.NewFromInt(2800),
	}
}

// StaticOracle is an Oracle backed by an immutable price table.
type StaticOracle struct {
	prices map[string]decimal.Decimal
}

// NewStaticOracle creates an oracle from the given table. The table is
// copied. A nil table falls back to DefaultPrices.
func NewStaticOracle(prices map[string]decimal.Decimal) *StaticOracle {
	if prices == nil {
		prices = DefaultPrices()
	}
	cp := make(map[string]decimal.Decimal, len(prices))
	for sym, p := range prices {
		cp[sym] = p
	}
	return &StaticOracle{prices: cp}
}

// Price returns the table price for symbol, or zero if it is not listed.
// Lookup is exact: no trimming or case folding.
func (o *StaticOracle) Price(symbol string) decimal.Decimal {
	if p, ok := o.prices[symbol]; ok {
		return p
	}
	return decimal.Zero
}

// Known reports whether symbol has a listed price.
func (o *StaticOracle) Known(symbol string) bool {
	_, ok := o.prices[symbol]
	return ok
}

// Symbols returns the listed symbols in lexical order.
func (o *StaticOracle) Symbols() []string {
	out := make([]string, 0, len(o.prices))
	for sym := range o.prices {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
