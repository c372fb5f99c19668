// Package render turns account state into the plain-text lines shown to
// users. The account itself only stores structured records; formatting
// lives here.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atmx/trading-account/internal/model"
)

// AccountCreated is the confirmation shown after opening an account.
const AccountCreated = "Account created successfully!"

// Money formats an amount as dollars with two decimal places, e.g. $850.00.
// Negative amounts keep the sign after the dollar sign: $-12.50.
func Money(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}

// Transaction renders one log entry.
func Transaction(tx model.Transaction) string {
	switch tx.Kind {
	case model.KindDeposit:
		return "Deposited " + Money(tx.Amount)
	case model.KindWithdraw:
		return "Withdrew " + Money(tx.Amount)
	case model.KindBuy:
		return fmt.Sprintf("Bought %d shares of %s at %s", tx.Quantity, tx.Symbol, Money(tx.Price))
	case model.KindSell:
		return fmt.Sprintf("Sold %d shares of %s at %s", tx.Quantity, tx.Symbol, Money(tx.Price))
	default:
		return fmt.Sprintf("Unknown transaction %s", tx.Kind)
	}
}

// Transactions renders the log one entry per line, oldest first.
func Transactions(txs []model.Transaction) []string {
	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = Transaction(tx)
	}
	return lines
}

// Result renders the confirmation for a successful mutation given the
// balance after it.
func Result(tx model.Transaction, balance decimal.Decimal) string {
	switch tx.Kind {
	case model.KindDeposit:
		return fmt.Sprintf("Deposited: %s. New balance: %s", Money(tx.Amount), Money(balance))
	case model.KindWithdraw:
		return fmt.Sprintf("Withdrew: %s. New balance: %s", Money(tx.Amount), Money(balance))
	case model.KindBuy:
		return fmt.Sprintf("Bought %d shares of %s. New balance: %s", tx.Quantity, tx.Symbol, Money(balance))
	case model.KindSell:
		return fmt.Sprintf("Sold %d shares of %s. New balance: %s", tx.Quantity, tx.Symbol, Money(balance))
	default:
		return Transaction(tx)
	}
}

// PortfolioValue renders the portfolio value query result.
func PortfolioValue(v decimal.Decimal) string {
	return "Total Portfolio Value: " + Money(v)
}

// ProfitLoss renders the profit/loss query result.
func ProfitLoss(v decimal.Decimal) string {
	return "Profit/Loss: " + Money(v)
}

// Holdings renders holdings as "AAPL: 2, TSLA: 1" in symbol order, or
// "No holdings" when empty.
func Holdings(h map[string]int64) string {
	if len(h) == 0 {
		return "No holdings"
	}
	syms := make([]string, 0, len(h))
	for s := range h {
		syms = append(syms, s)
	}
	sort.Strings(syms)

	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = fmt.Sprintf("%s: %d", s, h[s])
	}
	return strings.Join(parts, ", ")
}
