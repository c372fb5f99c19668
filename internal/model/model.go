// Package model defines the core domain types shared across the account
// service. All monetary values use shopspring/decimal, never float64.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies what a transaction did to the account.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindBuy      Kind = "buy"
	KindSell     Kind = "sell"
)

// Transaction is an immutable record appended to an account's log.
// Once created, these are never modified or deleted.
type Transaction struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`             // cash moved
	Symbol    string          `json:"symbol,omitempty"`   // trades only
	Quantity  int64           `json:"quantity,omitempty"` // trades only
	Price     decimal.Decimal `json:"price"`              // per share, zero for cash moves
	Timestamp time.Time       `json:"timestamp"`
}

// IsTrade reports whether the transaction bought or sold shares.
func (t Transaction) IsTrade() bool {
	return t.Kind == KindBuy || t.Kind == KindSell
}

// Snapshot is a consistent point-in-time view of an account.
type Snapshot struct {
	ID             string           `json:"id"`
	Username       string           `json:"username"`
	Balance        decimal.Decimal  `json:"balance"`
	InitialDeposit decimal.Decimal  `json:"initial_deposit"`
	Holdings       map[string]int64 `json:"holdings"`
	PortfolioValue decimal.Decimal  `json:"portfolio_value"`
	ProfitLoss     decimal.Decimal  `json:"profit_loss"`
	Transactions   int              `json:"transactions"` // log length
}
