// Package account implements a single trading account: cash balance,
// share holdings and an append-only transaction log.
//
// Every operation validates before it mutates, so a failed call leaves the
// account exactly as it was. Each Account serializes its own operations
// with a mutex; there is no state shared between accounts.
package account

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atmx/trading-account/internal/model"
	"github.com/atmx/trading-account/internal/pricing"
)

// Account holds one user's cash, holdings and transaction history.
type Account struct {
	id             string
	username       string
	initialDeposit decimal.Decimal
	oracle         pricing.Oracle
	now            func() time.Time

	mu           sync.Mutex
	balance      decimal.Decimal
	holdings     map[string]int64
	transactions []model.Transaction
}

// New opens an account with the given opening deposit. The deposit may be
// zero but not negative. The opening deposit is the profit/loss baseline and
// is not written to the transaction log.
func New(id, username string, initialDeposit decimal.Decimal, oracle pricing.Oracle) (*Account, error) {
	if initialDeposit.IsNegative() {
		return nil, fmt.Errorf("%w: Initial deposit must not be negative.", ErrInvalidAmount)
	}
	if oracle == nil {
		oracle = pricing.NewStaticOracle(nil)
	}
	return &Account{
		id:             id,
		username:       username,
		initialDeposit: initialDeposit,
		oracle:         oracle,
		now:            func() time.Time { return time.Now().UTC() },
		balance:        initialDeposit,
		holdings:       make(map[string]int64),
	}, nil
}

// ID returns the registry key the account was opened with.
func (a *Account) ID() string { return a.id }

// Username returns the account holder's name.
func (a *Account) Username() string { return a.username }

// InitialDeposit returns the opening balance used as the profit/loss baseline.
func (a *Account) InitialDeposit() decimal.Decimal { return a.initialDeposit }

// Balance returns the current cash balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Deposit adds amount to the cash balance.
func (a *Account) Deposit(amount decimal.Decimal) (model.Transaction, error) {
	if !amount.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%w: Deposit amount must be positive.", ErrInvalidAmount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.balance = a.balance.Add(amount)
	return a.record(model.KindDeposit, amount, "", 0, decimal.Zero), nil
}

// Withdraw removes amount from the cash balance. The balance may reach
// zero but never go below it.
func (a *Account) Withdraw(amount decimal.Decimal) (model.Transaction, error) {
	if !amount.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%w: Withdrawal amount must be positive.", ErrInvalidAmount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if amount.GreaterThan(a.balance) {
		return model.Transaction{}, fmt.Errorf("%w: Insufficient funds for withdrawal.", ErrInsufficientFunds)
	}

	a.balance = a.balance.Sub(amount)
	return a.record(model.KindWithdraw, amount, "", 0, decimal.Zero), nil
}

// BuyShares buys quantity shares of symbol at the oracle price. Symbols the
// oracle does not know are priced at zero and can be bought for free.
func (a *Account) BuyShares(symbol string, quantity int64) (model.Transaction, error) {
	if quantity <= 0 {
		return model.Transaction{}, fmt.Errorf("%w: Quantity must be positive.", ErrInvalidQuantity)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	price := a.oracle.Price(symbol)
	cost := price.Mul(decimal.NewFromInt(quantity))
	if cost.GreaterThan(a.balance) {
		return model.Transaction{}, fmt.Errorf("%w: Insufficient funds to buy shares.", ErrInsufficientFunds)
	}
	// Unknown symbols are free, so only the holding bounds the quantity.
	if quantity > math.MaxInt64-a.holdings[symbol] {
		return model.Transaction{}, fmt.Errorf("%w: Quantity too large.", ErrInvalidQuantity)
	}

	a.balance = a.balance.Sub(cost)
	a.holdings[symbol] += quantity
	return a.record(model.KindBuy, cost, symbol, quantity, price), nil
}

// SellShares sells quantity shares of symbol at the oracle price. A holding
// that reaches zero is removed.
func (a *Account) SellShares(symbol string, quantity int64) (model.Transaction, error) {
	if quantity <= 0 {
		return model.Transaction{}, fmt.Errorf("%w: Quantity must be positive.", ErrInvalidQuantity)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	held := a.holdings[symbol]
	if held < quantity {
		return model.Transaction{}, fmt.Errorf("%w: Not enough shares to sell.", ErrInsufficientShares)
	}

	price := a.oracle.Price(symbol)
	proceeds := price.Mul(decimal.NewFromInt(quantity))

	a.balance = a.balance.Add(proceeds)
	if held == quantity {
		delete(a.holdings, symbol)
	} else {
		a.holdings[symbol] = held - quantity
	}
	return a.record(model.KindSell, proceeds, symbol, quantity, price), nil
}

// PortfolioValue returns cash plus the market value of every holding.
func (a *Account) PortfolioValue() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolioValue()
}

// ProfitLoss returns PortfolioValue minus the opening deposit.
func (a *Account) ProfitLoss() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolioValue().Sub(a.initialDeposit)
}

// Holdings returns a copy of the symbol → quantity map.
func (a *Account) Holdings() map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyHoldings()
}

// Transactions returns a copy of the log in chronological order.
func (a *Account) Transactions() []model.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// Snapshot returns every derived figure computed under a single lock.
func (a *Account) Snapshot() model.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	value := a.portfolioValue()
	return model.Snapshot{
		ID:             a.id,
		Username:       a.username,
		Balance:        a.balance,
		InitialDeposit: a.initialDeposit,
		Holdings:       a.copyHoldings(),
		PortfolioValue: value,
		ProfitLoss:     value.Sub(a.initialDeposit),
		Transactions:   len(a.transactions),
	}
}

// portfolioValue must be called with mu held.
func (a *Account) portfolioValue() decimal.Decimal {
	total := a.balance
	for sym, qty := range a.holdings {
		total = total.Add(a.oracle.Price(sym).Mul(decimal.NewFromInt(qty)))
	}
	return total
}

func (a *Account) copyHoldings() map[string]int64 {
	out := make(map[string]int64, len(a.holdings))
	for sym, qty := range a.holdings {
		out[sym] = qty
	}
	return out
}

// record appends a log entry. Must be called with mu held, after the
// balance and holdings have been updated.
func (a *Account) record(kind model.Kind, amount decimal.Decimal, symbol string, quantity int64, price decimal.Decimal) model.Transaction {
	tx := model.Transaction{
		ID:        uuid.New().String(),
		Kind:      kind,
		Amount:    amount,
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
		Timestamp: a.now(),
	}
	a.transactions = append(a.transactions, tx)
	return tx
}
