package account

import "errors"

var (
	// ErrInvalidAmount is returned for a non-positive deposit or withdrawal,
	// or a negative opening deposit.
	ErrInvalidAmount = errors.New("account: invalid amount")

	// ErrInsufficientFunds is returned when a withdrawal or purchase costs
	// more than the cash balance.
	ErrInsufficientFunds = errors.New("account: insufficient funds")

	// ErrInvalidQuantity is returned for a non-positive trade quantity.
	ErrInvalidQuantity = errors.New("account: invalid quantity")

	// ErrInsufficientShares is returned when a sale exceeds the held quantity.
	ErrInsufficientShares = errors.New("account: insufficient shares")
)
