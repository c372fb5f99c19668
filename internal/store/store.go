// Package store keeps the live accounts of the process, keyed by account
// id. Accounts exist for the lifetime of the process only.
package store

import (
	"context"
	"errors"

	"github.com/atmx/trading-account/internal/account"
)

var (
	// ErrAccountNotFound is returned when no account has the requested id.
	ErrAccountNotFound = errors.New("store: account not found")

	// ErrAccountExists is returned when an id is registered twice.
	ErrAccountExists = errors.New("store: account already exists")
)

// Store is the account registry interface.
type Store interface {
	// CreateAccount registers a new account under its ID.
	CreateAccount(ctx context.Context, a *account.Account) error

	// GetAccount returns the live account for id. Callers operate on it
	// directly; the account serializes its own mutations.
	GetAccount(ctx context.Context, id string) (*account.Account, error)

	// ListAccounts returns all accounts ordered by creation.
	ListAccounts(ctx context.Context) ([]*account.Account, error)
}
