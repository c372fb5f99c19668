// Package trade provides the HTTP handlers for opening accounts, moving
// cash, trading shares and querying valuations.
//
// All monetary values use shopspring/decimal, never float64.
package trade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atmx/trading-account/internal/account"
	"github.com/atmx/trading-account/internal/metrics"
	"github.com/atmx/trading-account/internal/model"
	"github.com/atmx/trading-account/internal/pricing"
	"github.com/atmx/trading-account/internal/render"
	"github.com/atmx/trading-account/internal/store"
)

// Service handles account operations. Each account serializes its own
// mutations, so the service holds no lock of its own.
type Service struct {
	store     store.Store
	oracle    pricing.Oracle
	publisher Publisher // optional
}

// NewService creates a new account service.
// Pass nil for pub if event publishing is not needed.
func NewService(st store.Store, oracle pricing.Oracle, pub Publisher) *Service {
	if oracle == nil {
		oracle = pricing.NewStaticOracle(nil)
	}
	return &Service{
		store:     st,
		oracle:    oracle,
		publisher: pub,
	}
}

// Routes mounts every account endpoint on r.
func (s *Service) Routes(r chi.Router) {
	r.Get("/accounts", s.ListAccounts)
	r.Post("/accounts", s.CreateAccount)

	r.Route("/accounts/{accountID}", func(r chi.Router) {
		r.Get("/", s.GetAccount)
		r.Post("/deposit", s.Deposit)
		r.Post("/withdraw", s.Withdraw)
		r.Post("/buy", s.BuyShares)
		r.Post("/sell", s.SellShares)
		r.Get("/value", s.GetPortfolioValue)
		r.Get("/pnl", s.GetProfitLoss)
		r.Get("/holdings", s.GetHoldings)
		r.Get("/transactions", s.ListTransactions)
	})

	r.Get("/prices/{symbol}", s.GetPrice)
}

// --- Request/Response types ---

// CreateAccountRequest is the JSON body for POST /accounts.
type CreateAccountRequest struct {
	Username       string          `json:"username"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

// CreateAccountResponse is returned from POST /accounts.
type CreateAccountResponse struct {
	Account model.Snapshot `json:"account"`
	Message string         `json:"message"`
}

// AmountRequest is the JSON body for deposit and withdraw.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TradeRequest is the JSON body for buy and sell.
type TradeRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// TransactionResponse is returned from every successful mutation.
type TransactionResponse struct {
	AccountID   string            `json:"account_id"`
	Transaction model.Transaction `json:"transaction"`
	Balance     decimal.Decimal   `json:"balance"`
	Holdings    map[string]int64  `json:"holdings"`
	Message     string            `json:"message"`
}

// ValueResponse is returned from the valuation queries.
type ValueResponse struct {
	AccountID string          `json:"account_id"`
	Value     decimal.Decimal `json:"value"`
	Message   string          `json:"message"`
}

// HoldingsResponse is returned from GET /accounts/{id}/holdings.
type HoldingsResponse struct {
	AccountID string           `json:"account_id"`
	Holdings  map[string]int64 `json:"holdings"`
	Message   string           `json:"message"`
}

// TransactionsResponse is returned from GET /accounts/{id}/transactions.
// Lines holds the rendered text of each entry, in the same order.
type TransactionsResponse struct {
	AccountID    string              `json:"account_id"`
	Transactions []model.Transaction `json:"transactions"`
	Lines        []string            `json:"lines"`
}

// PriceResponse is returned from GET /prices/{symbol}.
type PriceResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// --- HTTP Handlers ---

// CreateAccount handles POST /api/v1/accounts
func (s *Service) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, "username is required", http.StatusBadRequest)
		return
	}

	snap, err := s.Open(r.Context(), req.Username, req.InitialDeposit)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, CreateAccountResponse{Account: snap, Message: render.AccountCreated})
}

// Open registers a new account and announces it. It backs POST /accounts
// and is used at startup to seed the demo account.
func (s *Service) Open(ctx context.Context, username string, initialDeposit decimal.Decimal) (model.Snapshot, error) {
	acct, err := account.New(uuid.New().String(), username, initialDeposit, s.oracle)
	if err != nil {
		metrics.RejectionsTotal.WithLabelValues("create", reason(err)).Inc()
		return model.Snapshot{}, err
	}
	if err := s.store.CreateAccount(ctx, acct); err != nil {
		return model.Snapshot{}, err
	}
	metrics.AccountsOpen.Inc()

	snap := acct.Snapshot()
	slog.Info("account created",
		"account", snap.ID,
		"username", snap.Username,
		"initial_deposit", snap.InitialDeposit.String(),
	)

	s.publish(ctx, Event{
		Type:      EventAccountCreated,
		AccountID: snap.ID,
		Username:  snap.Username,
		Balance:   snap.Balance.String(),
		Message:   render.AccountCreated,
	})
	return snap, nil
}

// ListAccounts handles GET /api/v1/accounts
func (s *Service) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, "failed to list accounts", http.StatusInternalServerError)
		return
	}

	out := make([]model.Snapshot, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAccount handles GET /api/v1/accounts/{accountID}
func (s *Service) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, acct.Snapshot())
}

// Deposit handles POST /api/v1/accounts/{accountID}/deposit
func (s *Service) Deposit(w http.ResponseWriter, r *http.Request) {
	s.moveCash(w, r, model.KindDeposit, (*account.Account).Deposit)
}

// Withdraw handles POST /api/v1/accounts/{accountID}/withdraw
func (s *Service) Withdraw(w http.ResponseWriter, r *http.Request) {
	s.moveCash(w, r, model.KindWithdraw, (*account.Account).Withdraw)
}

// BuyShares handles POST /api/v1/accounts/{accountID}/buy
func (s *Service) BuyShares(w http.ResponseWriter, r *http.Request) {
	s.trade(w, r, model.KindBuy, (*account.Account).BuyShares)
}

// SellShares handles POST /api/v1/accounts/{accountID}/sell
func (s *Service) SellShares(w http.ResponseWriter, r *http.Request) {
	s.trade(w, r, model.KindSell, (*account.Account).SellShares)
}

// GetPortfolioValue handles GET /api/v1/accounts/{accountID}/value
func (s *Service) GetPortfolioValue(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.lookup(w, r)
	if !ok {
		return
	}
	v := acct.PortfolioValue()
	writeJSON(w, http.StatusOK, ValueResponse{AccountID: acct.ID(), Value: v, Message: render.PortfolioValue(v)})
}

// GetProfitLoss handles GET /api/v1/accounts/{accountID}/pnl
func (s *Service) GetProfitLoss(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.lookup(w, r)
	if !ok {
		return
	}
	v := acct.ProfitLoss()
	writeJSON(w, http.StatusOK, ValueResponse{AccountID: acct.ID(), Value: v, Message: render.ProfitLoss(v)})
}

// GetHoldings handles GET /api/v1/accounts/{accountID}/holdings
func (s *Service) GetHoldings(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.lookup(w, r)
	if !ok {
		return
	}
	h := acct.Holdings()
	writeJSON(w, http.StatusOK, HoldingsResponse{AccountID: acct.ID(), Holdings: h, Message: render.Holdings(h)})
}

// ListTransactions handles GET /api/v1/accounts/{accountID}/transactions
func (s *Service) ListTransactions(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.lookup(w, r)
	if !ok {
		return
	}
	txs := acct.Transactions()
	writeJSON(w, http.StatusOK, TransactionsResponse{
		AccountID:    acct.ID(),
		Transactions: txs,
		Lines:        render.Transactions(txs),
	})
}

// GetPrice handles GET /api/v1/prices/{symbol}
func (s *Service) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	writeJSON(w, http.StatusOK, PriceResponse{Symbol: symbol, Price: s.oracle.Price(symbol)})
}

// --- shared plumbing ---

func (s *Service) moveCash(w http.ResponseWriter, r *http.Request, kind model.Kind,
	op func(*account.Account, decimal.Decimal) (model.Transaction, error)) {
	acct, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := op(acct, req.Amount)
	s.finish(r.Context(), w, acct, kind, tx, err)
}

func (s *Service) trade(w http.ResponseWriter, r *http.Request, kind model.Kind,
	op func(*account.Account, string, int64) (model.Transaction, error)) {
	acct, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := op(acct, req.Symbol, req.Quantity)
	s.finish(r.Context(), w, acct, kind, tx, err)
}

// finish reports the outcome of a mutation: metrics, log, event, response.
func (s *Service) finish(ctx context.Context, w http.ResponseWriter, acct *account.Account,
	kind model.Kind, tx model.Transaction, err error) {
	if err != nil {
		metrics.RejectionsTotal.WithLabelValues(string(kind), reason(err)).Inc()
		slog.Info("transaction rejected", "account", acct.ID(), "kind", kind, "err", err)
		writeError(w, err.Error(), statusFor(err))
		return
	}
	metrics.TransactionsTotal.WithLabelValues(string(kind)).Inc()
	if tx.IsTrade() {
		metrics.SharesTraded.WithLabelValues(s.symbolLabel(tx.Symbol), string(kind)).Add(float64(tx.Quantity))
	}

	snap := acct.Snapshot()
	msg := render.Result(tx, snap.Balance)

	slog.Info("transaction executed",
		"account", acct.ID(),
		"tx_id", tx.ID,
		"kind", tx.Kind,
		"amount", tx.Amount.String(),
		"symbol", tx.Symbol,
		"qty", tx.Quantity,
		"balance", snap.Balance.String(),
	)

	s.publish(ctx, Event{
		Type:        EventTransaction,
		AccountID:   snap.ID,
		Username:    snap.Username,
		Balance:     snap.Balance.String(),
		Transaction: &tx,
		Message:     msg,
	})

	writeJSON(w, http.StatusOK, TransactionResponse{
		AccountID:   acct.ID(),
		Transaction: tx,
		Balance:     snap.Balance,
		Holdings:    snap.Holdings,
		Message:     msg,
	})
}

func (s *Service) lookup(w http.ResponseWriter, r *http.Request) (*account.Account, bool) {
	id := chi.URLParam(r, "accountID")
	acct, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, "account not found", statusFor(err))
		return nil, false
	}
	return acct, true
}

// symbolLabel keeps the metrics symbol label bounded to the price table.
func (s *Service) symbolLabel(symbol string) string {
	if s.oracle.Known(symbol) {
		return symbol
	}
	return "other"
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, account.ErrInvalidAmount), errors.Is(err, account.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrInsufficientFunds), errors.Is(err, account.ErrInsufficientShares),
		errors.Is(err, store.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrAccountNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// reason is the metrics label for a rejected operation.
func reason(err error) string {
	switch {
	case errors.Is(err, account.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, account.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, account.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, account.ErrInsufficientShares):
		return "insufficient_shares"
	default:
		return "other"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
