package render

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atmx/trading-account/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestTransaction(t *testing.T) {
	tests := []struct {
		tx   model.Transaction
		want string
	}{
		{model.Transaction{Kind: model.KindDeposit, Amount: d(250)}, "Deposited $250.00"},
		{model.Transaction{Kind: model.KindWithdraw, Amount: d(19.999)}, "Withdrew $20.00"},
		{model.Transaction{Kind: model.KindBuy, Symbol: "AAPL", Quantity: 2, Price: d(150), Amount: d(300)}, "Bought 2 shares of AAPL at $150.00"},
		{model.Transaction{Kind: model.KindSell, Symbol: "XYZ", Quantity: 7, Price: decimal.Zero}, "Sold 7 shares of XYZ at $0.00"},
	}
	for _, tt := range tests {
		if got := Transaction(tt.tx); got != tt.want {
			t.Errorf("Transaction(%s) = %q, want %q", tt.tx.Kind, got, tt.want)
		}
	}
}

func TestResult(t *testing.T) {
	buy := model.Transaction{Kind: model.KindBuy, Symbol: "AAPL", Quantity: 2, Price: d(150)}
	if got, want := Result(buy, d(700)), "Bought 2 shares of AAPL. New balance: $700.00"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	dep := model.Transaction{Kind: model.KindDeposit, Amount: d(50)}
	if got, want := Result(dep, d(1050)), "Deposited: $50.00. New balance: $1050.00"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValuationLines(t *testing.T) {
	if got := PortfolioValue(d(1000)); got != "Total Portfolio Value: $1000.00" {
		t.Errorf("unexpected portfolio line %q", got)
	}
	if got := ProfitLoss(d(-12.5)); got != "Profit/Loss: $-12.50" {
		t.Errorf("unexpected profit/loss line %q", got)
	}
}

func TestHoldings(t *testing.T) {
	if got := Holdings(nil); got != "No holdings" {
		t.Errorf("unexpected empty rendering %q", got)
	}
	got := Holdings(map[string]int64{"TSLA": 1, "AAPL": 2})
	if got != "AAPL: 2, TSLA: 1" {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestTransactions_PreservesOrder(t *testing.T) {
	lines := Transactions([]model.Transaction{
		{Kind: model.KindDeposit, Amount: d(1)},
		{Kind: model.KindWithdraw, Amount: d(2)},
	})
	if len(lines) != 2 || lines[0] != "Deposited $1.00" || lines[1] != "Withdrew $2.00" {
		t.Errorf("unexpected lines %v", lines)
	}
}
