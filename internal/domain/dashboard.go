package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidDashboard is returned when a dashboard response fails validation.
var ErrInvalidDashboard = errors.New("invalid dashboard summary")

// DashboardSummary aggregate view of a wallet, recomputed by the backend on each fetch.
type DashboardSummary struct {
	Wallet           string          `json:"wallet"`
	TransactionCount int             `json:"transaction_count"`
	TotalEthSent     decimal.Decimal `json:"total_eth_sent"`
	Transactions     []Transaction   `json:"transactions"`
}

// Normalize replaces a missing transaction list with an empty one.
func (d *DashboardSummary) Normalize() {
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
}

// Validate checks required fields and every transaction.
func (d DashboardSummary) Validate() error {
	if d.Wallet == "" {
		return errors.Wrap(ErrInvalidDashboard, "wallet is empty")
	}
	if d.TransactionCount < 0 {
		return errors.Wrapf(ErrInvalidDashboard, "negative transaction count %d", d.TransactionCount)
	}
	if err := ValidateTransactions(d.Transactions); err != nil {
		return errors.Wrap(ErrInvalidDashboard, err.Error())
	}
	return nil
}

// Empty reports whether the wallet has no transactions to show.
func (d DashboardSummary) Empty() bool {
	return len(d.Transactions) == 0
}
