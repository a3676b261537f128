package domain

import "github.com/shopspring/decimal"

// Wallet is a per-user, per-currency balance. Balances never go negative;
// rows are created lazily on the first non-zero credit.
type Wallet struct {
	UserID   string
	Currency string
	Balance  decimal.Decimal
}
