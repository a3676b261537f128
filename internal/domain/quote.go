package domain

import "github.com/shopspring/decimal"

// Quote is one source's best bid/ask for a symbol at fetch time.
// Size fields are carried through from the source but unused downstream.
type Quote struct {
	Symbol  string
	Bid     decimal.Decimal
	Ask     decimal.Decimal
	BidSize decimal.Decimal
	AskSize decimal.Decimal
	Source  string
}
