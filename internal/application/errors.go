package application

import "errors"

var (
	// Client-visible settlement failures. The boundary layer maps each to a
	// distinct response; none of them leaves a partial mutation behind.
	ErrInvalidTrade        = errors.New("invalid trade")
	ErrPriceNotFound       = errors.New("price not found")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Internal aggregation failures; absorbed before settlement callers.
	ErrSourceUnavailable    = errors.New("source unavailable")
	ErrAggregationExhausted = errors.New("no source produced data")

	// ErrLedgerConflict is a concurrent-mutation failure. The settlement
	// engine retries a bounded number of times before surfacing it.
	ErrLedgerConflict = errors.New("ledger write conflict")
)
