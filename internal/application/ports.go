package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

type SnapshotRepo interface {
	// GetLatest returns the live snapshot for a symbol, or domain.ErrNotFound.
	GetLatest(ctx context.Context, symbol string) (domain.PriceSnapshot, error)
	Upsert(ctx context.Context, s domain.PriceSnapshot) error
	AppendHistory(ctx context.Context, s domain.PriceSnapshot) error
}

type WalletRepo interface {
	Get(ctx context.Context, userID, currency string) (domain.Wallet, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Wallet, error)
	// Adjust applies a signed delta to one wallet, creating the row when it
	// does not exist. Each call is atomic per wallet key, with or without a
	// surrounding unit of work; a would-be-negative result fails with
	// ErrInsufficientBalance and leaves state unchanged. Concurrent-write
	// failures surface as ErrLedgerConflict.
	Adjust(ctx context.Context, userID, currency string, delta decimal.Decimal) error
}

type TradeRepo interface {
	Append(ctx context.Context, t domain.Trade) error
	// ListByUser returns the user's trades newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Trade, error)
}

// QuoteSource is one external exchange adapter. Fetch returns the tracked
// subset of the source's quotes, already normalized to upper-case symbols,
// or an error when the source is unreachable or its payload is malformed.
type QuoteSource interface {
	Name() string
	Fetch(ctx context.Context, pairs domain.Pairs) ([]domain.Quote, error)
}

// PriceCache fronts the snapshot store for read-mostly latest-price lookups.
// Cache failures are advisory: callers fall back to the repo.
type PriceCache interface {
	Get(ctx context.Context, symbol string) (domain.PriceSnapshot, bool, error)
	Set(ctx context.Context, s domain.PriceSnapshot) error
}

// NoopCache disables caching; every read goes to the repo.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (domain.PriceSnapshot, bool, error) {
	return domain.PriceSnapshot{}, false, nil
}
func (NoopCache) Set(context.Context, domain.PriceSnapshot) error { return nil }
