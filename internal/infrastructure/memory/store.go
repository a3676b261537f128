// Package memory is a process-local storage backend. A single store mutex
// backs the unit of work, so a two-leg transfer commits as one atomic unit
// exactly like the transactional pg backend.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

type walletKey struct{ user, currency string }

type Store struct {
	mu        sync.Mutex
	snapshots map[string]domain.PriceSnapshot
	history   []domain.PriceSnapshot
	wallets   map[walletKey]decimal.Decimal
	trades    []domain.Trade
}

func NewStore() *Store {
	return &Store{
		snapshots: map[string]domain.PriceSnapshot{},
		wallets:   map[walletKey]decimal.Decimal{},
	}
}

// Seed credits a wallet directly; bootstrap uses it for demo balances.
func (s *Store) Seed(userID, currency string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[walletKey{userID, currency}] = balance
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock acquires the store mutex unless the context already runs inside a
// unit of work, which holds it for the whole transaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// UnitOfWork serializes the function body against every other store access.
// Wallet and trade state is restored when the function fails, so a transfer
// whose second leg is rejected leaves no trace of the first.
type UnitOfWork struct{ Store *Store }

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.Store.mu.Lock()
	defer u.Store.mu.Unlock()

	saved := make(map[walletKey]decimal.Decimal, len(u.Store.wallets))
	for k, v := range u.Store.wallets {
		saved[k] = v
	}
	savedTrades := len(u.Store.trades)

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		u.Store.wallets = saved
		u.Store.trades = u.Store.trades[:savedTrades]
		return err
	}
	return nil
}
