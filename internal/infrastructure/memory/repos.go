package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

type SnapshotRepo struct{ s *Store }

func NewSnapshotRepo(s *Store) *SnapshotRepo { return &SnapshotRepo{s: s} }

var _ application.SnapshotRepo = (*SnapshotRepo)(nil)

func (r *SnapshotRepo) GetLatest(ctx context.Context, symbol string) (domain.PriceSnapshot, error) {
	defer r.s.lock(ctx)()
	snap, ok := r.s.snapshots[symbol]
	if !ok {
		return domain.PriceSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func (r *SnapshotRepo) Upsert(ctx context.Context, snap domain.PriceSnapshot) error {
	defer r.s.lock(ctx)()
	r.s.snapshots[snap.Symbol] = snap
	return nil
}

func (r *SnapshotRepo) AppendHistory(ctx context.Context, snap domain.PriceSnapshot) error {
	defer r.s.lock(ctx)()
	r.s.history = append(r.s.history, snap)
	return nil
}

type WalletRepo struct{ s *Store }

func NewWalletRepo(s *Store) *WalletRepo { return &WalletRepo{s: s} }

var _ application.WalletRepo = (*WalletRepo)(nil)

func (r *WalletRepo) Get(ctx context.Context, userID, currency string) (domain.Wallet, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.wallets[walletKey{userID, currency}]
	if !ok {
		return domain.Wallet{}, domain.ErrNotFound
	}
	return domain.Wallet{UserID: userID, Currency: currency, Balance: b}, nil
}

func (r *WalletRepo) ListByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	defer r.s.lock(ctx)()
	var out []domain.Wallet
	for k, b := range r.s.wallets {
		if k.user == userID {
			out = append(out, domain.Wallet{UserID: k.user, Currency: k.currency, Balance: b})
		}
	}
	return out, nil
}

// Adjust performs the read-check-write under the store lock, so two
// concurrent adjusts can never both pass the balance check against a stale
// read.
func (r *WalletRepo) Adjust(ctx context.Context, userID, currency string, delta decimal.Decimal) error {
	defer r.s.lock(ctx)()
	k := walletKey{userID, currency}
	candidate := r.s.wallets[k].Add(delta)
	if candidate.IsNegative() {
		return fmt.Errorf("%w: %s wallet", application.ErrInsufficientBalance, currency)
	}
	r.s.wallets[k] = candidate
	return nil
}

type TradeRepo struct{ s *Store }

func NewTradeRepo(s *Store) *TradeRepo { return &TradeRepo{s: s} }

var _ application.TradeRepo = (*TradeRepo)(nil)

func (r *TradeRepo) Append(ctx context.Context, t domain.Trade) error {
	defer r.s.lock(ctx)()
	r.s.trades = append(r.s.trades, t)
	return nil
}

func (r *TradeRepo) ListByUser(ctx context.Context, userID string) ([]domain.Trade, error) {
	defer r.s.lock(ctx)()
	var out []domain.Trade
	for i := len(r.s.trades) - 1; i >= 0; i-- {
		if r.s.trades[i].UserID == userID {
			out = append(out, r.s.trades[i])
		}
	}
	return out, nil
}
