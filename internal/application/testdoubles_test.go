package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

func testPairs() domain.Pairs {
	p, err := domain.NewPairs([]string{"BTCUSDT", "ETHUSDT"}, "USDT")
	if err != nil {
		panic(err)
	}
	return p
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("trade-%d", g.n)
}

type fakeSnapshotRepo struct {
	store   map[string]domain.PriceSnapshot
	history []domain.PriceSnapshot
	err     error
}

func (f *fakeSnapshotRepo) GetLatest(_ context.Context, symbol string) (domain.PriceSnapshot, error) {
	if f.err != nil {
		return domain.PriceSnapshot{}, f.err
	}
	s, ok := f.store[symbol]
	if !ok {
		return domain.PriceSnapshot{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSnapshotRepo) Upsert(_ context.Context, s domain.PriceSnapshot) error {
	if f.err != nil {
		return f.err
	}
	if f.store == nil {
		f.store = map[string]domain.PriceSnapshot{}
	}
	f.store[s.Symbol] = s
	return nil
}

func (f *fakeSnapshotRepo) AppendHistory(_ context.Context, s domain.PriceSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.history = append(f.history, s)
	return nil
}

type walletKey struct{ user, currency string }

type fakeWalletRepo struct {
	balances    map[walletKey]decimal.Decimal
	adjustCalls int
	// adjustOrder records the currency of every Adjust call.
	adjustOrder []string
	// conflictsLeft makes the first N Adjust calls fail with ErrLedgerConflict.
	conflictsLeft int
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{balances: map[walletKey]decimal.Decimal{}}
}

func (f *fakeWalletRepo) Get(_ context.Context, userID, currency string) (domain.Wallet, error) {
	b, ok := f.balances[walletKey{userID, currency}]
	if !ok {
		return domain.Wallet{}, domain.ErrNotFound
	}
	return domain.Wallet{UserID: userID, Currency: currency, Balance: b}, nil
}

func (f *fakeWalletRepo) ListByUser(_ context.Context, userID string) ([]domain.Wallet, error) {
	var out []domain.Wallet
	for k, b := range f.balances {
		if k.user == userID {
			out = append(out, domain.Wallet{UserID: k.user, Currency: k.currency, Balance: b})
		}
	}
	return out, nil
}

func (f *fakeWalletRepo) Adjust(_ context.Context, userID, currency string, delta decimal.Decimal) error {
	f.adjustCalls++
	f.adjustOrder = append(f.adjustOrder, currency)
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return ErrLedgerConflict
	}
	k := walletKey{userID, currency}
	candidate := f.balances[k].Add(delta)
	if candidate.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, currency)
	}
	f.balances[k] = candidate
	return nil
}

type fakeTradeRepo struct {
	trades []domain.Trade
	err    error
}

func (f *fakeTradeRepo) Append(_ context.Context, t domain.Trade) error {
	if f.err != nil {
		return f.err
	}
	f.trades = append(f.trades, t)
	return nil
}

func (f *fakeTradeRepo) ListByUser(_ context.Context, userID string) ([]domain.Trade, error) {
	var out []domain.Trade
	for i := len(f.trades) - 1; i >= 0; i-- {
		if f.trades[i].UserID == userID {
			out = append(out, f.trades[i])
		}
	}
	return out, nil
}

// rollbackUoW mimics a transactional store: wallet and trade state is
// restored when fn fails.
type rollbackUoW struct {
	wallets *fakeWalletRepo
	trades  *fakeTradeRepo
}

func (u rollbackUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	savedBalances := make(map[walletKey]decimal.Decimal, len(u.wallets.balances))
	for k, v := range u.wallets.balances {
		savedBalances[k] = v
	}
	savedTrades := len(u.trades.trades)
	if err := fn(ctx); err != nil {
		u.wallets.balances = savedBalances
		u.trades.trades = u.trades.trades[:savedTrades]
		return err
	}
	return nil
}

type fakeSource struct {
	name   string
	quotes []domain.Quote
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context, domain.Pairs) ([]domain.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

type fakeCache struct {
	store  map[string]domain.PriceSnapshot
	getErr error
	setErr error
	sets   int
	gets   int
}

func (f *fakeCache) Get(_ context.Context, symbol string) (domain.PriceSnapshot, bool, error) {
	f.gets++
	if f.getErr != nil {
		return domain.PriceSnapshot{}, false, f.getErr
	}
	s, ok := f.store[symbol]
	return s, ok, nil
}

func (f *fakeCache) Set(_ context.Context, s domain.PriceSnapshot) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	if f.store == nil {
		f.store = map[string]domain.PriceSnapshot{}
	}
	f.store[s.Symbol] = s
	return nil
}
