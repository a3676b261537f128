package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

var settleAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTradeFixture(t *testing.T) (*TradeService, *fakeSnapshotRepo, *fakeWalletRepo, *fakeTradeRepo) {
	t.Helper()
	snaps := &fakeSnapshotRepo{store: map[string]domain.PriceSnapshot{
		"BTCUSDT": {Symbol: "BTCUSDT", Bid: dec("50000"), Ask: dec("50100"), Source: "BINANCE", Timestamp: settleAt},
	}}
	wallets := newFakeWalletRepo()
	trades := &fakeTradeRepo{}
	svc := NewTradeService(snaps, wallets, trades, rollbackUoW{wallets: wallets, trades: trades}, testPairs(),
		WithClock(fakeClock{t: settleAt}), WithIDGen(&seqIDGen{}))
	return svc, snaps, wallets, trades
}

func Test_ExecuteTrade_Buy(t *testing.T) {
	t.Parallel()
	svc, _, wallets, trades := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "USDT"}] = dec("30000")

	trade, err := svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.5"),
	})
	require.NoError(t, err)
	require.Equal(t, "trade-1", trade.ID)
	require.True(t, trade.Price.Equal(dec("50100")))
	require.True(t, trade.Total.Equal(dec("25050")))
	require.Equal(t, settleAt, trade.ExecutedAt)

	require.True(t, wallets.balances[walletKey{"u1", "USDT"}].Equal(dec("4950")))
	require.True(t, wallets.balances[walletKey{"u1", "BTC"}].Equal(dec("0.5")))
	require.Len(t, trades.trades, 1)
}

func Test_ExecuteTrade_Sell(t *testing.T) {
	t.Parallel()
	svc, _, wallets, _ := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "BTC"}] = dec("2")

	trade, err := svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "BTCUSDT", Side: domain.SideSell, Quantity: dec("1.5"),
	})
	require.NoError(t, err)
	require.True(t, trade.Price.Equal(dec("50000")))
	require.True(t, trade.Total.Equal(dec("75000")))

	require.True(t, wallets.balances[walletKey{"u1", "BTC"}].Equal(dec("0.5")))
	require.True(t, wallets.balances[walletKey{"u1", "USDT"}].Equal(dec("75000")))
}

func Test_ExecuteTrade_Validation(t *testing.T) {
	t.Parallel()
	svc, _, wallets, trades := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "USDT"}] = dec("30000")

	cases := []struct {
		name string
		req  TradeRequest
	}{
		{"unknown symbol", TradeRequest{Symbol: "DOGEUSDT", Side: domain.SideBuy, Quantity: dec("1")}},
		{"missing symbol", TradeRequest{Side: domain.SideBuy, Quantity: dec("1")}},
		{"bad side", TradeRequest{Symbol: "BTCUSDT", Side: "HOLD", Quantity: dec("1")}},
		{"zero quantity", TradeRequest{Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0")}},
		{"negative quantity", TradeRequest{Symbol: "BTCUSDT", Side: domain.SideSell, Quantity: dec("-1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ExecuteTrade(context.Background(), "u1", tc.req)
			require.ErrorIs(t, err, ErrInvalidTrade)
		})
	}
	require.Equal(t, 0, wallets.adjustCalls)
	require.Empty(t, trades.trades)
}

func Test_ExecuteTrade_PriceNotFound(t *testing.T) {
	t.Parallel()
	svc, _, wallets, trades := newTradeFixture(t)

	_, err := svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "ETHUSDT", Side: domain.SideBuy, Quantity: dec("1"),
	})
	require.ErrorIs(t, err, ErrPriceNotFound)
	require.Equal(t, 0, wallets.adjustCalls)
	require.Empty(t, trades.trades)
}

func Test_ExecuteTrade_InsufficientBalance_NoPartialLeg(t *testing.T) {
	t.Parallel()
	svc, _, wallets, trades := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "BTC"}] = dec("0.3")
	wallets.balances[walletKey{"u1", "USDT"}] = dec("100")

	_, err := svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "BTCUSDT", Side: domain.SideSell, Quantity: dec("1"),
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Neither leg applied, no trade recorded.
	require.True(t, wallets.balances[walletKey{"u1", "BTC"}].Equal(dec("0.3")))
	require.True(t, wallets.balances[walletKey{"u1", "USDT"}].Equal(dec("100")))
	require.Empty(t, trades.trades)
}

// Both legs always run in lexicographic currency order regardless of side,
// so concurrent opposite-side trades acquire wallet row locks in the same
// order and cannot deadlock each other.
func Test_ExecuteTrade_LegsOrderedByCurrency(t *testing.T) {
	t.Parallel()
	svc, _, wallets, _ := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "USDT"}] = dec("60000")
	wallets.balances[walletKey{"u1", "BTC"}] = dec("1")

	_, err := svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.5"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"BTC", "USDT"}, wallets.adjustOrder)

	wallets.adjustOrder = nil
	_, err = svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "BTCUSDT", Side: domain.SideSell, Quantity: dec("0.5"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"BTC", "USDT"}, wallets.adjustOrder)
}

// When the credit leg applies before the failing debit leg, the unit of work
// must roll the credit back.
func Test_ExecuteTrade_FailedDebitRollsBackEarlierCredit(t *testing.T) {
	t.Parallel()
	svc, _, wallets, trades := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "USDT"}] = dec("100")

	// BUY credits BTC first (lexicographic order), then the USDT debit fails.
	_, err := svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("1"),
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	require.True(t, wallets.balances[walletKey{"u1", "BTC"}].Equal(dec("0")))
	require.True(t, wallets.balances[walletKey{"u1", "USDT"}].Equal(dec("100")))
	require.Empty(t, trades.trades)
}

func Test_ExecuteTrade_RetriesLedgerConflict(t *testing.T) {
	t.Parallel()
	svc, _, wallets, trades := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "USDT"}] = dec("30000")
	wallets.conflictsLeft = 2

	_, err := svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.1"),
	})
	require.NoError(t, err)
	require.Len(t, trades.trades, 1)
}

func Test_ExecuteTrade_ConflictRetryExhausted(t *testing.T) {
	t.Parallel()
	svc, _, wallets, trades := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "USDT"}] = dec("30000")
	wallets.conflictsLeft = ledgerConflictAttempts

	_, err := svc.ExecuteTrade(context.Background(), "u1", TradeRequest{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.1"),
	})
	require.ErrorIs(t, err, ErrLedgerConflict)
	require.Empty(t, trades.trades)
	require.True(t, wallets.balances[walletKey{"u1", "USDT"}].Equal(dec("30000")))
}

// Two identical requests both settle: executeTrade is not idempotent by design.
func Test_ExecuteTrade_NotIdempotent(t *testing.T) {
	t.Parallel()
	svc, _, wallets, trades := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "USDT"}] = dec("60000")

	req := TradeRequest{Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.5")}
	first, err := svc.ExecuteTrade(context.Background(), "u1", req)
	require.NoError(t, err)
	second, err := svc.ExecuteTrade(context.Background(), "u1", req)
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Len(t, trades.trades, 2)
	require.True(t, wallets.balances[walletKey{"u1", "USDT"}].Equal(dec("9900")))
	require.True(t, wallets.balances[walletKey{"u1", "BTC"}].Equal(dec("1")))
}

func Test_GetUserTrades_NewestFirst(t *testing.T) {
	t.Parallel()
	svc, _, wallets, _ := newTradeFixture(t)
	wallets.balances[walletKey{"u1", "USDT"}] = dec("60000")

	req := TradeRequest{Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.1")}
	_, err := svc.ExecuteTrade(context.Background(), "u1", req)
	require.NoError(t, err)
	_, err = svc.ExecuteTrade(context.Background(), "u1", req)
	require.NoError(t, err)

	got, err := svc.GetUserTrades(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "trade-2", got[0].ID)
	require.Equal(t, "trade-1", got[1].ID)
}
