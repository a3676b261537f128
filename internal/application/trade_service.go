package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

// ledgerConflictAttempts bounds retries of the two-leg transfer when the
// store reports a concurrent-write conflict.
const ledgerConflictAttempts = 3

type TradeRequest struct {
	Symbol   string
	Side     domain.Side
	Quantity decimal.Decimal
}

// TradeService settles orders against the latest stored snapshot. Each call
// produces either exactly one trade record plus two offsetting wallet legs,
// or no mutation at all. Settlement deliberately uses whatever snapshot is
// stored with no maximum-age check.
type TradeService struct {
	snapshots SnapshotRepo
	wallets   WalletRepo
	trades    TradeRepo
	uow       UnitOfWork
	pairs     domain.Pairs
	clock     Clock
	idgen     IDGen
}

type TradeOption func(*TradeService)

func WithClock(c Clock) TradeOption { return func(s *TradeService) { s.clock = c } }
func WithIDGen(g IDGen) TradeOption { return func(s *TradeService) { s.idgen = g } }

func NewTradeService(snapshots SnapshotRepo, wallets WalletRepo, trades TradeRepo, uow UnitOfWork, pairs domain.Pairs, opts ...TradeOption) *TradeService {
	s := &TradeService{
		snapshots: snapshots,
		wallets:   wallets,
		trades:    trades,
		uow:       uow,
		pairs:     pairs,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.uow == nil {
		s.uow = NoopUoW{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.idgen == nil {
		s.idgen = defaultIDGen{}
	}
	return s
}

func (s *TradeService) GetUserTrades(ctx context.Context, userID string) ([]domain.Trade, error) {
	return s.trades.ListByUser(ctx, userID)
}

func (s *TradeService) ExecuteTrade(ctx context.Context, userID string, req TradeRequest) (domain.Trade, error) {
	if err := s.validate(req); err != nil {
		return domain.Trade{}, err
	}

	snap, err := s.snapshots.GetLatest(ctx, req.Symbol)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trade{}, fmt.Errorf("%w: no price available for %s", ErrPriceNotFound, req.Symbol)
		}
		return domain.Trade{}, fmt.Errorf("price lookup: %w", err)
	}

	base, quote, err := s.pairs.Split(req.Symbol)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("%w: %s", ErrInvalidTrade, req.Symbol)
	}

	price := snap.PriceFor(req.Side)
	total := price.Mul(req.Quantity)

	trade := domain.Trade{
		ID:         s.idgen.NewID(),
		UserID:     userID,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Price:      price,
		Quantity:   req.Quantity,
		Total:      total,
		ExecutedAt: s.clock.Now(),
	}

	// BUY spends the quote currency and receives the base; SELL the reverse.
	var legs [2]ledgerLeg
	if req.Side == domain.SideBuy {
		legs[0] = ledgerLeg{currency: quote, delta: total.Neg()}
		legs[1] = ledgerLeg{currency: base, delta: req.Quantity}
	} else {
		legs[0] = ledgerLeg{currency: base, delta: req.Quantity.Neg()}
		legs[1] = ledgerLeg{currency: quote, delta: total}
	}

	if err := s.settle(ctx, userID, trade, legs); err != nil {
		return domain.Trade{}, err
	}
	return trade, nil
}

type ledgerLeg struct {
	currency string
	delta    decimal.Decimal
}

// settle commits both wallet legs and the trade record as one unit. Legs are
// applied in lexicographic currency order, so every transfer touching a pair
// of wallets acquires their row locks in the same order and opposite-side
// trades cannot deadlock each other. Conflicting concurrent writers abort
// the whole unit and are retried a bounded number of times.
func (s *TradeService) settle(ctx context.Context, userID string, trade domain.Trade, legs [2]ledgerLeg) error {
	if legs[1].currency < legs[0].currency {
		legs[0], legs[1] = legs[1], legs[0]
	}

	var err error
	for attempt := 0; attempt < ledgerConflictAttempts; attempt++ {
		err = s.uow.Do(ctx, func(txCtx context.Context) error {
			for _, leg := range legs {
				if err := s.wallets.Adjust(txCtx, userID, leg.currency, leg.delta); err != nil {
					return err
				}
			}
			return s.trades.Append(txCtx, trade)
		})
		if !errors.Is(err, ErrLedgerConflict) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrLedgerConflict) {
			return err
		}
		return fmt.Errorf("settle trade: %w", err)
	}
	return nil
}

func (s *TradeService) validate(req TradeRequest) error {
	if req.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidTrade)
	}
	if !s.pairs.Contains(req.Symbol) {
		return fmt.Errorf("%w: unsupported symbol %s", ErrInvalidTrade, req.Symbol)
	}
	if !req.Side.Valid() {
		return fmt.Errorf("%w: side must be BUY or SELL", ErrInvalidTrade)
	}
	if !req.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidTrade)
	}
	return nil
}
