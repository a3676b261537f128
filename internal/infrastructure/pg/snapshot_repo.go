package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

type SnapshotRepo struct{ db *DB }

func NewSnapshotRepo(db *DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

func (r *SnapshotRepo) GetLatest(ctx context.Context, symbol string) (domain.PriceSnapshot, error) {
	const q = `SELECT symbol, bid::text, ask::text, source, ts FROM prices WHERE symbol=$1`
	var (
		out      domain.PriceSnapshot
		bid, ask string
	)
	err := r.db.q(ctx).QueryRow(ctx, q, symbol).Scan(&out.Symbol, &bid, &ask, &out.Source, &out.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PriceSnapshot{}, domain.ErrNotFound
		}
		return domain.PriceSnapshot{}, err
	}
	if out.Bid, err = decimal.NewFromString(bid); err != nil {
		return domain.PriceSnapshot{}, err
	}
	if out.Ask, err = decimal.NewFromString(ask); err != nil {
		return domain.PriceSnapshot{}, err
	}
	return out, nil
}

func (r *SnapshotRepo) Upsert(ctx context.Context, s domain.PriceSnapshot) error {
	const up = `
        INSERT INTO prices(symbol, bid, ask, source, ts)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (symbol) DO UPDATE
          SET bid=EXCLUDED.bid, ask=EXCLUDED.ask, source=EXCLUDED.source, ts=EXCLUDED.ts`
	_, err := r.db.q(ctx).Exec(ctx, up, s.Symbol, s.Bid.String(), s.Ask.String(), s.Source, s.Timestamp)
	return err
}

func (r *SnapshotRepo) AppendHistory(ctx context.Context, s domain.PriceSnapshot) error {
	_, err := r.db.q(ctx).Exec(ctx, `
        INSERT INTO price_history(symbol, bid, ask, source, ts)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (symbol, ts) DO NOTHING
    `, s.Symbol, s.Bid.String(), s.Ask.String(), s.Source, s.Timestamp)
	return err
}
