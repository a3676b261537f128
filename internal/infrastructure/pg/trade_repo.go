package pg

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

type TradeRepo struct{ db *DB }

func NewTradeRepo(db *DB) *TradeRepo { return &TradeRepo{db: db} }

func (r *TradeRepo) Append(ctx context.Context, t domain.Trade) error {
	_, err := r.db.q(ctx).Exec(ctx, `
        INSERT INTO trades(id, user_id, symbol, side, price, quantity, total, executed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, t.ID, t.UserID, t.Symbol, string(t.Side), t.Price.String(), t.Quantity.String(), t.Total.String(), t.ExecutedAt)
	return mapWriteError(err)
}

func (r *TradeRepo) ListByUser(ctx context.Context, userID string) ([]domain.Trade, error) {
	const q = `
        SELECT id, user_id, symbol, side, price::text, quantity::text, total::text, executed_at
        FROM trades WHERE user_id=$1 ORDER BY executed_at DESC`
	rows, err := r.db.q(ctx).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Trade
	for rows.Next() {
		var (
			t                      domain.Trade
			side                   string
			price, quantity, total string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &side, &price, &quantity, &total, &t.ExecutedAt); err != nil {
			return nil, err
		}
		t.Side = domain.Side(side)
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, err
		}
		if t.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
