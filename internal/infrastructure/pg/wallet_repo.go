package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

type WalletRepo struct{ db *DB }

func NewWalletRepo(db *DB) *WalletRepo { return &WalletRepo{db: db} }

func (r *WalletRepo) Get(ctx context.Context, userID, currency string) (domain.Wallet, error) {
	const q = `SELECT user_id, currency, balance::text FROM wallets WHERE user_id=$1 AND currency=$2`
	return r.scanWallet(r.db.q(ctx).QueryRow(ctx, q, userID, currency))
}

func (r *WalletRepo) ListByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	const q = `SELECT user_id, currency, balance::text FROM wallets WHERE user_id=$1 ORDER BY currency`
	rows, err := r.db.q(ctx).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Wallet
	for rows.Next() {
		w, err := r.scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Adjust applies the delta as a single atomic upsert-add, so a bare call is
// safe without a surrounding unit of work. The non-negative rule lives in
// the wallets check constraint and maps to ErrInsufficientBalance. Inside a
// unit of work the row lock taken by the update is held until commit, which
// serializes concurrent settlement on the same wallet.
func (r *WalletRepo) Adjust(ctx context.Context, userID, currency string, delta decimal.Decimal) error {
	_, err := r.db.q(ctx).Exec(ctx, `
        INSERT INTO wallets(user_id, currency, balance)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, currency) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance
    `, userID, currency, delta.String())
	return mapWriteError(err)
}

type rowScanner interface{ Scan(dest ...any) error }

func (r *WalletRepo) scanWallet(row rowScanner) (domain.Wallet, error) {
	var (
		w       domain.Wallet
		balance string
	)
	if err := row.Scan(&w.UserID, &w.Currency, &balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Wallet{}, domain.ErrNotFound
		}
		return domain.Wallet{}, err
	}
	var err error
	if w.Balance, err = decimal.NewFromString(balance); err != nil {
		return domain.Wallet{}, err
	}
	return w, nil
}
