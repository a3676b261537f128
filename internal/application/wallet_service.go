package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

// WalletService is the ledger surface: balances are only ever mutated through
// Adjust, which the settlement engine composes into two-leg transfers.
type WalletService struct {
	wallets WalletRepo
}

func NewWalletService(wallets WalletRepo) *WalletService {
	return &WalletService{wallets: wallets}
}

func (s *WalletService) GetBalance(ctx context.Context, userID, currency string) (domain.Wallet, error) {
	w, err := s.wallets.Get(ctx, userID, currency)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Wallet{}, err
		}
		return domain.Wallet{}, fmt.Errorf("get balance: %w", err)
	}
	return w, nil
}

func (s *WalletService) GetUserWallets(ctx context.Context, userID string) ([]domain.Wallet, error) {
	return s.wallets.ListByUser(ctx, userID)
}

// Adjust applies one signed delta to a wallet, enforcing non-negativity.
func (s *WalletService) Adjust(ctx context.Context, userID, currency string, delta decimal.Decimal) error {
	return s.wallets.Adjust(ctx, userID, currency, delta)
}
