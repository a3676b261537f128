package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

// PriceService serves latest-price reads. Reads try the cache first and fall
// back to the snapshot store; cache errors degrade to repo reads.
type PriceService struct {
	snapshots SnapshotRepo
	cache     PriceCache
	pairs     domain.Pairs
	log       *zap.Logger
}

func NewPriceService(snapshots SnapshotRepo, cache PriceCache, pairs domain.Pairs, log *zap.Logger) *PriceService {
	if cache == nil {
		cache = NoopCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PriceService{snapshots: snapshots, cache: cache, pairs: pairs, log: log}
}

func (s *PriceService) GetLatestPrice(ctx context.Context, symbol string) (domain.PriceSnapshot, error) {
	if snap, ok, err := s.cache.Get(ctx, symbol); err != nil {
		s.log.Warn("price_cache_read_failed", zap.String("symbol", symbol), zap.Error(err))
	} else if ok {
		return snap, nil
	}

	snap, err := s.snapshots.GetLatest(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PriceSnapshot{}, fmt.Errorf("%w: %s", ErrPriceNotFound, symbol)
		}
		return domain.PriceSnapshot{}, fmt.Errorf("get latest price: %w", err)
	}
	return snap, nil
}

// GetAllLatestPrices returns snapshots for every tracked symbol that has one.
// Symbols without a snapshot are gaps, not errors.
func (s *PriceService) GetAllLatestPrices(ctx context.Context) ([]domain.PriceSnapshot, error) {
	out := make([]domain.PriceSnapshot, 0, len(s.pairs.Symbols()))
	for _, sym := range s.pairs.Symbols() {
		snap, err := s.GetLatestPrice(ctx, sym)
		if err != nil {
			if errors.Is(err, ErrPriceNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}
