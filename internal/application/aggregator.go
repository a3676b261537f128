package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

// Aggregator periodically fetches quotes from every configured source,
// merges them per tracked pair and writes the result to the snapshot store.
// Sources are isolated: one failing source never blocks another's data, and
// a cycle where every source fails ends with no writes and is retried only
// on the next tick.
type Aggregator struct {
	sources   []QuoteSource
	snapshots SnapshotRepo
	cache     PriceCache
	pairs     domain.Pairs

	Interval     time.Duration
	FetchTimeout time.Duration
	Log          *zap.Logger

	clock Clock
}

type AggregatorOption func(*Aggregator)

func WithAggregatorClock(c Clock) AggregatorOption { return func(a *Aggregator) { a.clock = c } }

func NewAggregator(sources []QuoteSource, snapshots SnapshotRepo, cache PriceCache, pairs domain.Pairs, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		sources:   sources,
		snapshots: snapshots,
		cache:     cache,
		pairs:     pairs,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = NoopCache{}
	}
	if a.clock == nil {
		a.clock = realClock{}
	}
	return a
}

// Run executes one cycle immediately, then one per interval until the
// context is canceled. Cycle failures are logged, never fatal.
func (a *Aggregator) Run(ctx context.Context) {
	log := a.logger()
	interval := a.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	log.Info("aggregator_started", zap.Duration("interval", interval), zap.Strings("symbols", a.pairs.Symbols()))
	for {
		if err := a.RunCycle(ctx); err != nil {
			log.Warn("aggregation_cycle_failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			log.Info("aggregator_stopped")
			return
		case <-t.C:
		}
	}
}

type fetchResult struct {
	source string
	quotes []domain.Quote
	err    error
}

// RunCycle performs a single fetch-merge-persist pass. It returns
// ErrAggregationExhausted when no source produced data.
func (a *Aggregator) RunCycle(ctx context.Context) error {
	if len(a.sources) == 0 {
		return ErrAggregationExhausted
	}

	log := a.logger()
	results := a.fetchAll(ctx)

	bySymbol := make(map[string][]domain.Quote)
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			log.Warn("source_fetch_failed",
				zap.String("source", res.source),
				zap.Error(fmt.Errorf("%w: %v", ErrSourceUnavailable, res.err)))
			continue
		}
		for _, q := range res.quotes {
			bySymbol[q.Symbol] = append(bySymbol[q.Symbol], q)
		}
	}
	if failed == len(a.sources) {
		return ErrAggregationExhausted
	}

	now := a.clock.Now()
	for _, sym := range a.pairs.Symbols() {
		snap, ok := domain.MergeQuotes(sym, bySymbol[sym], now)
		if !ok {
			log.Debug("no_quote_for_symbol", zap.String("symbol", sym))
			continue
		}
		if err := a.persist(ctx, snap); err != nil {
			log.Error("snapshot_persist_failed", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		log.Info("snapshot_saved",
			zap.String("symbol", sym),
			zap.String("bid", snap.Bid.String()),
			zap.String("ask", snap.Ask.String()),
			zap.String("source", snap.Source))
	}
	return nil
}

// fetchAll queries every source concurrently, each under its own timeout so
// a stalled source cannot hold the cycle.
func (a *Aggregator) fetchAll(ctx context.Context) []fetchResult {
	timeout := a.FetchTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	results := make([]fetchResult, len(a.sources))
	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src QuoteSource) {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			quotes, err := src.Fetch(fctx, a.pairs)
			results[i] = fetchResult{source: src.Name(), quotes: quotes, err: err}
		}(i, src)
	}
	wg.Wait()
	return results
}

func (a *Aggregator) persist(ctx context.Context, snap domain.PriceSnapshot) error {
	if err := a.snapshots.Upsert(ctx, snap); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	if err := a.snapshots.AppendHistory(ctx, snap); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	// Cache is write-through but advisory; reads fall back to the repo.
	if err := a.cache.Set(ctx, snap); err != nil {
		a.logger().Warn("price_cache_write_failed", zap.String("symbol", snap.Symbol), zap.Error(err))
	}
	return nil
}

func (a *Aggregator) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}
