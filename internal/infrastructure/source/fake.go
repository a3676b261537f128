package source

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

// Ensure Fake implements application.QuoteSource.
var _ application.QuoteSource = (*Fake)(nil)

// Fake serves a constant book for every tracked pair; useful for local runs
// without exchange connectivity.
type Fake struct {
	name string
	bid  decimal.Decimal
	ask  decimal.Decimal
}

func NewFake(name string, bid, ask decimal.Decimal) *Fake {
	return &Fake{name: name, bid: bid, ask: ask}
}

func (f *Fake) Name() string { return f.name }

func (f *Fake) Fetch(_ context.Context, pairs domain.Pairs) ([]domain.Quote, error) {
	quotes := make([]domain.Quote, 0, len(pairs.Symbols()))
	for _, sym := range pairs.Symbols() {
		quotes = append(quotes, domain.Quote{Symbol: sym, Bid: f.bid, Ask: f.ask, Source: f.name})
	}
	return quotes, nil
}
