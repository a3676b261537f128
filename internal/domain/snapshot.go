package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceMixed labels a snapshot whose best bid and best ask come from
// different sources.
const SourceMixed = "MIXED"

// PriceSnapshot is the merged best bid/ask for a symbol, persisted one live
// row per symbol by the aggregator.
type PriceSnapshot struct {
	Symbol    string
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Source    string
	Timestamp time.Time
}

// MergeQuotes folds the per-source quotes for one symbol into a snapshot:
// the merged bid is the highest bid on offer, the merged ask the lowest ask.
// The provenance label is the source whose own quote equals the merged pair,
// or SourceMixed when no single source wins both sides. The merge does not
// reject a crossed result (merged bid above merged ask); callers observe it
// as stored.
//
// Returns false when no quotes are available for the symbol.
func MergeQuotes(symbol string, quotes []Quote, at time.Time) (PriceSnapshot, bool) {
	if len(quotes) == 0 {
		return PriceSnapshot{}, false
	}
	if len(quotes) == 1 {
		q := quotes[0]
		return PriceSnapshot{Symbol: symbol, Bid: q.Bid, Ask: q.Ask, Source: q.Source, Timestamp: at}, true
	}

	bid, ask := quotes[0].Bid, quotes[0].Ask
	for _, q := range quotes[1:] {
		if q.Bid.GreaterThan(bid) {
			bid = q.Bid
		}
		if q.Ask.LessThan(ask) {
			ask = q.Ask
		}
	}

	label := SourceMixed
	for _, q := range quotes {
		if q.Bid.Equal(bid) && q.Ask.Equal(ask) {
			label = q.Source
			break
		}
	}

	return PriceSnapshot{Symbol: symbol, Bid: bid, Ask: ask, Source: label, Timestamp: at}, true
}

// Crossed reports whether the merged bid exceeds the merged ask.
func (s PriceSnapshot) Crossed() bool {
	return s.Bid.GreaterThan(s.Ask)
}

// PriceFor returns the execution price for a taker on the given side:
// buyers cross the spread at the ask, sellers at the bid.
func (s PriceSnapshot) PriceFor(side Side) decimal.Decimal {
	if side == SideBuy {
		return s.Ask
	}
	return s.Bid
}
