package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
	"github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/httpx"
)

const binanceBookTickerPath = "/api/v3/ticker/bookTicker"

// Binance returns every known symbol's best bid/ask as one flat array with
// decimal-formatted strings and upper-case symbols. Filtering to the tracked
// set happens client-side.
type Binance struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.QuoteSource = (*Binance)(nil)

type binanceBookTicker struct {
	Symbol   string          `json:"symbol"`
	BidPrice decimal.Decimal `json:"bidPrice"`
	AskPrice decimal.Decimal `json:"askPrice"`
	BidQty   decimal.Decimal `json:"bidQty"`
	AskQty   decimal.Decimal `json:"askQty"`
}

func (s *Binance) Name() string { return "BINANCE" }

func (s *Binance) Fetch(ctx context.Context, pairs domain.Pairs) ([]domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+binanceBookTickerPath, nil)
	if err != nil {
		return nil, fmt.Errorf("binance: create request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body []binanceBookTicker
	if err := client.DoJSON(ctx, req, &body); err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}

	quotes := make([]domain.Quote, 0, len(pairs.Symbols()))
	for _, t := range body {
		sym := strings.ToUpper(t.Symbol)
		if !pairs.Contains(sym) {
			continue
		}
		quotes = append(quotes, domain.Quote{
			Symbol:  sym,
			Bid:     t.BidPrice,
			Ask:     t.AskPrice,
			BidSize: t.BidQty,
			AskSize: t.AskQty,
			Source:  s.Name(),
		})
	}
	return quotes, nil
}
