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

const huobiTickersPath = "/market/tickers"

// Huobi wraps its tickers in a status envelope, uses lower-case symbols and
// native JSON numbers. Symbol casing is normalized here, not in the merge.
type Huobi struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.QuoteSource = (*Huobi)(nil)

type huobiTickersResp struct {
	Status string        `json:"status"`
	ErrMsg string        `json:"err-msg"`
	Data   []huobiTicker `json:"data"`
}

type huobiTicker struct {
	Symbol  string          `json:"symbol"`
	Bid     decimal.Decimal `json:"bid"`
	Ask     decimal.Decimal `json:"ask"`
	BidSize decimal.Decimal `json:"bidSize"`
	AskSize decimal.Decimal `json:"askSize"`
}

func (s *Huobi) Name() string { return "HUOBI" }

func (s *Huobi) Fetch(ctx context.Context, pairs domain.Pairs) ([]domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+huobiTickersPath, nil)
	if err != nil {
		return nil, fmt.Errorf("huobi: create request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body huobiTickersResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		return nil, fmt.Errorf("huobi: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("huobi: status %q: %s", body.Status, body.ErrMsg)
	}

	quotes := make([]domain.Quote, 0, len(pairs.Symbols()))
	for _, t := range body.Data {
		sym := strings.ToUpper(t.Symbol)
		if !pairs.Contains(sym) {
			continue
		}
		quotes = append(quotes, domain.Quote{
			Symbol:  sym,
			Bid:     t.Bid,
			Ask:     t.Ask,
			BidSize: t.BidSize,
			AskSize: t.AskSize,
			Source:  s.Name(),
		})
	}
	return quotes, nil
}
