package domain

import (
	"fmt"
	"strings"
)

// Pairs is the tracked instrument set. Symbols are stored upper-case in
// BASE+QUOTE form where the quote currency is a fixed literal suffix
// (e.g. "BTCUSDT" with suffix "USDT").
type Pairs struct {
	symbols []string
	index   map[string]struct{}
	suffix  string
}

func NewPairs(symbols []string, quoteSuffix string) (Pairs, error) {
	suffix := strings.ToUpper(strings.TrimSpace(quoteSuffix))
	if suffix == "" {
		return Pairs{}, fmt.Errorf("quote suffix is required")
	}
	p := Pairs{index: make(map[string]struct{}, len(symbols)), suffix: suffix}
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if !strings.HasSuffix(sym, suffix) || len(sym) == len(suffix) {
			return Pairs{}, fmt.Errorf("symbol %q does not end in quote currency %q", sym, suffix)
		}
		if _, ok := p.index[sym]; ok {
			continue
		}
		p.index[sym] = struct{}{}
		p.symbols = append(p.symbols, sym)
	}
	if len(p.symbols) == 0 {
		return Pairs{}, fmt.Errorf("at least one tracked symbol is required")
	}
	return p, nil
}

func (p Pairs) Contains(symbol string) bool {
	_, ok := p.index[symbol]
	return ok
}

// Symbols returns the tracked symbols in configuration order.
func (p Pairs) Symbols() []string {
	out := make([]string, len(p.symbols))
	copy(out, p.symbols)
	return out
}

// Split breaks a tracked symbol into its base and quote currencies.
func (p Pairs) Split(symbol string) (base, quote string, err error) {
	if !p.Contains(symbol) {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}
	return strings.TrimSuffix(symbol, p.suffix), p.suffix, nil
}
