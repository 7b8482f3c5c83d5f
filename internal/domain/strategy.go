package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Strategy is an immutable description of a recurring DCA plan: spend
// Amount of QuoteAsset on every asset, on every listed exchange, once
// per cycle. Read-only after construction.
type Strategy struct {
	// Amount quote-currency amount to spend per pair per cycle.
	Amount decimal.Decimal
	// QuoteAsset currency used to pay, e.g. "USDT".
	QuoteAsset string
	// Assets target asset symbols, order-preserving and upper-cased.
	Assets []string
	// Exchanges identifiers of the exchanges this strategy runs on.
	Exchanges []string
	// Period descriptive scheduling label, e.g. "daily".
	Period string
}

// NewStrategy validates and normalizes a strategy definition. Asset and
// exchange order is preserved; duplicates are dropped.
func NewStrategy(amount decimal.Decimal, quoteAsset string, assets, exchanges []string, period string) (Strategy, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Strategy{}, fmt.Errorf("amount must be positive, got %s", amount.String())
	}

	quoteAsset = strings.ToUpper(strings.TrimSpace(quoteAsset))
	if quoteAsset == "" {
		return Strategy{}, fmt.Errorf("quote asset is empty")
	}

	normalized := make([]string, 0, len(assets))
	seen := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		a = strings.ToUpper(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		if a == quoteAsset {
			return Strategy{}, fmt.Errorf("asset %s equals the quote asset", a)
		}
		seen[a] = struct{}{}
		normalized = append(normalized, a)
	}
	if len(normalized) == 0 {
		return Strategy{}, fmt.Errorf("assets list is empty")
	}

	exs := make([]string, 0, len(exchanges))
	seenEx := make(map[string]struct{}, len(exchanges))
	for _, e := range exchanges {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, ok := seenEx[e]; ok {
			continue
		}
		seenEx[e] = struct{}{}
		exs = append(exs, e)
	}
	if len(exs) == 0 {
		return Strategy{}, fmt.Errorf("exchanges list is empty")
	}

	return Strategy{
		Amount:     amount,
		QuoteAsset: quoteAsset,
		Assets:     normalized,
		Exchanges:  exs,
		Period:     period,
	}, nil
}

// Pairs derives one trading pair per asset, in declared asset order.
func (s Strategy) Pairs() []Pair {
	pairs := make([]Pair, 0, len(s.Assets))
	for _, asset := range s.Assets {
		pairs = append(pairs, Pair{Base: asset, Quote: s.QuoteAsset})
	}
	return pairs
}

// RunsOn reports whether the strategy lists the given exchange.
func (s Strategy) RunsOn(exchange string) bool {
	for _, e := range s.Exchanges {
		if e == exchange {
			return true
		}
	}
	return false
}

// String returns a human-readable identifier.
func (s Strategy) String() string {
	return fmt.Sprintf("strategy-%s-%s", s.Period, s.Amount.String())
}
