// Package domain defines the core data structures of the DCA bot.
package domain

import "fmt"

// PairFormat controls which side of a pair string comes first. Venues
// disagree on this, so the orientation is configured per exchange.
type PairFormat int

const (
	// FormatBaseQuote renders "BTC/USDT".
	FormatBaseQuote PairFormat = iota
	// FormatQuoteBase renders "USDT/BTC".
	FormatQuoteBase
)

// ParsePairFormat maps a config string to a PairFormat.
func ParsePairFormat(s string) (PairFormat, error) {
	switch s {
	case "", "base_quote":
		return FormatBaseQuote, nil
	case "quote_base":
		return FormatQuoteBase, nil
	default:
		return FormatBaseQuote, fmt.Errorf("unknown pair format %q", s)
	}
}

// Pair is a tradable base/quote combination. Base is the asset bought,
// Quote is the currency paid.
type Pair struct {
	Base  string
	Quote string
}

// String returns the canonical base-first representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// Format renders the pair in the given venue orientation.
func (p Pair) Format(f PairFormat) string {
	if f == FormatQuoteBase {
		return fmt.Sprintf("%s/%s", p.Quote, p.Base)
	}
	return p.String()
}

// Symbol returns the concatenated symbol used by exchange REST APIs.
func (p Pair) Symbol() string {
	return p.Base + p.Quote
}
