package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker holds the top-of-book prices for a pair. Ask is the side a
// market buy consumes.
type Ticker struct {
	Ask decimal.Decimal
	Bid decimal.Decimal
}

// Order is the result of a submitted market buy. Not persisted; it only
// lives long enough to be handed to notification hooks.
type Order struct {
	ID             string
	Pair           Pair
	RequestedQuote decimal.Decimal
	FilledBase     decimal.Decimal
	Price          decimal.Decimal
	Status         string
}

// String returns a human-readable summary.
func (o Order) String() string {
	return fmt.Sprintf("order %s %s filled %s @ %s (%s)",
		o.ID, o.Pair.String(), o.FilledBase.String(), o.Price.String(), o.Status)
}

// Trade is a single historical fill on a pair. The engine consumes only
// buyer-side fills, as an advisory signal for the buy gate.
type Trade struct {
	IsBuyer bool
	Price   decimal.Decimal
	Amount  decimal.Decimal
	Time    time.Time
}
