package domain

import "github.com/shopspring/decimal"

// Allocation is one funded entry of an allocation plan.
type Allocation struct {
	Pair   Pair
	Amount decimal.Decimal
}

// Allocate selects which pairs receive an order this cycle. Pairs are
// visited in declared order and funded greedily with perPair each; a pair
// that no longer fits is skipped, not a stopping point. The running total
// of funded amounts never exceeds free.
//
// A strategy's declared asset order is its priority order under scarcity.
func Allocate(free, perPair decimal.Decimal, pairs []Pair) []Allocation {
	if perPair.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	var plan []Allocation
	committed := decimal.Zero
	for _, pair := range pairs {
		if committed.Add(perPair).GreaterThan(free) {
			continue
		}
		committed = committed.Add(perPair)
		plan = append(plan, Allocation{Pair: pair, Amount: perPair})
	}
	return plan
}
