package domain

import "github.com/shopspring/decimal"

// Balance is the state of a single asset in an exchange wallet.
type Balance struct {
	// Free funds available for new orders.
	Free decimal.Decimal
	// Used funds locked in open orders.
	Used decimal.Decimal
	// Total is Free plus Used.
	Total decimal.Decimal
}

// BalanceSnapshot maps asset symbols to balances at a point in time.
type BalanceSnapshot map[string]Balance

// Free returns the available balance of an asset, zero when absent.
func (s BalanceSnapshot) Free(asset string) decimal.Decimal {
	if b, ok := s[asset]; ok {
		return b.Free
	}
	return decimal.Zero
}
