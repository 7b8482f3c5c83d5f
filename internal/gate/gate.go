// Package gate provides ready-made buy-gate predicates for the runner.
// Gates are advisory: they only see the caller's recent buyer-side fill
// history, and a history too short to judge always approves, because
// the default DCA behavior is to buy.
package gate

import (
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"

	"github.com/stackerbot/stacker/internal/domain"
)

// Func matches the runner's ShouldBuy hook signature.
type Func = func(pair domain.Pair, exchange, period string, history []domain.Trade) bool

// All combines gates; every gate must approve.
func All(gates ...Func) Func {
	return func(pair domain.Pair, exchange, period string, history []domain.Trade) bool {
		for _, g := range gates {
			if !g(pair, exchange, period, history) {
				return false
			}
		}
		return true
	}
}

// Cooldown declines while the newest buy fill is younger than minGap.
// Guards against double-buying when cycles fire close together.
func Cooldown(minGap time.Duration) Func {
	return func(_ domain.Pair, _, _ string, history []domain.Trade) bool {
		if len(history) == 0 {
			return true
		}
		newest := history[0].Time
		for _, t := range history[1:] {
			if t.Time.After(newest) {
				newest = t.Time
			}
		}
		return time.Since(newest) >= minGap
	}
}

// EMADip approves only when the latest fill price sits at or below the
// EMA of recent fill prices, i.e. the venue is not running away upward.
func EMADip(period int) Func {
	return func(_ domain.Pair, _, _ string, history []domain.Trade) bool {
		closes := fillPrices(history)
		if len(closes) < period {
			return true
		}

		ema := trend.NewEmaWithPeriod[float64](period)
		out := helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
		if len(out) == 0 {
			return true
		}

		last := closes[len(closes)-1]
		return last <= out[len(out)-1]
	}
}

// RSICap declines when the RSI of recent fill prices exceeds max,
// pausing purchases into an overheated run-up.
func RSICap(period int, max float64) Func {
	return func(_ domain.Pair, _, _ string, history []domain.Trade) bool {
		closes := fillPrices(history)
		if len(closes) < period+1 {
			return true
		}

		rsi := momentum.NewRsiWithPeriod[float64](period)
		out := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
		if len(out) == 0 {
			return true
		}

		return out[len(out)-1] <= max
	}
}

// fillPrices extracts fill prices oldest first.
func fillPrices(history []domain.Trade) []float64 {
	prices := make([]float64, 0, len(history))
	for _, t := range history {
		p, _ := t.Price.Float64()
		prices = append(prices, p)
	}
	return prices
}
