// Package runner drives strategy execution: one run per
// (strategy, exchange) pair, fanned out on a bounded worker pool.
package runner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stackerbot/stacker/internal/domain"
	"github.com/stackerbot/stacker/internal/exchange"
)

// base quantities are truncated to this scale before submission;
// anything finer is a venue lot-size concern
const quantityScale = 8

// Hooks are the optional gating and notification callbacks of a run.
// A nil field simply disables that hook.
type Hooks struct {
	// OnInsufficientFunds fires once when a run allocates zero pairs.
	OnInsufficientFunds func(exchange string, free, perPair decimal.Decimal, quoteAsset string)
	// ShouldBuy is consulted per allocated pair before any price fetch.
	// Returning false skips the pair. History holds the caller's recent
	// buyer-side fills and may be empty when the venue was unreachable.
	ShouldBuy func(pair domain.Pair, exchange, period string, history []domain.Trade) bool
	// OnOrderCreated fires after every successfully submitted order.
	OnOrderCreated func(exchange string, order domain.Order)
}

// Runner executes one strategy against one exchange. Stateless between
// runs; all per-run state lives on the stack of Run.
type Runner struct {
	hooks  Hooks
	logger *zap.Logger
}

// New creates a Runner with the given hooks.
func New(hooks Hooks, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{hooks: hooks, logger: logger}
}

// Run executes a single cycle of the strategy on the exchange and
// returns the orders it created. The only error it reports is a balance
// snapshot that stayed unreachable through every retry; everything past
// that point degrades per pair and is reported through logs and hooks.
func (r *Runner) Run(ctx context.Context, strat domain.Strategy, ex *exchange.Exchange) ([]domain.Order, error) {
	log := r.logger.With(
		zap.String("strategy", strat.String()),
		zap.String("exchange", ex.Name()))

	balances, err := ex.GetBalances(ctx)
	if err != nil {
		log.Error("failed to fetch balances, aborting run", zap.Error(err))
		return nil, errors.Wrap(err, "failed to fetch balances")
	}

	free := balances.Free(strat.QuoteAsset)
	pairs := strat.Pairs()
	plan := domain.Allocate(free, strat.Amount, pairs)

	if len(plan) == 0 {
		log.Warn("insufficient funds, no pairs allocated",
			zap.String("free", free.String()),
			zap.String("per_pair", strat.Amount.String()),
			zap.String("quote_asset", strat.QuoteAsset))
		if r.hooks.OnInsufficientFunds != nil {
			r.hooks.OnInsufficientFunds(ex.Name(), free, strat.Amount, strat.QuoteAsset)
		}
		return nil, nil
	}

	if len(plan) < len(pairs) {
		log.Warn("partial allocation, free balance covers a subset",
			zap.Int("funded", len(plan)),
			zap.Int("requested", len(pairs)),
			zap.String("free", free.String()))
	} else {
		log.Info("full allocation",
			zap.Int("pairs", len(plan)),
			zap.String("free", free.String()))
	}

	var orders []domain.Order
	for _, alloc := range plan {
		order, ok := r.buyPair(ctx, log, strat, ex, alloc)
		if !ok {
			continue
		}
		orders = append(orders, order)
		if r.hooks.OnOrderCreated != nil {
			r.hooks.OnOrderCreated(ex.Name(), order)
		}
	}

	log.Info("run complete", zap.Int("orders", len(orders)))
	return orders, nil
}

// buyPair walks one pair through history, gate, price and submission.
// Every failure skips only this pair; sibling pairs are unaffected.
func (r *Runner) buyPair(ctx context.Context, log *zap.Logger, strat domain.Strategy, ex *exchange.Exchange, alloc domain.Allocation) (domain.Order, bool) {
	pairLog := log.With(zap.String("pair", alloc.Pair.Format(ex.PairFormat())))

	history, err := ex.GetRecentBuyTrades(ctx, alloc.Pair)
	if err != nil {
		pairLog.Warn("trade history unavailable, proceeding without it", zap.Error(err))
		history = nil
	}

	if r.hooks.ShouldBuy != nil && !r.hooks.ShouldBuy(alloc.Pair, ex.Name(), strat.Period, history) {
		pairLog.Info("buy gate declined pair")
		return domain.Order{}, false
	}

	ticker, err := ex.GetPrice(ctx, alloc.Pair)
	if err != nil {
		pairLog.Error("failed to fetch price, skipping pair", zap.Error(err))
		return domain.Order{}, false
	}
	if ticker.Ask.LessThanOrEqual(decimal.Zero) {
		pairLog.Error("non-positive ask price, skipping pair", zap.String("ask", ticker.Ask.String()))
		return domain.Order{}, false
	}

	quantity := alloc.Amount.Div(ticker.Ask).RoundFloor(quantityScale)
	if quantity.LessThanOrEqual(decimal.Zero) {
		pairLog.Error("computed quantity rounds to zero, skipping pair",
			zap.String("amount", alloc.Amount.String()),
			zap.String("ask", ticker.Ask.String()))
		return domain.Order{}, false
	}

	order, err := ex.Buy(ctx, alloc.Pair, quantity)
	if err != nil {
		pairLog.Error("failed to submit order, skipping pair", zap.Error(err))
		return domain.Order{}, false
	}

	order.Pair = alloc.Pair
	order.RequestedQuote = alloc.Amount
	if order.Price.IsZero() {
		order.Price = ticker.Ask
	}

	pairLog.Info("order created",
		zap.String("id", order.ID),
		zap.String("quantity", quantity.String()),
		zap.String("price", order.Price.String()),
		zap.String("status", order.Status))
	return order, true
}
