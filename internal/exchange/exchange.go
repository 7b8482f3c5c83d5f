// Package exchange presents trading venues to the execution engine
// through a uniform, retrying facade.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stackerbot/stacker/internal/domain"
	"github.com/stackerbot/stacker/pkg/retrier"
)

// how many recent fills to pull for the advisory buy gate
const recentTradesLimit = 50

// Client is the raw venue capability wrapped by the facade. One
// implementation exists per supported exchange.
type Client interface {
	Balances(ctx context.Context) (domain.BalanceSnapshot, error)
	Ticker(ctx context.Context, pair domain.Pair) (domain.Ticker, error)
	RecentTrades(ctx context.Context, pair domain.Pair, limit int) ([]domain.Trade, error)
	MarketBuy(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (domain.Order, error)
}

// Exchange routes every Client call through the retrier. Safe for
// concurrent use: it holds no mutable state of its own.
type Exchange struct {
	name   string
	client Client
	format domain.PairFormat
	retr   *retrier.Retrier
	logger *zap.Logger
}

// NewExchange wraps a venue client. A nil retrier gets the default
// fixed-delay policy.
func NewExchange(name string, client Client, format domain.PairFormat, retr *retrier.Retrier, logger *zap.Logger) *Exchange {
	if retr == nil {
		retr = retrier.New(retrier.WithLogger(logger))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exchange{
		name:   name,
		client: client,
		format: format,
		retr:   retr,
		logger: logger,
	}
}

// Name returns the unique exchange identifier.
func (e *Exchange) Name() string { return e.name }

// PairFormat returns the venue's pair string orientation.
func (e *Exchange) PairFormat() domain.PairFormat { return e.format }

// Equal reports whether two facades address the same venue. Identity is
// the name alone.
func (e *Exchange) Equal(other *Exchange) bool {
	if other == nil {
		return false
	}
	return e.name == other.name
}

// GetBalances fetches the full wallet snapshot. Fails with
// retrier.ErrExhausted when the venue stays unreachable.
func (e *Exchange) GetBalances(ctx context.Context) (domain.BalanceSnapshot, error) {
	return retrier.DoWithData(e.retr, ctx, e.name+".balances", func(ctx context.Context) (domain.BalanceSnapshot, error) {
		return e.client.Balances(ctx)
	})
}

// GetPrice fetches the top-of-book prices for a pair. The ask side is
// what a market buy consumes.
func (e *Exchange) GetPrice(ctx context.Context, pair domain.Pair) (domain.Ticker, error) {
	return retrier.DoWithData(e.retr, ctx, e.name+".price", func(ctx context.Context) (domain.Ticker, error) {
		return e.client.Ticker(ctx, pair)
	})
}

// GetRecentBuyTrades fetches the caller's recent buyer-side fills on a
// pair, newest last. Purely advisory: callers treat a failure here as
// "no history available".
func (e *Exchange) GetRecentBuyTrades(ctx context.Context, pair domain.Pair) ([]domain.Trade, error) {
	trades, err := retrier.DoWithData(e.retr, ctx, e.name+".trades", func(ctx context.Context) ([]domain.Trade, error) {
		return e.client.RecentTrades(ctx, pair, recentTradesLimit)
	})
	if err != nil {
		return nil, err
	}

	buys := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsBuyer {
			buys = append(buys, t)
		}
	}
	return buys, nil
}

// Buy submits a market buy sized in base-asset units.
func (e *Exchange) Buy(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (domain.Order, error) {
	e.logger.Info("submitting market buy",
		zap.String("exchange", e.name),
		zap.String("pair", pair.Format(e.format)),
		zap.String("amount", baseAmount.String()))

	return retrier.DoWithData(e.retr, ctx, e.name+".buy", func(ctx context.Context) (domain.Order, error) {
		return e.client.MarketBuy(ctx, pair, baseAmount)
	})
}

// Dedupe drops facades whose name was already seen, preserving order.
// Strategies may list overlapping exchanges; one client per venue is
// enough.
func Dedupe(exchanges []*Exchange) []*Exchange {
	seen := make(map[string]struct{}, len(exchanges))
	out := make([]*Exchange, 0, len(exchanges))
	for _, ex := range exchanges {
		if _, ok := seen[ex.Name()]; ok {
			continue
		}
		seen[ex.Name()] = struct{}{}
		out = append(out, ex)
	}
	return out
}
