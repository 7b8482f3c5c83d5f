package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stackerbot/stacker/internal/domain"
	"github.com/stackerbot/stacker/internal/exchange"
	"github.com/stackerbot/stacker/pkg/retrier"
)

// fakeClient scripts per-pair failures and records call counts.
type fakeClient struct {
	mu sync.Mutex

	free        decimal.Decimal
	quoteAsset  string
	ask         decimal.Decimal
	balancesErr error
	historyErr  map[string]error
	priceErr    map[string]error
	buyErr      map[string]error
	history     map[string][]domain.Trade

	balanceCalls int
	priceCalls   map[string]int
	buyCalls     map[string]int
}

func newFakeClient(free int64, quoteAsset string) *fakeClient {
	return &fakeClient{
		free:       decimal.NewFromInt(free),
		quoteAsset: quoteAsset,
		ask:        decimal.NewFromInt(100),
		historyErr: map[string]error{},
		priceErr:   map[string]error{},
		buyErr:     map[string]error{},
		history:    map[string][]domain.Trade{},
		priceCalls: map[string]int{},
		buyCalls:   map[string]int{},
	}
}

func (f *fakeClient) Balances(ctx context.Context) (domain.BalanceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	if f.balancesErr != nil {
		return nil, f.balancesErr
	}
	return domain.BalanceSnapshot{
		f.quoteAsset: {Free: f.free, Total: f.free},
	}, nil
}

func (f *fakeClient) Ticker(ctx context.Context, pair domain.Pair) (domain.Ticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls[pair.String()]++
	if err := f.priceErr[pair.String()]; err != nil {
		return domain.Ticker{}, err
	}
	return domain.Ticker{Ask: f.ask, Bid: f.ask.Sub(decimal.NewFromInt(1))}, nil
}

func (f *fakeClient) RecentTrades(ctx context.Context, pair domain.Pair, limit int) ([]domain.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.historyErr[pair.String()]; err != nil {
		return nil, err
	}
	return f.history[pair.String()], nil
}

func (f *fakeClient) MarketBuy(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buyCalls[pair.String()]++
	if err := f.buyErr[pair.String()]; err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		ID:         fmt.Sprintf("%s-%d", pair.Symbol(), f.buyCalls[pair.String()]),
		Pair:       pair,
		FilledBase: baseAmount,
		Price:      f.ask,
		Status:     "FILLED",
	}, nil
}

func fakeExchange(name string, client exchange.Client) *exchange.Exchange {
	retr := retrier.New(retrier.WithMaxAttempts(2), retrier.WithDelay(time.Millisecond))
	return exchange.NewExchange(name, client, domain.FormatBaseQuote, retr, zap.NewNop())
}

func mustStrategy(t *testing.T, amount int64, assets ...string) domain.Strategy {
	t.Helper()
	strat, err := domain.NewStrategy(decimal.NewFromInt(amount), "USDT", assets, []string{"binance"}, "daily")
	require.NoError(t, err)
	return strat
}

func TestRunner_EndToEndPartialAllocation(t *testing.T) {
	// 15 USDT free, 10 per pair: only the first of two pairs is funded
	client := newFakeClient(15, "USDT")
	ex := fakeExchange("binance", client)
	strat := mustStrategy(t, 10, "BTC", "ETH")

	insufficientCalls := 0
	var created []domain.Order
	r := New(Hooks{
		OnInsufficientFunds: func(string, decimal.Decimal, decimal.Decimal, string) {
			insufficientCalls++
		},
		OnOrderCreated: func(_ string, order domain.Order) {
			created = append(created, order)
		},
	}, zap.NewNop())

	orders, err := r.Run(context.Background(), strat, ex)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "BTC/USDT", orders[0].Pair.String())
	assert.True(t, orders[0].RequestedQuote.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, client.buyCalls["BTC/USDT"])
	assert.Zero(t, client.buyCalls["ETH/USDT"])
	assert.Zero(t, insufficientCalls)
	assert.Len(t, created, 1)
}

func TestRunner_InsufficientFunds(t *testing.T) {
	client := newFakeClient(5, "USDT")
	ex := fakeExchange("binance", client)
	strat := mustStrategy(t, 10, "BTC", "ETH")

	insufficientCalls := 0
	r := New(Hooks{
		OnInsufficientFunds: func(exchangeName string, free, perPair decimal.Decimal, quoteAsset string) {
			insufficientCalls++
			assert.Equal(t, "binance", exchangeName)
			assert.True(t, free.Equal(decimal.NewFromInt(5)))
			assert.True(t, perPair.Equal(decimal.NewFromInt(10)))
			assert.Equal(t, "USDT", quoteAsset)
		},
	}, zap.NewNop())

	orders, err := r.Run(context.Background(), strat, ex)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 1, insufficientCalls)
	assert.Empty(t, client.buyCalls)
}

func TestRunner_BalanceFetchExhaustionAbortsRun(t *testing.T) {
	client := newFakeClient(100, "USDT")
	client.balancesErr = errors.New("unreachable")
	ex := fakeExchange("binance", client)
	strat := mustStrategy(t, 10, "BTC")

	r := New(Hooks{}, zap.NewNop())
	orders, err := r.Run(context.Background(), strat, ex)
	require.Error(t, err)
	assert.ErrorIs(t, err, retrier.ErrExhausted)
	assert.Empty(t, orders)
	assert.Empty(t, client.buyCalls)
}

func TestRunner_GateSkipsPairOnly(t *testing.T) {
	client := newFakeClient(100, "USDT")
	ex := fakeExchange("binance", client)
	strat := mustStrategy(t, 10, "BTC", "ETH")

	r := New(Hooks{
		ShouldBuy: func(pair domain.Pair, _, _ string, _ []domain.Trade) bool {
			return pair.Base != "BTC"
		},
	}, zap.NewNop())

	orders, err := r.Run(context.Background(), strat, ex)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ETH/USDT", orders[0].Pair.String())
	assert.Zero(t, client.priceCalls["BTC/USDT"])
	assert.Zero(t, client.buyCalls["BTC/USDT"])
	assert.Equal(t, 1, client.buyCalls["ETH/USDT"])
}

func TestRunner_HistoryFailureDegradesToEmpty(t *testing.T) {
	client := newFakeClient(100, "USDT")
	client.historyErr["BTC/USDT"] = errors.New("unreachable")
	client.history["ETH/USDT"] = []domain.Trade{
		{IsBuyer: true, Price: decimal.NewFromInt(90), Amount: decimal.NewFromInt(1)},
	}
	ex := fakeExchange("binance", client)
	strat := mustStrategy(t, 10, "BTC", "ETH")

	gateHistory := map[string]int{}
	r := New(Hooks{
		ShouldBuy: func(pair domain.Pair, _, _ string, history []domain.Trade) bool {
			gateHistory[pair.String()] = len(history)
			return true
		},
	}, zap.NewNop())

	orders, err := r.Run(context.Background(), strat, ex)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Zero(t, gateHistory["BTC/USDT"])
	assert.Equal(t, 1, gateHistory["ETH/USDT"])
	assert.Equal(t, 1, client.buyCalls["BTC/USDT"])
}

func TestRunner_PriceFailureSkipsPairOnly(t *testing.T) {
	client := newFakeClient(100, "USDT")
	client.priceErr["BTC/USDT"] = errors.New("unreachable")
	ex := fakeExchange("binance", client)
	strat := mustStrategy(t, 10, "BTC", "ETH")

	r := New(Hooks{}, zap.NewNop())
	orders, err := r.Run(context.Background(), strat, ex)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ETH/USDT", orders[0].Pair.String())
	assert.Zero(t, client.buyCalls["BTC/USDT"])
}

func TestRunner_BuyFailureSkipsPairOnly(t *testing.T) {
	client := newFakeClient(100, "USDT")
	client.buyErr["BTC/USDT"] = errors.New("rejected")
	ex := fakeExchange("binance", client)
	strat := mustStrategy(t, 10, "BTC", "ETH")

	r := New(Hooks{}, zap.NewNop())
	orders, err := r.Run(context.Background(), strat, ex)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ETH/USDT", orders[0].Pair.String())
	assert.Equal(t, 1, client.buyCalls["ETH/USDT"])
}

func TestRunner_QuantityFromAskPrice(t *testing.T) {
	client := newFakeClient(100, "USDT")
	client.ask = decimal.NewFromInt(3)
	ex := fakeExchange("binance", client)
	strat := mustStrategy(t, 10, "BTC")

	r := New(Hooks{}, zap.NewNop())
	orders, err := r.Run(context.Background(), strat, ex)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	// 10 / 3 truncated to 8 decimal places
	want, err := decimal.NewFromString("3.33333333")
	require.NoError(t, err)
	assert.True(t, orders[0].FilledBase.Equal(want), "got %s", orders[0].FilledBase.String())
}
