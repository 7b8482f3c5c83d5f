package bot

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stackerbot/stacker/config"
	"github.com/stackerbot/stacker/internal/domain"
	"github.com/stackerbot/stacker/internal/exchange"
	"github.com/stackerbot/stacker/internal/runner"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	first, err := domain.NewStrategy(decimal.NewFromInt(10), "USDT", []string{"BTC"}, []string{"binance", "bybit"}, "daily")
	require.NoError(t, err)
	second, err := domain.NewStrategy(decimal.NewFromInt(25), "USDT", []string{"ETH"}, []string{"binance"}, "weekly")
	require.NoError(t, err)

	return &config.Config{
		Strategies: []domain.Strategy{first, second},
		Keys: map[string]exchange.Credentials{
			"binance": {APIKey: "k", APISecret: "s"},
			"bybit":   {APIKey: "k", APISecret: "s"},
		},
		CycleInterval: time.Hour,
		PoolSize:      2,
	}
}

func TestNew_DeduplicatesExchanges(t *testing.T) {
	b, err := New(testConfig(t), runner.Hooks{}, zap.NewNop())
	require.NoError(t, err)

	// binance appears in both strategies but gets a single facade
	require.Len(t, b.exchanges, 2)
	names := []string{b.exchanges[0].Name(), b.exchanges[1].Name()}
	assert.Contains(t, names, "binance")
	assert.Contains(t, names, "bybit")
}

func TestNew_FailsOnBadClient(t *testing.T) {
	conf := testConfig(t)
	strat, err := domain.NewStrategy(decimal.NewFromInt(10), "USDC", []string{"BTC"}, []string{"hyperliquid"}, "daily")
	require.NoError(t, err)
	conf.Strategies = append(conf.Strategies, strat)
	conf.Keys["hyperliquid"] = exchange.Credentials{PrivateKey: "not-a-key"}

	_, err = New(conf, runner.Hooks{}, zap.NewNop())
	assert.Error(t, err)
}
