package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stackerbot/stacker/config"
	"github.com/stackerbot/stacker/internal/bot"
	"github.com/stackerbot/stacker/internal/domain"
	"github.com/stackerbot/stacker/internal/gate"
	"github.com/stackerbot/stacker/internal/runner"
	"github.com/stackerbot/stacker/internal/setup"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	flags := config.ParseFlags()
	if flags.StrategiesPath == "" {
		path, err := setup.RunWizard()
		if err != nil {
			logger.Fatal("setup wizard failed", zap.Error(err))
		}
		flags.StrategiesPath = path
	}

	conf, err := config.Load(flags.StrategiesPath, flags.KeysPath, flags.Sandbox)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bot.New(conf, defaultHooks(conf, logger), logger)
	if err != nil {
		logger.Fatal("failed to build bot", zap.Error(err))
	}

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", zap.Error(err))
		return
	}
	logger.Info("bye")
}

// defaultHooks wires logging notifications and a cooldown gate sized to
// half the cycle interval, so a restarted process does not double-buy.
func defaultHooks(conf *config.Config, logger *zap.Logger) runner.Hooks {
	cooldown := gate.Cooldown(conf.CycleInterval / 2)

	return runner.Hooks{
		OnInsufficientFunds: func(exchangeName string, free, perPair decimal.Decimal, quoteAsset string) {
			logger.Warn("not enough funds to buy anything this cycle",
				zap.String("exchange", exchangeName),
				zap.String("free", free.String()),
				zap.String("per_pair", perPair.String()),
				zap.String("quote_asset", quoteAsset))
		},
		ShouldBuy: func(pair domain.Pair, exchangeName, period string, history []domain.Trade) bool {
			return cooldown(pair, exchangeName, period, history)
		},
		OnOrderCreated: func(exchangeName string, order domain.Order) {
			logger.Info("bought",
				zap.String("exchange", exchangeName),
				zap.String("pair", order.Pair.String()),
				zap.String("spent", order.RequestedQuote.String()),
				zap.String("filled", order.FilledBase.String()),
				zap.String("price", order.Price.String()),
				zap.String("order_id", order.ID))
		},
	}
}
