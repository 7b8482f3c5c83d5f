// Package bot owns the long-running lifecycle: build the exchange
// facades once, then dispatch one execution cycle per tick until the
// surrounding process asks to stop.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackerbot/stacker/config"
	"github.com/stackerbot/stacker/internal/exchange"
	"github.com/stackerbot/stacker/internal/runner"
)

// Bot runs every configured strategy on a fixed cycle.
type Bot struct {
	conf       *config.Config
	exchanges  []*exchange.Exchange
	dispatcher *runner.Dispatcher
	logger     *zap.Logger
}

// New builds one facade per distinct exchange referenced by any
// strategy and wires the dispatcher.
func New(conf *config.Config, hooks runner.Hooks, logger *zap.Logger) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var exchanges []*exchange.Exchange
	seen := make(map[string]struct{})
	for _, strat := range conf.Strategies {
		for _, name := range strat.Exchanges {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}

			ex, err := exchange.New(name, conf.Keys[name], conf.Sandbox, logger)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to create client for exchange %s", name)
			}
			exchanges = append(exchanges, ex)
		}
	}

	d := runner.NewDispatcher(runner.New(hooks, logger), conf.PoolSize, logger)

	return &Bot{
		conf:       conf,
		exchanges:  exchanges,
		dispatcher: d,
		logger:     logger,
	}, nil
}

// Run dispatches the first cycle immediately, then one per tick.
// Cancellation is honored between cycles only: in-flight runs complete
// rather than being cut off mid-retry.
func (b *Bot) Run(ctx context.Context) error {
	for _, strat := range b.conf.Strategies {
		pairs := make([]string, 0, len(strat.Assets))
		for _, p := range strat.Pairs() {
			pairs = append(pairs, p.String())
		}
		b.logger.Info("running strategy",
			zap.String("strategy", strat.String()),
			zap.String("pairs", strings.Join(pairs, ", ")),
			zap.Strings("exchanges", strat.Exchanges))
	}

	ticker := time.NewTicker(b.conf.CycleInterval)
	defer ticker.Stop()

	b.dispatcher.Dispatch(ctx, b.conf.Strategies, b.exchanges)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("shutdown requested, stopping between cycles")
			return ctx.Err()
		case <-ticker.C:
			b.dispatcher.Dispatch(ctx, b.conf.Strategies, b.exchanges)
		}
	}
}
