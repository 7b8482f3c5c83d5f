package runner

import (
	"context"
	"sync"

	"github.com/bytedance/gopkg/util/gopool"
	"go.uber.org/zap"

	"github.com/stackerbot/stacker/internal/domain"
	"github.com/stackerbot/stacker/internal/exchange"
)

// DefaultPoolSize bounds concurrent runs, and with them concurrent
// requests against rate-limited exchange APIs.
const DefaultPoolSize = 5

// Dispatcher fans independent (strategy, exchange) runs out onto a
// bounded worker pool. Units share no mutable state and carry no
// ordering guarantees.
type Dispatcher struct {
	runner *Runner
	pool   gopool.Pool
	logger *zap.Logger
}

// NewDispatcher builds a dispatcher with the given pool size; zero or
// negative falls back to DefaultPoolSize.
func NewDispatcher(runner *Runner, poolSize int, logger *zap.Logger) *Dispatcher {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := gopool.NewPool("stacker-runs", int32(poolSize), gopool.NewConfig())
	pool.SetPanicHandler(func(_ context.Context, r interface{}) {
		logger.Error("run panicked", zap.Any("panic", r))
	})

	return &Dispatcher{runner: runner, pool: pool, logger: logger}
}

// Dispatch submits one run per (strategy, listed exchange) pair and
// blocks until every run reaches a terminal state. Exchanges are
// deduplicated by name first, so overlapping strategy exchange lists
// share a single facade. A strategy naming an exchange with no
// configured facade logs and skips that unit.
func (d *Dispatcher) Dispatch(ctx context.Context, strategies []domain.Strategy, exchanges []*exchange.Exchange) {
	deduped := exchange.Dedupe(exchanges)
	byName := make(map[string]*exchange.Exchange, len(deduped))
	for _, ex := range deduped {
		byName[ex.Name()] = ex
	}

	var wg sync.WaitGroup
	for _, strat := range strategies {
		for _, name := range strat.Exchanges {
			ex, ok := byName[name]
			if !ok {
				d.logger.Warn("no client configured for exchange, skipping",
					zap.String("strategy", strat.String()),
					zap.String("exchange", name))
				continue
			}

			strat := strat
			wg.Add(1)
			d.pool.CtxGo(ctx, func() {
				defer wg.Done()
				// a run's failure is terminal for that run only
				if _, err := d.runner.Run(ctx, strat, ex); err != nil {
					d.logger.Error("run aborted",
						zap.String("strategy", strat.String()),
						zap.String("exchange", ex.Name()),
						zap.Error(err))
				}
			})
		}
	}
	wg.Wait()
}
