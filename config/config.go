// Package config loads the strategies file and the exchange keys file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/stackerbot/stacker/internal/domain"
	"github.com/stackerbot/stacker/internal/exchange"
)

const (
	defaultCycleInterval = 24 * time.Hour
	defaultPoolSize      = 5
)

// Config is the fully parsed bot configuration.
type Config struct {
	Strategies []domain.Strategy
	// Keys maps exchange names to their credentials.
	Keys map[string]exchange.Credentials
	// CycleInterval spaces execution cycles.
	CycleInterval time.Duration
	// PoolSize bounds concurrent (strategy, exchange) runs.
	PoolSize int
	// Sandbox routes every exchange client to its testnet.
	Sandbox bool
}

type strategyTmp struct {
	Period     string   `yaml:"period"`
	Amount     string   `yaml:"amount"`
	QuoteAsset string   `yaml:"quote_asset"`
	Assets     []string `yaml:"assets"`
	Exchanges  []string `yaml:"exchanges"`
}

type configTmp struct {
	CycleInterval string        `yaml:"cycle_interval,omitempty"`
	PoolSize      int           `yaml:"pool_size,omitempty"`
	Strategies    []strategyTmp `yaml:"strategies"`
}

// Load reads and validates both config files.
func Load(strategiesPath, keysPath string, sandbox bool) (*Config, error) {
	conf, err := loadStrategies(strategiesPath)
	if err != nil {
		return nil, err
	}

	keys, err := loadKeys(keysPath)
	if err != nil {
		return nil, err
	}

	conf.Keys = keys
	conf.Sandbox = sandbox

	// every exchange a strategy references needs credentials
	for _, strat := range conf.Strategies {
		for _, name := range strat.Exchanges {
			if _, ok := keys[name]; !ok {
				return nil, fmt.Errorf("strategy %s references exchange %s with no keys configured", strat.String(), name)
			}
		}
	}

	return conf, nil
}

func loadStrategies(path string) (*Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return nil, fmt.Errorf("incorrect strategies yaml: %w", err)
	}
	if len(tmp.Strategies) == 0 {
		return nil, fmt.Errorf("strategies file %s defines no strategies", path)
	}

	conf := &Config{
		CycleInterval: defaultCycleInterval,
		PoolSize:      tmp.PoolSize,
	}
	if tmp.CycleInterval != "" {
		interval, err := time.ParseDuration(tmp.CycleInterval)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("invalid 'cycle_interval' %q (correct format is 24h)", tmp.CycleInterval)
		}
		conf.CycleInterval = interval
	}
	if conf.PoolSize <= 0 {
		conf.PoolSize = defaultPoolSize
	}

	for i, s := range tmp.Strategies {
		amount, err := decimal.NewFromString(s.Amount)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'amount' param in strategy %d (correct format is \"10\"): %w", i, err)
		}

		strat, err := domain.NewStrategy(amount, s.QuoteAsset, s.Assets, s.Exchanges, s.Period)
		if err != nil {
			return nil, fmt.Errorf("invalid strategy %d: %w", i, err)
		}
		conf.Strategies = append(conf.Strategies, strat)
	}

	return conf, nil
}

func loadKeys(path string) (map[string]exchange.Credentials, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]exchange.Credentials)
	if err := yaml.Unmarshal(f, &keys); err != nil {
		return nil, fmt.Errorf("incorrect keys yaml: %w", err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("keys file %s defines no exchanges", path)
	}
	return keys, nil
}
