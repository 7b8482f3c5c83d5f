package exchange

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stackerbot/stacker/internal/domain"
	"github.com/stackerbot/stacker/pkg/retrier"
)

// Credentials holds the per-exchange secrets and settings loaded from
// the keys file.
type Credentials struct {
	APIKey     string `yaml:"api_key"`
	APISecret  string `yaml:"api_secret"`
	PrivateKey string `yaml:"private_key"`
	// PairFormat overrides the venue's pair string orientation:
	// "base_quote" (default) or "quote_base".
	PairFormat string `yaml:"pair_format"`
}

// New constructs a facade for the named exchange. The name doubles as
// the registry key: every supported venue is dispatched here.
func New(name string, creds Credentials, sandbox bool, logger *zap.Logger) (*Exchange, error) {
	format, err := domain.ParsePairFormat(creds.PairFormat)
	if err != nil {
		return nil, fmt.Errorf("exchange %s: %w", name, err)
	}

	var client Client
	switch name {
	case "binance":
		client = NewBinanceClient(creds.APIKey, creds.APISecret, sandbox)
	case "bybit":
		client = NewBybitClient(creds.APIKey, creds.APISecret, sandbox)
	case "hyperliquid":
		client, err = NewHyperliquidClient(creds.PrivateKey, sandbox)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported exchange: %s", name)
	}

	retr := retrier.New(retrier.WithLogger(logger))
	return NewExchange(name, client, format, retr, logger), nil
}
