package exchange

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/stackerbot/stacker/internal/domain"
)

// BinanceClient adapts the Binance spot REST API to the Client interface.
type BinanceClient struct {
	client *binance.Client
}

// NewBinanceClient builds a Binance-backed client. Sandbox mode routes
// requests to the spot testnet.
func NewBinanceClient(apiKey, apiSecret string, sandbox bool) *BinanceClient {
	if sandbox {
		binance.UseTestnet = true
	}
	return &BinanceClient{client: binance.NewClient(apiKey, apiSecret)}
}

func (c *BinanceClient) Balances(ctx context.Context) (domain.BalanceSnapshot, error) {
	account, err := c.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get binance account")
	}

	snapshot := make(domain.BalanceSnapshot, len(account.Balances))
	for _, b := range account.Balances {
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse free balance of %s", b.Asset)
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse locked balance of %s", b.Asset)
		}
		if free.IsZero() && locked.IsZero() {
			continue
		}
		snapshot[b.Asset] = domain.Balance{
			Free:  free,
			Used:  locked,
			Total: free.Add(locked),
		}
	}
	return snapshot, nil
}

func (c *BinanceClient) Ticker(ctx context.Context, pair domain.Pair) (domain.Ticker, error) {
	tickers, err := c.client.NewListBookTickersService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "failed to get binance book ticker")
	}
	if len(tickers) == 0 {
		return domain.Ticker{}, errors.Errorf("binance API returned no ticker for %s", pair.String())
	}

	ask, err := decimal.NewFromString(tickers[0].AskPrice)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "failed to parse ask price")
	}
	bid, err := decimal.NewFromString(tickers[0].BidPrice)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "failed to parse bid price")
	}
	return domain.Ticker{Ask: ask, Bid: bid}, nil
}

func (c *BinanceClient) RecentTrades(ctx context.Context, pair domain.Pair, limit int) ([]domain.Trade, error) {
	fills, err := c.client.NewListTradesService().Symbol(pair.Symbol()).Limit(limit).Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list binance trades")
	}

	trades := make([]domain.Trade, 0, len(fills))
	for _, f := range fills {
		price, err := decimal.NewFromString(f.Price)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse trade price")
		}
		qty, err := decimal.NewFromString(f.Quantity)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse trade quantity")
		}
		trades = append(trades, domain.Trade{
			IsBuyer: f.IsBuyer,
			Price:   price,
			Amount:  qty,
			Time:    time.UnixMilli(f.Time),
		})
	}
	return trades, nil
}

func (c *BinanceClient) MarketBuy(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (domain.Order, error) {
	resp, err := c.client.NewCreateOrderService().Symbol(pair.Symbol()).
		Side(binance.SideTypeBuy).Type(binance.OrderTypeMarket).
		Quantity(baseAmount.String()).
		Do(ctx)
	if err != nil {
		return domain.Order{}, errors.Wrap(err, "failed to create binance market buy")
	}

	filled, err := decimal.NewFromString(resp.ExecutedQuantity)
	if err != nil {
		return domain.Order{}, errors.Wrap(err, "failed to parse executed quantity")
	}
	quote, err := decimal.NewFromString(resp.CummulativeQuoteQuantity)
	if err != nil {
		return domain.Order{}, errors.Wrap(err, "failed to parse cumulative quote quantity")
	}

	// market order responses carry no price field; derive the average fill
	price := decimal.Zero
	if filled.GreaterThan(decimal.Zero) {
		price = quote.Div(filled)
	}

	return domain.Order{
		ID:         strconv.FormatInt(resp.OrderID, 10),
		Pair:       pair,
		FilledBase: filled,
		Price:      price,
		Status:     string(resp.Status),
	}, nil
}
