package exchange

import (
	"context"
	"strconv"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/stackerbot/stacker/internal/domain"
)

const bybitTestnetBaseURL = "https://api-testnet.bybit.com"

// BybitClient adapts the Bybit V5 unified-account API to the Client
// interface.
type BybitClient struct {
	client *bybit.Client
}

// NewBybitClient builds a Bybit-backed client.
func NewBybitClient(apiKey, apiSecret string, sandbox bool) *BybitClient {
	client := bybit.NewClient().WithAuth(apiKey, apiSecret)
	if sandbox {
		client = client.WithBaseURL(bybitTestnetBaseURL)
	}
	return &BybitClient{client: client}
}

func (c *BybitClient) Balances(ctx context.Context) (domain.BalanceSnapshot, error) {
	res, err := c.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bybit wallet balance")
	}
	if len(res.Result.List) == 0 {
		return domain.BalanceSnapshot{}, nil
	}

	snapshot := make(domain.BalanceSnapshot, len(res.Result.List[0].Coin))
	for _, coin := range res.Result.List[0].Coin {
		total, err := decimal.NewFromString(coin.WalletBalance)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse wallet balance of %s", coin.Coin)
		}

		// locked may come back empty for coins with no open orders
		used := decimal.Zero
		if coin.Locked != "" {
			used, err = decimal.NewFromString(coin.Locked)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse locked balance of %s", coin.Coin)
			}
		}

		if total.IsZero() {
			continue
		}
		snapshot[string(coin.Coin)] = domain.Balance{
			Free:  total.Sub(used),
			Used:  used,
			Total: total,
		}
	}
	return snapshot, nil
}

func (c *BybitClient) Ticker(ctx context.Context, pair domain.Pair) (domain.Ticker, error) {
	symbol := bybit.SymbolV5(pair.Symbol())
	res, err := c.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &symbol,
	})
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "failed to get bybit tickers")
	}
	if len(res.Result.Spot.List) == 0 {
		return domain.Ticker{}, errors.Errorf("bybit API returned no ticker for %s", pair.String())
	}

	item := res.Result.Spot.List[0]
	ask, err := decimal.NewFromString(item.Ask1Price)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "failed to parse ask price")
	}
	bid, err := decimal.NewFromString(item.Bid1Price)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "failed to parse bid price")
	}
	return domain.Ticker{Ask: ask, Bid: bid}, nil
}

func (c *BybitClient) RecentTrades(ctx context.Context, pair domain.Pair, limit int) ([]domain.Trade, error) {
	symbol := bybit.SymbolV5(pair.Symbol())
	res, err := c.client.V5().Execution().GetExecutionList(bybit.V5GetExecutionParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &symbol,
		Limit:    &limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bybit executions")
	}

	trades := make([]domain.Trade, 0, len(res.Result.List))
	for _, e := range res.Result.List {
		price, err := decimal.NewFromString(e.ExecPrice)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse execution price")
		}
		qty, err := decimal.NewFromString(e.ExecQty)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse execution quantity")
		}

		ts := time.Time{}
		if ms, err := strconv.ParseInt(e.ExecTime, 10, 64); err == nil {
			ts = time.UnixMilli(ms)
		}

		trades = append(trades, domain.Trade{
			IsBuyer: e.Side == bybit.SideBuy,
			Price:   price,
			Amount:  qty,
			Time:    ts,
		})
	}

	// bybit returns newest first; the gate expects oldest first
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
	return trades, nil
}

func (c *BybitClient) MarketBuy(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (domain.Order, error) {
	res, err := c.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:  bybit.CategoryV5Spot,
		Symbol:    bybit.SymbolV5(pair.Symbol()),
		Side:      bybit.SideBuy,
		OrderType: bybit.OrderTypeMarket,
		Qty:       baseAmount.String(),
	})
	if err != nil {
		return domain.Order{}, errors.Wrap(err, "failed to create bybit market buy")
	}

	// creation response carries no fill data; the order settles async
	return domain.Order{
		ID:     res.Result.OrderID,
		Pair:   pair,
		Status: "submitted",
	}, nil
}
