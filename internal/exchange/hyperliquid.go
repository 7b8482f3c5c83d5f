package exchange

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"github.com/stackerbot/stacker/internal/domain"
)

const (
	hyperliquidMainnetBaseURL = "https://api.hyperliquid.xyz"
	hyperliquidTestnetBaseURL = "https://api.hyperliquid-testnet.xyz"

	// slippage tolerance for the IOC limit order emulating a market buy
	hyperliquidSlippage = 0.005
)

// HyperliquidClient adapts the Hyperliquid spot API to the Client
// interface. Market buys are emulated with an IOC limit order priced at
// a small slippage above mid, the venue's own convention.
type HyperliquidClient struct {
	ex   *hyperliquid.Exchange
	info *hyperliquid.Info
	addr string
}

// NewHyperliquidClient derives the account address from the private key
// and builds the signing exchange client.
func NewHyperliquidClient(privateKeyHex string, sandbox bool) (*HyperliquidClient, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(privateKeyHex, "0x"), "0X")
	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse hyperliquid private key")
	}

	pub, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("error casting public key to ECDSA")
	}
	addr := crypto.PubkeyToAddress(*pub).Hex()

	baseURL := hyperliquidMainnetBaseURL
	if sandbox {
		baseURL = hyperliquidTestnetBaseURL
	}

	ex := hyperliquid.NewExchange(
		context.Background(),
		privateKey,
		baseURL,
		nil,
		"",
		addr,
		nil,
	)

	return &HyperliquidClient{ex: ex, info: ex.Info(), addr: addr}, nil
}

func (c *HyperliquidClient) Balances(ctx context.Context) (domain.BalanceSnapshot, error) {
	st, err := c.info.SpotUserState(ctx, c.addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get hyperliquid spot state")
	}

	snapshot := make(domain.BalanceSnapshot, len(st.Balances))
	for _, b := range st.Balances {
		total, err := decimal.NewFromString(b.Total)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse balance of %s", b.Coin)
		}
		hold := decimal.Zero
		if b.Hold != "" {
			hold, err = decimal.NewFromString(b.Hold)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse hold of %s", b.Coin)
			}
		}
		if total.IsZero() {
			continue
		}
		snapshot[strings.ToUpper(b.Coin)] = domain.Balance{
			Free:  total.Sub(hold),
			Used:  hold,
			Total: total,
		}
	}
	return snapshot, nil
}

func (c *HyperliquidClient) Ticker(ctx context.Context, pair domain.Pair) (domain.Ticker, error) {
	mids, err := c.info.AllMids(ctx)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "failed to get hyperliquid mids")
	}

	// mids are keyed by base coin; the venue exposes no book ticker here,
	// so ask and bid collapse to mid
	mid, ok := mids[pair.Base]
	if !ok || mid == "" {
		return domain.Ticker{}, errors.Errorf("hyperliquid API returned no mid price for %s", pair.Base)
	}
	price, err := decimal.NewFromString(mid)
	if err != nil {
		return domain.Ticker{}, errors.Wrap(err, "failed to parse mid price")
	}
	return domain.Ticker{Ask: price, Bid: price}, nil
}

func (c *HyperliquidClient) RecentTrades(ctx context.Context, pair domain.Pair, limit int) ([]domain.Trade, error) {
	fills, err := c.info.UserFills(ctx, c.addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get hyperliquid fills")
	}

	trades := make([]domain.Trade, 0, limit)
	for _, f := range fills {
		if !strings.EqualFold(f.Coin, pair.Base) {
			continue
		}
		price, err := decimal.NewFromString(f.Price)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse fill price")
		}
		size, err := decimal.NewFromString(f.Size)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse fill size")
		}
		trades = append(trades, domain.Trade{
			IsBuyer: f.Side == "B",
			Price:   price,
			Amount:  size,
			Time:    time.UnixMilli(f.Time),
		})
		if len(trades) == limit {
			break
		}
	}
	return trades, nil
}

func (c *HyperliquidClient) MarketBuy(ctx context.Context, pair domain.Pair, baseAmount decimal.Decimal) (domain.Order, error) {
	size, _ := baseAmount.Round(8).Float64()

	px, err := c.ex.SlippagePrice(ctx, pair.Base, true, hyperliquidSlippage, nil)
	if err != nil {
		return domain.Order{}, errors.Wrap(err, "failed to compute slippage price")
	}

	cloid := "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
	req := hyperliquid.CreateOrderRequest{
		Coin:          pair.Base,
		IsBuy:         true,
		Price:         px,
		Size:          size,
		ClientOrderID: &cloid,
		OrderType: hyperliquid.OrderType{
			Limit: &hyperliquid.LimitOrderType{Tif: hyperliquid.TifIoc},
		},
	}

	if _, err := c.ex.Order(ctx, req, nil); err != nil {
		return domain.Order{}, errors.Wrap(err, "failed to place hyperliquid order")
	}

	return domain.Order{
		ID:     cloid,
		Pair:   pair,
		Price:  decimal.NewFromFloat(px),
		Status: "submitted",
	}, nil
}
