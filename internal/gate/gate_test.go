package gate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/stackerbot/stacker/internal/domain"
)

var testPair = domain.Pair{Base: "BTC", Quote: "USDT"}

func fillsAt(prices []float64, step time.Duration) []domain.Trade {
	history := make([]domain.Trade, 0, len(prices))
	start := time.Now().Add(-time.Duration(len(prices)) * step)
	for i, p := range prices {
		history = append(history, domain.Trade{
			IsBuyer: true,
			Price:   decimal.NewFromFloat(p),
			Amount:  decimal.NewFromInt(1),
			Time:    start.Add(time.Duration(i) * step),
		})
	}
	return history
}

func TestCooldown(t *testing.T) {
	g := Cooldown(1 * time.Hour)

	assert.True(t, g(testPair, "binance", "daily", nil), "empty history approves")

	recent := []domain.Trade{{IsBuyer: true, Time: time.Now().Add(-5 * time.Minute)}}
	assert.False(t, g(testPair, "binance", "daily", recent))

	old := []domain.Trade{{IsBuyer: true, Time: time.Now().Add(-2 * time.Hour)}}
	assert.True(t, g(testPair, "binance", "daily", old))
}

func TestEMADip(t *testing.T) {
	g := EMADip(5)

	assert.True(t, g(testPair, "binance", "daily", nil), "empty history approves")

	falling := fillsAt([]float64{110, 108, 106, 104, 102, 100, 98, 96}, time.Hour)
	assert.True(t, g(testPair, "binance", "daily", falling))

	rising := fillsAt([]float64{96, 98, 100, 102, 104, 106, 108, 110}, time.Hour)
	assert.False(t, g(testPair, "binance", "daily", rising))
}

func TestRSICap(t *testing.T) {
	g := RSICap(5, 70)

	short := fillsAt([]float64{100, 101, 102}, time.Hour)
	assert.True(t, g(testPair, "binance", "daily", short), "short history approves")

	rising := fillsAt([]float64{100, 102, 104, 106, 108, 110, 112, 114, 116, 118}, time.Hour)
	assert.False(t, g(testPair, "binance", "daily", rising), "steady run-up is declined")

	falling := fillsAt([]float64{118, 116, 114, 112, 110, 108, 106, 104, 102, 100}, time.Hour)
	assert.True(t, g(testPair, "binance", "daily", falling))
}

func TestAll(t *testing.T) {
	approve := func(domain.Pair, string, string, []domain.Trade) bool { return true }
	decline := func(domain.Pair, string, string, []domain.Trade) bool { return false }

	assert.True(t, All(approve, approve)(testPair, "binance", "daily", nil))
	assert.False(t, All(approve, decline)(testPair, "binance", "daily", nil))
	assert.True(t, All()(testPair, "binance", "daily", nil))
}
