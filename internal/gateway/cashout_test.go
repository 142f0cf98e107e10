package gateway

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/internal/domain"
)

func seedPosition(t *testing.T, g *Gateway, size float64) {
	t.Helper()
	require.NoError(t, g.ledger.ReplaceAll("0xw", []domain.PositionRecord{{
		MarketID: "0xcond",
		Outcome:  "Yes",
		Size:     size,
		Price:    0.40,
		TokenID:  "111",
		Wallet:   "0xw",
	}}))
}

func TestCashout_FullRemovesPosition(t *testing.T) {
	clob := &mockClob{book: bookWithBids("0.50")}
	g, l := newTestGateway(t, clob, &mockData{})
	seedPosition(t, g, 10)

	res, err := g.Cashout(context.Background(), &domain.CashoutRequest{
		Wallet:      "0xw",
		MarketID:    "0xcond",
		FullCashout: true,
		SlippageBps: 100,
	})
	require.NoError(t, err)

	// 最优买价 0.50，滑点 100bps：0.50 * 0.99 = 0.495
	assert.InDelta(t, 0.495, res.Quote.LimitPrice, 1e-9)
	assert.Equal(t, 0.50, res.Quote.BestBid)
	assert.Equal(t, 10.0, res.Quote.Size)
	assert.Equal(t, "order-1", res.OrderID)
	assert.Zero(t, res.Remaining)

	// 提交前后的快照：提交前持有 10 份，提交后清空
	require.Len(t, res.PositionsBefore, 1)
	assert.Equal(t, 10.0, res.PositionsBefore[0].Size)
	assert.Empty(t, res.PositionsAfter)

	after, err := l.Load("0xw")
	require.NoError(t, err)
	assert.Empty(t, after, "full cashout must evict the record")

	require.Len(t, clob.posted, 1)
	assert.Equal(t, types.SideSell, clob.posted[0].Side)
}

func TestCashout_PartialDecrementsSize(t *testing.T) {
	clob := &mockClob{book: bookWithBids("0.50")}
	g, l := newTestGateway(t, clob, &mockData{})
	seedPosition(t, g, 10)

	res, err := g.Cashout(context.Background(), &domain.CashoutRequest{
		Wallet:   "0xw",
		MarketID: "0xcond",
		Size:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Quote.Size)
	assert.Equal(t, 6.0, res.Remaining)

	require.Len(t, res.PositionsBefore, 1)
	assert.Equal(t, 10.0, res.PositionsBefore[0].Size)
	require.Len(t, res.PositionsAfter, 1)
	assert.Equal(t, 6.0, res.PositionsAfter[0].Size)

	after, err := l.Load("0xw")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 6.0, after[0].Size)
}

func TestCashout_OversizedRequestCapped(t *testing.T) {
	clob := &mockClob{book: bookWithBids("0.50")}
	g, _ := newTestGateway(t, clob, &mockData{})
	seedPosition(t, g, 10)

	res, err := g.Cashout(context.Background(), &domain.CashoutRequest{
		Wallet:   "0xw",
		MarketID: "0xcond",
		Size:     25,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Quote.Size, "cashout size must never exceed the held size")
}

func TestCashout_MissingInput(t *testing.T) {
	g, _ := newTestGateway(t, &mockClob{}, &mockData{})

	_, err := g.Cashout(context.Background(), &domain.CashoutRequest{MarketID: "0xcond"})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = g.Cashout(context.Background(), &domain.CashoutRequest{Wallet: "0xw"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCashout_PositionNotFound(t *testing.T) {
	g, _ := newTestGateway(t, &mockClob{}, &mockData{})

	_, err := g.Cashout(context.Background(), &domain.CashoutRequest{
		Wallet:   "0xw",
		MarketID: "0xmissing",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCashout_NoLiquidity(t *testing.T) {
	clob := &mockClob{book: bookWithBids()}
	g, l := newTestGateway(t, clob, &mockData{})
	seedPosition(t, g, 10)

	_, err := g.Cashout(context.Background(), &domain.CashoutRequest{
		Wallet:      "0xw",
		MarketID:    "0xcond",
		FullCashout: true,
	})
	require.ErrorIs(t, err, domain.ErrLiquidity)

	// 无流动性时不提交订单，持仓不变
	assert.Empty(t, clob.posted)
	after, err := l.Load("0xw")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 10.0, after[0].Size)
}

func TestCashout_PostFailureKeepsLedger(t *testing.T) {
	clob := &mockClob{book: bookWithBids("0.50"), postErr: errUpstreamBoom}
	g, l := newTestGateway(t, clob, &mockData{})
	seedPosition(t, g, 10)

	_, err := g.Cashout(context.Background(), &domain.CashoutRequest{
		Wallet:      "0xw",
		MarketID:    "0xcond",
		FullCashout: true,
	})
	require.ErrorIs(t, err, domain.ErrUpstream)

	after, err := l.Load("0xw")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 10.0, after[0].Size)
}

func TestCashout_ConcurrentDoubleSubmitPrevented(t *testing.T) {
	clob := &mockClob{book: bookWithBids("0.50")}
	g, _ := newTestGateway(t, clob, &mockData{})
	seedPosition(t, g, 10)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = g.Cashout(context.Background(), &domain.CashoutRequest{
				Wallet:      "0xw",
				MarketID:    "0xcond",
				FullCashout: true,
			})
		}(i)
	}
	wg.Wait()

	// 钱包锁串行化后：第一个请求清仓，第二个必须看到仓位已不存在
	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, domain.ErrNotFound)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent full cashout may submit")
	assert.Len(t, clob.posted, 1)
}

func TestComputeLimitPrice(t *testing.T) {
	cases := []struct {
		name    string
		bestBid float64
		bps     int
		want    float64
	}{
		{"standard slippage", 0.50, 100, 0.495},
		{"no slippage", 0.50, 0, 0.50},
		{"clamped to floor", 0.01, 500, 0.01},
		{"clamped to ceiling", 1.00, 0, 0.99},
		{"high bid small slippage", 0.98, 50, 0.9751},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeLimitPrice(tc.bestBid, tc.bps)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ComputeLimitPrice(%v, %d) = %v, want %v", tc.bestBid, tc.bps, got, tc.want)
			}
		})
	}
}

func TestComputeCashoutSize(t *testing.T) {
	assert.Equal(t, 10.0, ComputeCashoutSize(10, 4, true), "full cashout ignores requested size")
	assert.Equal(t, 4.0, ComputeCashoutSize(10, 4, false))
	assert.Equal(t, 10.0, ComputeCashoutSize(10, 25, false), "capped at held size")
	assert.Equal(t, 10.0, ComputeCashoutSize(10, 0, false), "missing size defaults to full")
}
