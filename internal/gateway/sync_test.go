package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/dataapi"
	"github.com/betbot/tradegate/internal/domain"
	"github.com/betbot/tradegate/internal/ledger"
)

func newTestGateway(t *testing.T, clob *mockClob, data *mockData) (*Gateway, *ledger.Ledger) {
	t.Helper()
	l, err := ledger.Open(ledger.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return New(clob, data, l, Config{SlippageBps: 100}), l
}

func TestSync_ServesCacheUnlessForced(t *testing.T) {
	clob := &mockClob{}
	data := &mockData{
		positions: []dataapi.RawPosition{{Asset: "111", ConditionIDB: "0xcond", Size: "10", AvgPrice: "0.4", Outcome: "Yes"}},
	}
	g, l := newTestGateway(t, clob, data)

	cached := []domain.PositionRecord{{MarketID: "0xold", TokenID: "999", Size: 2, Wallet: "0xw"}}
	require.NoError(t, l.ReplaceAll("0xw", cached))

	res, err := g.Sync(context.Background(), "0xw", false)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, cached, res.Positions)
	assert.Zero(t, clob.derived, "cache hit must not touch the exchange")

	// 强制刷新走交易所并替换缓存
	res, err = g.Sync(context.Background(), "0xw", true)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	require.Len(t, res.Positions, 1)
	assert.Equal(t, "111", res.Positions[0].TokenID)
	assert.Equal(t, "0xcond", res.Positions[0].MarketID)
}

func TestSync_EmptyWallet(t *testing.T) {
	g, _ := newTestGateway(t, &mockClob{}, &mockData{})

	_, err := g.Sync(context.Background(), " ", false)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSync_PartialFailureLeavesLedgerUntouched(t *testing.T) {
	clob := &mockClob{openOrdersErr: errUpstreamBoom}
	data := &mockData{
		positions: []dataapi.RawPosition{{Asset: "111", ConditionIDB: "0xcond", Size: "10"}},
	}
	g, l := newTestGateway(t, clob, data)

	cached := []domain.PositionRecord{{MarketID: "0xold", TokenID: "999", Size: 2, Wallet: "0xw"}}
	require.NoError(t, l.ReplaceAll("0xw", cached))

	_, err := g.Sync(context.Background(), "0xw", true)
	require.ErrorIs(t, err, domain.ErrUpstream)

	after, err := l.Load("0xw")
	require.NoError(t, err)
	assert.Equal(t, cached, after, "failed sync must not modify the ledger")
}

func TestSync_ProxyResolutionFailure(t *testing.T) {
	data := &mockData{proxyErr: errUpstreamBoom}
	g, _ := newTestGateway(t, &mockClob{}, data)

	_, err := g.Sync(context.Background(), "0xw", true)
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestNormalizePositions_MarketFieldPriority(t *testing.T) {
	raw := []dataapi.RawPosition{
		{Asset: "1", Market: "m", ConditionIDA: "ca", ConditionIDB: "cb", Size: "1"},
		{Asset: "2", ConditionIDA: "ca", ConditionIDB: "cb", Size: "1"},
		{Asset: "3", ConditionIDB: "cb", Size: "1"},
	}

	records := normalizePositions("0xw", raw)
	require.Len(t, records, 3)
	assert.Equal(t, "m", records[0].MarketID)
	assert.Equal(t, "ca", records[1].MarketID)
	assert.Equal(t, "cb", records[2].MarketID)
}

func TestNormalizePositions_DropsEmptyAndZeroSize(t *testing.T) {
	raw := []dataapi.RawPosition{
		{Asset: "", Size: "10"},
		{Asset: "1", Size: "0"},
		{Asset: "2", Size: "-3"},
		{Asset: "3", Size: "2.5", AvgPrice: "0.3", Outcome: "No"},
	}

	records := normalizePositions("0xw", raw)
	require.Len(t, records, 1)
	assert.Equal(t, "3", records[0].TokenID)
	assert.Equal(t, 2.5, records[0].Size)
	assert.Equal(t, 0.3, records[0].Price)
	assert.Equal(t, "0xw", records[0].Wallet)
	assert.NotZero(t, records[0].Timestamp)
}

func TestSync_ReturnsOpenOrders(t *testing.T) {
	clob := &mockClob{openOrders: []types.OpenOrder{{ID: "oo-1", Side: "SELL"}}}
	data := &mockData{
		positions: []dataapi.RawPosition{{Asset: "111", ConditionIDB: "0xcond", Size: "10"}},
	}
	g, _ := newTestGateway(t, clob, data)

	res, err := g.Sync(context.Background(), "0xw", true)
	require.NoError(t, err)
	require.Len(t, res.OpenOrders, 1)
	assert.Equal(t, "oo-1", res.OpenOrders[0].ID)
}

func TestSync_ScopesOpenOrdersToProxyWallet(t *testing.T) {
	clob := &mockClob{}
	data := &mockData{
		proxy:     "0xproxy",
		positions: []dataapi.RawPosition{{Asset: "111", ConditionIDB: "0xcond", Size: "10"}},
	}
	g, _ := newTestGateway(t, clob, data)

	_, err := g.Sync(context.Background(), "0xw", true)
	require.NoError(t, err)

	// 开放订单查询必须带上解析出的代理钱包，不能落回凭证账户全量订单
	require.Len(t, clob.openOrderParams, 1)
	require.NotNil(t, clob.openOrderParams[0])
	require.NotNil(t, clob.openOrderParams[0].User)
	assert.Equal(t, "0xproxy", *clob.openOrderParams[0].User)
}
