package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/dataapi"
)

// mockClob 可注入错误与响应的 CLOB 客户端桩
type mockClob struct {
	mu sync.Mutex

	creds     *types.ApiKeyCreds
	deriveErr error
	derived   int

	book    *types.OrderBookSummary
	bookErr error

	openOrders      []types.OpenOrder
	openOrdersErr   error
	openOrderParams []*types.OpenOrderParams

	postResp    *types.OrderResponse
	postErr     error
	postedSize  []float64
	posted      []*types.SignedOrder
	postedTypes []types.OrderType
	created     []*types.UserOrder
}

func (m *mockClob) Creds() *types.ApiKeyCreds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

func (m *mockClob) SetCreds(creds *types.ApiKeyCreds) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
}

func (m *mockClob) CreateOrDeriveAPIKey(ctx context.Context, nonce int64) (*types.ApiKeyCreds, types.CredentialSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.derived++
	if m.deriveErr != nil {
		return nil, "", m.deriveErr
	}
	return &types.ApiKeyCreds{Key: "k", Secret: "cw==", Passphrase: "p"}, types.CredentialSourceDerived, nil
}

func (m *mockClob) GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBookSummary, error) {
	if m.bookErr != nil {
		return nil, m.bookErr
	}
	if m.book == nil {
		return &types.OrderBookSummary{}, nil
	}
	return m.book, nil
}

func (m *mockClob) CreateOrder(userOrder *types.UserOrder, options *types.CreateOrderOptions) (*types.SignedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, userOrder)
	return &types.SignedOrder{
		TokenID: userOrder.TokenID,
		Side:    userOrder.Side,
	}, nil
}

func (m *mockClob) PostOrder(ctx context.Context, order *types.SignedOrder, orderType types.OrderType) (*types.OrderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return nil, m.postErr
	}
	m.posted = append(m.posted, order)
	m.postedTypes = append(m.postedTypes, orderType)
	if m.postResp != nil {
		return m.postResp, nil
	}
	return &types.OrderResponse{Success: true, OrderID: "order-1", Status: "live"}, nil
}

func (m *mockClob) GetOpenOrders(ctx context.Context, params *types.OpenOrderParams) ([]types.OpenOrder, error) {
	m.mu.Lock()
	m.openOrderParams = append(m.openOrderParams, params)
	m.mu.Unlock()
	if m.openOrdersErr != nil {
		return nil, m.openOrdersErr
	}
	return m.openOrders, nil
}

// mockData 数据 API 桩
type mockData struct {
	proxy        string
	proxyErr     error
	positions    []dataapi.RawPosition
	positionsErr error
	trades       []dataapi.Trade
	tradesErr    error
}

func (m *mockData) Positions(ctx context.Context, user string) ([]dataapi.RawPosition, error) {
	if m.positionsErr != nil {
		return nil, m.positionsErr
	}
	return m.positions, nil
}

func (m *mockData) ResolveProxyWallet(ctx context.Context, wallet string) (string, error) {
	if m.proxyErr != nil {
		return "", m.proxyErr
	}
	if m.proxy != "" {
		return m.proxy, nil
	}
	return wallet, nil
}

func (m *mockData) Trades(ctx context.Context, q dataapi.TradeQuery) ([]dataapi.Trade, error) {
	if m.tradesErr != nil {
		return nil, m.tradesErr
	}
	return m.trades, nil
}

var errUpstreamBoom = errors.New("upstream boom")

func bookWithBids(prices ...string) *types.OrderBookSummary {
	book := &types.OrderBookSummary{}
	for _, p := range prices {
		book.Bids = append(book.Bids, types.OrderSummary{Price: p, Size: "100"})
	}
	return book
}
