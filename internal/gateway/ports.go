package gateway

import (
	"context"

	"github.com/betbot/tradegate/clob/client"
	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/dataapi"
	"github.com/betbot/tradegate/internal/domain"
)

// ClobService 交易所 CLOB 客户端依赖
type ClobService interface {
	Creds() *types.ApiKeyCreds
	SetCreds(creds *types.ApiKeyCreds)
	CreateOrDeriveAPIKey(ctx context.Context, nonce int64) (*types.ApiKeyCreds, types.CredentialSource, error)
	GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBookSummary, error)
	CreateOrder(userOrder *types.UserOrder, options *types.CreateOrderOptions) (*types.SignedOrder, error)
	PostOrder(ctx context.Context, order *types.SignedOrder, orderType types.OrderType) (*types.OrderResponse, error)
	GetOpenOrders(ctx context.Context, params *types.OpenOrderParams) ([]types.OpenOrder, error)
}

// DataService 交易所数据 API 依赖
type DataService interface {
	Positions(ctx context.Context, user string) ([]dataapi.RawPosition, error)
	ResolveProxyWallet(ctx context.Context, wallet string) (string, error)
	Trades(ctx context.Context, q dataapi.TradeQuery) ([]dataapi.Trade, error)
}

// MarketService 市场元数据依赖（可选）
type MarketService interface {
	GetMarketBySlug(ctx context.Context, slug string) (*client.GammaMarket, error)
	GetMarketByConditionID(ctx context.Context, conditionID string) (*client.GammaMarket, error)
}

// Store 持仓台账依赖
type Store interface {
	Load(wallet string) ([]domain.PositionRecord, error)
	ReplaceAll(wallet string, records []domain.PositionRecord) error
	UpsertAfterFill(wallet, tokenID string, remaining float64) error
}
