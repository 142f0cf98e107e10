package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/betbot/tradegate/clob/client"
	"github.com/betbot/tradegate/internal/domain"
)

// MarketInfo 市场元数据与 outcome 到 token 的映射
type MarketInfo struct {
	Market   *client.GammaMarket `json:"market"`
	TokenIDs []string            `json:"tokenIDs"`
}

// Market 按 slug 或 condition ID 查询市场元数据
// 机器人下单前用它把 outcome 名称解析成可交易的 token ID。
func (g *Gateway) Market(ctx context.Context, slugOrCondition string) (*MarketInfo, error) {
	if g.markets == nil {
		return nil, &domain.UpstreamError{Op: "market lookup", Err: errMarketsDisabled}
	}
	if strings.TrimSpace(slugOrCondition) == "" {
		return nil, domain.NewValidationError("market", "missing")
	}

	if info, ok := g.marketCache.Get(slugOrCondition); ok {
		return info, nil
	}

	var (
		market *client.GammaMarket
		err    error
	)
	// condition ID 是 0x 前缀的哈希，其余按 slug 处理
	if strings.HasPrefix(slugOrCondition, "0x") {
		market, err = g.markets.GetMarketByConditionID(ctx, slugOrCondition)
	} else {
		market, err = g.markets.GetMarketBySlug(ctx, slugOrCondition)
	}
	if err != nil {
		return nil, &domain.UpstreamError{Op: "market lookup", Err: err}
	}

	tokenIDs, err := market.TokenIDs()
	if err != nil {
		return nil, &domain.UpstreamError{Op: "market token parse", Err: err}
	}

	info := &MarketInfo{Market: market, TokenIDs: tokenIDs}
	g.marketCache.Set(slugOrCondition, info, 0)
	return info, nil
}

var errMarketsDisabled = errors.New("market service not configured")
