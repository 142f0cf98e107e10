package gateway

import (
	"context"
	"strings"

	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/dataapi"
	"github.com/betbot/tradegate/internal/domain"
	"github.com/betbot/tradegate/pkg/logger"
)

// SyncResult 持仓同步结果
type SyncResult struct {
	Wallet     string                  `json:"wallet"`
	Positions  []domain.PositionRecord `json:"positions"`
	OpenOrders []types.OpenOrder       `json:"openOrders"`
	Cached     bool                    `json:"cached"`
}

// Sync 同步钱包持仓
// 台账已有缓存且未要求强制刷新时直接返回缓存（省一次交易所调用，
// 代价是可能读到旧数据，需要新鲜数据的调用方必须传 force）。
// 持仓和开放订单并行拉取，任一失败视为整体同步失败，台账保持不变。
func (g *Gateway) Sync(ctx context.Context, wallet string, force bool) (*SyncResult, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, domain.NewValidationError("wallet", "missing")
	}

	if !force {
		cached, err := g.ledger.Load(wallet)
		if err != nil {
			return nil, &domain.UpstreamError{Op: "ledger load", Err: err}
		}
		if len(cached) > 0 {
			return &SyncResult{Wallet: wallet, Positions: cached, Cached: true}, nil
		}
	}

	if err := g.ensureCreds(ctx); err != nil {
		return nil, err
	}

	// 实际持有抵押品的是交易所侧代理钱包，必须向交易所查询，
	// 不能假设与签名钱包相同
	proxy, err := g.data.ResolveProxyWallet(ctx, wallet)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "resolve proxy wallet", Err: err}
	}

	// 持仓与开放订单是两个独立读取，可以安全并行
	type positionsResult struct {
		positions []dataapi.RawPosition
		err       error
	}
	type ordersResult struct {
		orders []types.OpenOrder
		err    error
	}

	positionsCh := make(chan positionsResult, 1)
	ordersCh := make(chan ordersResult, 1)

	go func() {
		positions, err := g.data.Positions(ctx, proxy)
		positionsCh <- positionsResult{positions: positions, err: err}
	}()
	go func() {
		// 开放订单同样按代理钱包查询，凭证账户名下可能有多个钱包的订单
		orders, err := g.clob.GetOpenOrders(ctx, &types.OpenOrderParams{User: &proxy})
		ordersCh <- ordersResult{orders: orders, err: err}
	}()

	posRes := <-positionsCh
	ordRes := <-ordersCh

	// 部分成功按整体失败处理：台账不允许用一半的权威数据更新
	if posRes.err != nil {
		return nil, &domain.UpstreamError{Op: "fetch positions", Err: posRes.err}
	}
	if ordRes.err != nil {
		return nil, &domain.UpstreamError{Op: "fetch open orders", Err: ordRes.err}
	}

	records := normalizePositions(wallet, posRes.positions)
	if err := g.ledger.ReplaceAll(wallet, records); err != nil {
		return nil, &domain.UpstreamError{Op: "ledger replace", Err: err}
	}

	logger.Infof("[gateway] sync: wallet=%s proxy=%s positions=%d openOrders=%d",
		wallet, proxy, len(records), len(ordRes.orders))

	return &SyncResult{
		Wallet:     wallet,
		Positions:  records,
		OpenOrders: ordRes.orders,
	}, nil
}

// normalizePositions 将交易所原始持仓映射为台账记录
// tokenID 取 asset 字段，marketId 按 market > condition_id > conditionId
// 的优先级解析，零数量持仓不入账。
func normalizePositions(wallet string, raw []dataapi.RawPosition) []domain.PositionRecord {
	records := make([]domain.PositionRecord, 0, len(raw))
	for _, pos := range raw {
		if pos.Asset == "" {
			continue
		}
		size, err := pos.SizeFloat()
		if err != nil || size <= 0 {
			continue
		}
		price, err := pos.AvgPriceFloat()
		if err != nil {
			price = 0
		}

		rec := domain.PositionRecord{
			MarketID: pos.MarketID(),
			Outcome:  pos.Outcome,
			Size:     size,
			Price:    price,
			TokenID:  pos.Asset,
			Wallet:   wallet,
		}
		rec.Touch()
		records = append(records, rec)
	}
	return records
}
