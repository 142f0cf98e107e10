package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/dataapi"
	"github.com/betbot/tradegate/internal/domain"
	"github.com/betbot/tradegate/pkg/logger"
)

// SubmitResult 订单提交结果
type SubmitResult struct {
	OrderID   string                  `json:"orderID"`
	Status    string                  `json:"status"`
	Success   bool                    `json:"success"`
	Positions []domain.PositionRecord `json:"positions"`
}

// PlaceOrder 提交限价单并维护台账
// 买入成功后在台账追加（或加仓）记录，卖出走 UpsertAfterFill 减仓。
func (g *Gateway) PlaceOrder(ctx context.Context, req *domain.OrderRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.Wallet) == "" {
		return nil, domain.NewValidationError("wallet", "missing")
	}
	if strings.TrimSpace(req.TokenID) == "" {
		// 未直接给出 token ID 时按 marketId + outcome 解析
		if err := g.resolveTokenID(ctx, req); err != nil {
			return nil, err
		}
	}
	if req.Size <= 0 {
		return nil, domain.NewValidationError("size", "must be positive")
	}
	if req.Price <= 0 || req.Price >= 1 {
		return nil, domain.NewValidationError("price", "must be in (0, 1)")
	}

	side := types.Side(strings.ToUpper(req.Side))
	if side != types.SideBuy && side != types.SideSell {
		return nil, domain.NewValidationError("side", "must be BUY or SELL")
	}

	mu := g.walletLock(req.Wallet)
	mu.Lock()
	defer mu.Unlock()

	if err := g.ensureCreds(ctx); err != nil {
		return nil, err
	}

	nonce := g.nextNonce()
	negRisk := false
	userOrder := &types.UserOrder{
		TokenID: req.TokenID,
		Price:   req.Price,
		Size:    req.Size,
		Side:    side,
		Nonce:   &nonce,
	}

	// 配置了订单有效期时走 GTD，过期时间额外加一分钟撮合缓冲
	orderType := types.OrderTypeGTC
	if g.orderTTLSec > 0 {
		expiration := time.Now().Unix() + g.orderTTLSec + 60
		userOrder.Expiration = &expiration
		orderType = types.OrderTypeGTD
	}

	signedOrder, err := g.clob.CreateOrder(userOrder, &types.CreateOrderOptions{
		TickSize: types.TickSize001,
		NegRisk:  &negRisk,
	})
	if err != nil {
		return nil, &domain.CredentialError{Op: "sign order", Err: err}
	}

	orderResp, err := g.clob.PostOrder(ctx, signedOrder, orderType)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "post order", Err: err}
	}

	if err := g.applyFill(req, side); err != nil {
		// 订单已提交成功，台账失败不反转结果
		logger.Errorf("[gateway] placeOrder: ledger update failed: wallet=%s token=%s err=%v",
			req.Wallet, req.TokenID, err)
	}

	positions, err := g.ledger.Load(req.Wallet)
	if err != nil {
		positions = nil
	}

	logger.Infof("[gateway] placeOrder: wallet=%s token=%s side=%s size=%v price=%v orderID=%s",
		req.Wallet, req.TokenID, side, req.Size, req.Price, orderResp.OrderID)

	return &SubmitResult{
		OrderID:   orderResp.OrderID,
		Status:    orderResp.Status,
		Success:   orderResp.Success,
		Positions: positions,
	}, nil
}

// resolveTokenID 通过市场元数据把 marketId + outcome 解析成 token ID
func (g *Gateway) resolveTokenID(ctx context.Context, req *domain.OrderRequest) error {
	if strings.TrimSpace(req.MarketID) == "" || strings.TrimSpace(req.Outcome) == "" {
		return domain.NewValidationError("tokenID", "missing (provide tokenID or marketId + outcome)")
	}

	info, err := g.Market(ctx, req.MarketID)
	if err != nil {
		return err
	}
	tokenID, err := info.Market.OutcomeTokenID(req.Outcome)
	if err != nil {
		return domain.NewValidationError("outcome", err.Error())
	}
	req.TokenID = tokenID
	return nil
}

// applyFill 提交成功后更新台账
func (g *Gateway) applyFill(req *domain.OrderRequest, side types.Side) error {
	records, err := g.ledger.Load(req.Wallet)
	if err != nil {
		return err
	}

	var existing *domain.PositionRecord
	for i := range records {
		if records[i].TokenID == req.TokenID {
			existing = &records[i]
			break
		}
	}

	if side == types.SideSell {
		if existing == nil {
			return nil
		}
		remaining := decimal.NewFromFloat(existing.Size).
			Sub(decimal.NewFromFloat(req.Size)).
			InexactFloat64()
		return g.ledger.UpsertAfterFill(req.Wallet, req.TokenID, remaining)
	}

	if existing != nil {
		// 加仓：数量累加，入场价按成本加权平均
		oldSize := decimal.NewFromFloat(existing.Size)
		addSize := decimal.NewFromFloat(req.Size)
		newSize := oldSize.Add(addSize)

		oldCost := oldSize.Mul(decimal.NewFromFloat(existing.Price))
		addCost := addSize.Mul(decimal.NewFromFloat(req.Price))
		avg := oldCost.Add(addCost).Div(newSize)

		existing.Size = newSize.InexactFloat64()
		existing.Price = avg.InexactFloat64()
		existing.Touch()
		return g.ledger.ReplaceAll(req.Wallet, records)
	}

	rec := domain.PositionRecord{
		MarketID: req.MarketID,
		Outcome:  req.Outcome,
		Size:     req.Size,
		Price:    req.Price,
		TokenID:  req.TokenID,
		Wallet:   req.Wallet,
	}
	rec.Touch()
	return g.ledger.ReplaceAll(req.Wallet, append(records, rec))
}

// Trades 查询市场成交记录（透传数据 API）
func (g *Gateway) Trades(ctx context.Context, user, marketID string, limit int) ([]dataapi.Trade, error) {
	trades, err := g.data.Trades(ctx, dataapi.TradeQuery{
		User:   user,
		Market: marketID,
		Limit:  limit,
	})
	if err != nil {
		return nil, &domain.UpstreamError{Op: "fetch trades", Err: err}
	}
	return trades, nil
}
