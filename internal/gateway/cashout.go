package gateway

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/betbot/tradegate/clob/client"
	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/internal/domain"
	"github.com/betbot/tradegate/pkg/logger"
)

var (
	minLimitPrice = decimal.NewFromFloat(0.01)
	maxLimitPrice = decimal.NewFromFloat(0.99)
)

// Cashout 平仓：按最优买价减滑点挂 GTC 卖单，成交后回写台账
// 整个流程持有钱包锁，两个并发平仓不可能读到同一份 size 重复提交。
func (g *Gateway) Cashout(ctx context.Context, req *domain.CashoutRequest) (*domain.CashoutResult, error) {
	if strings.TrimSpace(req.Wallet) == "" {
		return nil, domain.NewValidationError("wallet", "missing")
	}
	if strings.TrimSpace(req.MarketID) == "" {
		return nil, domain.NewValidationError("marketId", "missing")
	}

	slippageBps := req.SlippageBps
	if slippageBps <= 0 {
		slippageBps = g.slippageBps
	}

	mu := g.walletLock(req.Wallet)
	mu.Lock()
	defer mu.Unlock()

	positions, err := g.ledger.Load(req.Wallet)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "ledger load", Err: err}
	}

	var position *domain.PositionRecord
	for i := range positions {
		if positions[i].MarketID == req.MarketID {
			position = &positions[i]
			break
		}
	}
	if position == nil {
		return nil, &domain.NotFoundError{Wallet: req.Wallet, MarketID: req.MarketID}
	}

	cashoutSize := ComputeCashoutSize(position.Size, req.Size, req.FullCashout)
	if cashoutSize <= 0 {
		return nil, domain.NewValidationError("size", "cashout size must be positive")
	}

	if err := g.ensureCreds(ctx); err != nil {
		return nil, err
	}

	book, err := g.clob.GetOrderBook(ctx, position.TokenID)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "fetch order book", Err: err}
	}
	bestBid, ok := client.BestBid(book)
	if !ok {
		return nil, &domain.LiquidityError{TokenID: position.TokenID}
	}

	finalPrice := ComputeLimitPrice(bestBid, slippageBps)

	quote := domain.CashoutQuote{
		TokenID:    position.TokenID,
		Size:       cashoutSize,
		BestBid:    bestBid,
		LimitPrice: finalPrice,
	}

	nonce := g.nextNonce()
	negRisk := false
	signedOrder, err := g.clob.CreateOrder(&types.UserOrder{
		TokenID: position.TokenID,
		Price:   finalPrice,
		Size:    cashoutSize,
		Side:    types.SideSell,
		Nonce:   &nonce,
	}, &types.CreateOrderOptions{
		TickSize: types.TickSize001,
		NegRisk:  &negRisk,
	})
	if err != nil {
		return nil, &domain.CredentialError{Op: "sign order", Err: err}
	}

	orderResp, err := g.clob.PostOrder(ctx, signedOrder, types.OrderTypeGTC)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "post order", Err: err}
	}

	remaining := decimal.NewFromFloat(position.Size).
		Sub(decimal.NewFromFloat(cashoutSize)).
		InexactFloat64()
	if err := g.ledger.UpsertAfterFill(req.Wallet, position.TokenID, remaining); err != nil {
		// 订单已被交易所接受，台账回写失败只能记录，下一次强制同步会纠正
		logger.Errorf("[gateway] cashout: ledger update failed after submit: wallet=%s token=%s err=%v",
			req.Wallet, position.TokenID, err)
	}

	updated, err := g.ledger.Load(req.Wallet)
	if err != nil {
		updated = nil
	}

	logger.Infof("[gateway] cashout: wallet=%s market=%s size=%v bestBid=%v limit=%v orderID=%s",
		req.Wallet, req.MarketID, cashoutSize, bestBid, finalPrice, orderResp.OrderID)

	return &domain.CashoutResult{
		Quote:           quote,
		OrderID:         orderResp.OrderID,
		Status:          orderResp.Status,
		Remaining:       remaining,
		PositionsBefore: positions,
		PositionsAfter:  updated,
	}, nil
}

// ComputeCashoutSize 计算实际平仓数量
// 全量平仓取持仓全部数量；部分平仓不允许超过当前持仓。
func ComputeCashoutSize(positionSize, requestedSize float64, full bool) float64 {
	if full {
		return positionSize
	}
	if requestedSize <= 0 {
		return positionSize
	}
	requested := decimal.NewFromFloat(requestedSize)
	held := decimal.NewFromFloat(positionSize)
	return decimal.Min(requested, held).InexactFloat64()
}

// ComputeLimitPrice 计算卖出限价
// 最优买价打掉 slippageBps 基点，再收敛到交易所可接受的 [0.01, 0.99] 区间。
func ComputeLimitPrice(bestBid float64, slippageBps int) float64 {
	bid := decimal.NewFromFloat(bestBid)
	factor := decimal.NewFromInt(1).
		Sub(decimal.NewFromInt(int64(slippageBps)).Div(decimal.NewFromInt(10000)))

	price := bid.Mul(factor)
	if price.LessThan(minLimitPrice) {
		price = minLimitPrice
	}
	if price.GreaterThan(maxLimitPrice) {
		price = maxLimitPrice
	}
	return price.InexactFloat64()
}
