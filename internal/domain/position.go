package domain

import "time"

// PositionRecord 钱包持仓记录
// 台账中缓存的最小持仓单元，按钱包地址分组存储，
// 每次全量同步后整体替换。
type PositionRecord struct {
	MarketID  string  `json:"marketId"`  // 市场标识（condition ID）
	Outcome   string  `json:"outcome"`   // 结果名称（Yes / No 等）
	Size      float64 `json:"size"`      // 持仓数量（条件代币份数）
	Price     float64 `json:"price"`     // 平均入场价格
	TokenID   string  `json:"tokenID"`   // 条件代币资产 ID
	Wallet    string  `json:"wallet"`    // 持仓钱包地址
	Timestamp int64   `json:"timestamp"` // 最后更新时间（毫秒）
}

// Touch 更新记录时间戳
func (p *PositionRecord) Touch() {
	p.Timestamp = time.Now().UnixMilli()
}

// CashoutRequest 平仓请求
type CashoutRequest struct {
	Wallet      string  `json:"wallet"`
	MarketID    string  `json:"marketId"`
	Size        float64 `json:"size"`
	FullCashout bool    `json:"fullCashout"`
	SlippageBps int     `json:"slippageBps"`
}

// CashoutQuote 平仓定价结果
type CashoutQuote struct {
	TokenID    string  `json:"tokenID"`
	Size       float64 `json:"size"`
	BestBid    float64 `json:"bestBid"`
	LimitPrice float64 `json:"limitPrice"`
}

// CashoutResult 平仓提交结果
// 提交前后的持仓快照都返回，调用方据此展示本次平仓的实际影响
type CashoutResult struct {
	Quote           CashoutQuote     `json:"quote"`
	OrderID         string           `json:"orderID"`
	Status          string           `json:"status"`
	Remaining       float64          `json:"remaining"`
	PositionsBefore []PositionRecord `json:"positionsBefore"`
	PositionsAfter  []PositionRecord `json:"positionsAfter"`
}

// OrderRequest 下单请求（买入建仓）
type OrderRequest struct {
	Wallet   string  `json:"wallet"`
	MarketID string  `json:"marketId"`
	TokenID  string  `json:"tokenID"`
	Outcome  string  `json:"outcome"`
	Side     string  `json:"side"`
	Price    float64 `json:"price"`
	Size     float64 `json:"size"`
}
