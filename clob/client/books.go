package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/betbot/tradegate/clob/types"
)

// GetOrderBook 获取订单簿快照
func (c *Client) GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBookSummary, error) {
	if err := c.rateLimiter.Wait(ctx, "clob:book:get"); err != nil {
		return nil, fmt.Errorf("速率限制等待失败: %w", err)
	}

	queryParams := map[string]string{
		"token_id": tokenID,
	}

	resp, err := c.httpClient.get(ctx, EndpointGetOrderBook, nil, queryParams)
	if err != nil {
		return nil, fmt.Errorf("获取订单簿失败: %w", err)
	}

	var book types.OrderBookSummary
	if err := parseResponse(resp, &book); err != nil {
		return nil, err
	}

	return &book, nil
}

// GetPrice 获取指定方向的市场价格
func (c *Client) GetPrice(ctx context.Context, tokenID string, side types.Side) (*types.MarketPrice, error) {
	if err := c.rateLimiter.Wait(ctx, "clob:book:get"); err != nil {
		return nil, fmt.Errorf("速率限制等待失败: %w", err)
	}

	queryParams := map[string]string{
		"token_id": tokenID,
		"side":     string(side),
	}

	resp, err := c.httpClient.get(ctx, EndpointGetPrice, nil, queryParams)
	if err != nil {
		return nil, fmt.Errorf("获取价格失败: %w", err)
	}

	var price types.MarketPrice
	if err := parseResponse(resp, &price); err != nil {
		return nil, err
	}

	return &price, nil
}

// BestBid 返回订单簿中的最高买价，没有买单时返回 false
// bids 数组按价格从低到高排列，最后一个元素是最优买价
func BestBid(book *types.OrderBookSummary) (float64, bool) {
	if book == nil || len(book.Bids) == 0 {
		return 0, false
	}

	best := 0.0
	found := false
	for _, level := range book.Bids {
		price, err := strconv.ParseFloat(level.Price, 64)
		if err != nil {
			continue
		}
		if !found || price > best {
			best = price
			found = true
		}
	}
	return best, found
}
