package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/betbot/tradegate/clob/signing"
	"github.com/betbot/tradegate/clob/types"
)

// CreateOrder 构建并签名订单（maker = 签名者）
func (c *Client) CreateOrder(userOrder *types.UserOrder, options *types.CreateOrderOptions) (*types.SignedOrder, error) {
	return c.CreateOrderWithFunder(userOrder, options, "", types.SignatureTypeBrowser)
}

// CreateOrderWithFunder 构建并签名订单，支持指定资金账户和签名类型
// 代理钱包持仓时 funderAddress 为代理地址，签名类型为 GnosisSafe。
func (c *Client) CreateOrderWithFunder(userOrder *types.UserOrder, options *types.CreateOrderOptions, funderAddress string, signatureType types.SignatureType) (*types.SignedOrder, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	builder := NewOrderBuilder(c, signatureType, funderAddress)
	return builder.BuildOrder(userOrder, options)
}

// PostOrder 提交已签名订单
func (c *Client) PostOrder(ctx context.Context, order *types.SignedOrder, orderType types.OrderType) (*types.OrderResponse, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx, "clob:order:post"); err != nil {
		return nil, fmt.Errorf("速率限制等待失败: %w", err)
	}

	orderPayload := types.NewOrder{
		Order:     *order,
		Owner:     c.authConfig.Creds.Key,
		OrderType: orderType,
	}

	// HMAC 签名覆盖请求体，序列化一次后 header 和 body 必须用同一份字节
	bodyBytes, err := json.Marshal(orderPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化订单载荷失败: %w", err)
	}
	bodyStr := string(bodyBytes)

	headers, err := signing.CreateL2Headers(
		c.authConfig.PrivateKey,
		c.authConfig.Creds,
		&types.L2HeaderArgs{
			Method:      "POST",
			RequestPath: EndpointPostOrder,
			Body:        &bodyStr,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("创建 L2 认证头失败: %w", err)
	}

	resp, err := c.httpClient.postRaw(ctx, EndpointPostOrder, headers.ToMap(), []byte(bodyStr))
	if err != nil {
		return nil, fmt.Errorf("提交订单失败: %w", err)
	}

	var orderResp types.OrderResponse
	if err := parseResponse(resp, &orderResp); err != nil {
		return nil, fmt.Errorf("解析订单响应失败: %w", err)
	}

	return &orderResp, nil
}

// GetOpenOrders 获取当前开放订单
func (c *Client) GetOpenOrders(ctx context.Context, params *types.OpenOrderParams) ([]types.OpenOrder, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}

	queryParams := make(map[string]string)
	if params != nil {
		if params.User != nil {
			queryParams["user"] = *params.User
		}
		if params.Market != nil {
			queryParams["market"] = *params.Market
		}
		if params.AssetID != nil {
			queryParams["asset_id"] = *params.AssetID
		}
	}

	headers, err := signing.CreateL2Headers(
		c.authConfig.PrivateKey,
		c.authConfig.Creds,
		&types.L2HeaderArgs{
			Method:      "GET",
			RequestPath: EndpointGetOpenOrders,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("创建 L2 认证头失败: %w", err)
	}

	resp, err := c.httpClient.get(ctx, EndpointGetOpenOrders, headers.ToMap(), queryParams)
	if err != nil {
		return nil, fmt.Errorf("获取开放订单失败: %w", err)
	}

	var orders []types.OpenOrder
	if err := parseResponse(resp, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}
