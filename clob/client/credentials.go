package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/betbot/tradegate/clob/signing"
	"github.com/betbot/tradegate/clob/types"
)

// CreateOrDeriveAPIKey 创建或推导 API 密钥（L1 方法）
// 先尝试推导已有密钥（幂等）；HTTP 400 表示账户尚未注册，转为创建。
// 返回凭证及其来源标记（derived / created）。
// 推导与创建都失败视为凭证获取失败，调用方需用新的 timestamp/nonce 重试整个流程。
func (c *Client) CreateOrDeriveAPIKey(ctx context.Context, nonce int64) (*types.ApiKeyCreds, types.CredentialSource, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, "", err
	}

	if err := c.rateLimiter.Wait(ctx, "clob:auth"); err != nil {
		return nil, "", fmt.Errorf("速率限制等待失败: %w", err)
	}

	// L1 认证头：签名、时间戳、nonce 都只放在 header，不放 body
	headers, err := signing.CreateL1Headers(c.authConfig.PrivateKey, c.authConfig.ChainID, nonce)
	if err != nil {
		return nil, "", fmt.Errorf("创建 L1 认证头失败: %w", err)
	}
	headerMap := headers.ToMap()

	// 先尝试推导现有 API 密钥
	resp, deriveErr := c.httpClient.get(ctx, EndpointDeriveAPIKey, headerMap, nil)
	if deriveErr == nil && resp != nil {
		switch {
		case resp.StatusCode == http.StatusOK:
			var apiKeyRaw types.ApiKeyRaw
			if err := parseResponse(resp, &apiKeyRaw); err != nil {
				return nil, "", fmt.Errorf("解析 API 密钥响应失败: %w", err)
			}
			return credsFromRaw(&apiKeyRaw), types.CredentialSourceDerived, nil
		case resp.StatusCode == http.StatusBadRequest:
			// 400：没有现有 API 密钥，继续执行创建逻辑
			drainBody(resp)
		default:
			// 其他错误不再尝试创建（签名本身可能有问题）
			err := parseResponse(resp, nil)
			return nil, "", fmt.Errorf("推导 API 密钥失败: %w", err)
		}
	}

	// 推导失败（账户还没有 API 密钥或网络错误），尝试创建新的
	resp, err = c.httpClient.post(ctx, EndpointCreateAPIKey, headerMap, map[string]interface{}{})
	if err != nil {
		if deriveErr != nil {
			return nil, "", fmt.Errorf("凭证获取失败: derive=%v, create=%w", deriveErr, err)
		}
		return nil, "", fmt.Errorf("凭证获取失败: %w", err)
	}

	var apiKeyRaw types.ApiKeyRaw
	if err := parseResponse(resp, &apiKeyRaw); err != nil {
		return nil, "", fmt.Errorf("解析 API 密钥响应失败: %w", err)
	}

	return credsFromRaw(&apiKeyRaw), types.CredentialSourceCreated, nil
}

func credsFromRaw(raw *types.ApiKeyRaw) *types.ApiKeyCreds {
	return &types.ApiKeyCreds{
		Key:        raw.ApiKey,
		Secret:     raw.Secret,
		Passphrase: raw.Passphrase,
	}
}
