package client

import (
	"crypto/ecdsa"
	"strings"

	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/pkg/ratelimit"
)

// Client CLOB 客户端
type Client struct {
	host        string
	chainID     types.Chain
	authConfig  *AuthConfig
	httpClient  *httpClient
	rateLimiter *ratelimit.RateLimitManager
}

// Option 客户端选项
type Option func(*Client)

// WithTransport 替换底层 HTTP 传输（测试用）
func WithTransport(transport HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = newHTTPClient(c.host, transport)
	}
}

// WithCreds 设置已有的 API 凭证
func WithCreds(creds *types.ApiKeyCreds) Option {
	return func(c *Client) {
		c.authConfig.Creds = creds
	}
}

// NewClient 创建新的 CLOB 客户端
func NewClient(
	host string,
	chainID types.Chain,
	privateKey *ecdsa.PrivateKey,
	opts ...Option,
) *Client {
	host = strings.TrimSuffix(host, "/")

	c := &Client{
		host:    host,
		chainID: chainID,
		authConfig: &AuthConfig{
			PrivateKey: privateKey,
			ChainID:    chainID,
		},
		httpClient:  newHTTPClient(host, nil),
		rateLimiter: ratelimit.NewRateLimitManager(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetHost 获取主机地址
func (c *Client) GetHost() string {
	return c.host
}

// GetChainID 获取链 ID
func (c *Client) GetChainID() types.Chain {
	return c.chainID
}

// SetCreds 设置 API 凭证（推导成功后调用）
func (c *Client) SetCreds(creds *types.ApiKeyCreds) {
	c.authConfig.Creds = creds
}

// Creds 返回当前 API 凭证（可能为 nil）
func (c *Client) Creds() *types.ApiKeyCreds {
	return c.authConfig.Creds
}
