package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/betbot/tradegate/pkg/ratelimit"
)

// GammaMarket Gamma API 市场数据结构
type GammaMarket struct {
	ID           string `json:"id"`
	Question     string `json:"question"`
	ConditionID  string `json:"conditionId"`
	Slug         string `json:"slug"`
	ClobTokenIDs string `json:"clobTokenIds"`
	Outcomes     string `json:"outcomes"`
	EndDate      string `json:"endDate"`
	StartDate    string `json:"startDate"`
	Category     string `json:"category"`
	NegRisk      bool   `json:"negRisk"`
	Closed       bool   `json:"closed"`
}

// GammaClient Gamma API 客户端（市场元数据，只读，无需认证）
type GammaClient struct {
	client      *resty.Client
	rateLimiter *ratelimit.RateLimitManager
}

// NewGammaClient 创建 Gamma API 客户端
// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY）
func NewGammaClient(host string) *GammaClient {
	host = strings.TrimSuffix(host, "/")

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// 429 限流时优先使用 Retry-After 头
			if resp.StatusCode() == 429 {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	return &GammaClient{
		client:      client,
		rateLimiter: ratelimit.NewRateLimitManager(),
	}
}

// GetMarketBySlug 按 slug 获取市场数据
func (g *GammaClient) GetMarketBySlug(ctx context.Context, slug string) (*GammaMarket, error) {
	markets, err := g.queryMarkets(ctx, map[string]string{"slug": slug})
	if err != nil {
		return nil, err
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("未找到市场: %s", slug)
	}
	return &markets[0], nil
}

// GetMarketByConditionID 按 condition ID 获取市场数据
func (g *GammaClient) GetMarketByConditionID(ctx context.Context, conditionID string) (*GammaMarket, error) {
	markets, err := g.queryMarkets(ctx, map[string]string{"condition_ids": conditionID})
	if err != nil {
		return nil, err
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("未找到市场: %s", conditionID)
	}
	return &markets[0], nil
}

func (g *GammaClient) queryMarkets(ctx context.Context, params map[string]string) ([]GammaMarket, error) {
	if err := g.rateLimiter.Wait(ctx, "gamma:markets:get"); err != nil {
		return nil, fmt.Errorf("速率限制等待失败: %w", err)
	}

	var markets []GammaMarket
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		SetResult(&markets).
		Get("/markets")
	if err != nil {
		return nil, fmt.Errorf("请求 Gamma API 失败: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("Gamma API 错误 %d: %s", resp.StatusCode(), resp.String())
	}

	return markets, nil
}

// TokenIDs 解析市场的 clobTokenIds 字段（JSON 编码的字符串数组）
// 数组顺序与 outcomes 对应，二元市场通常是 [YES, NO]
func (m *GammaMarket) TokenIDs() ([]string, error) {
	if m.ClobTokenIDs == "" {
		return nil, fmt.Errorf("市场 %s 缺少 clobTokenIds", m.Slug)
	}

	var ids []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &ids); err != nil {
		return nil, fmt.Errorf("解析 clobTokenIds 失败: %w", err)
	}
	return ids, nil
}

// OutcomeTokenID 返回指定 outcome 对应的 token ID（outcome 名称不区分大小写）
func (m *GammaMarket) OutcomeTokenID(outcome string) (string, error) {
	ids, err := m.TokenIDs()
	if err != nil {
		return "", err
	}

	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err != nil {
		return "", fmt.Errorf("解析 outcomes 失败: %w", err)
	}

	for i, name := range outcomes {
		if strings.EqualFold(name, outcome) && i < len(ids) {
			return ids[i], nil
		}
	}
	return "", fmt.Errorf("市场 %s 不存在 outcome: %s", m.Slug, outcome)
}
