package dataapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/tradegate/pkg/ratelimit"
)

// Client talks to the exchange data API (read-only, no auth required).
//
// Data API responses may lag the matching engine by a few seconds.
// Callers should treat everything returned here as eventually consistent.
type Client struct {
	client      *resty.Client
	rateLimiter *ratelimit.RateLimitManager
}

// NewClient builds a data API client for the given host.
// Proxy settings are picked up from the environment by resty.
func NewClient(host string) *Client {
	host = strings.TrimSuffix(host, "/")

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// Honor Retry-After on 429 before falling back to the default backoff.
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

	return &Client{
		client:      client,
		rateLimiter: ratelimit.NewRateLimitManager(),
	}
}

// WithTransport swaps the underlying HTTP base URL, used by tests
// pointing the client at a local httptest server.
func (c *Client) WithTransport(baseURL string) *Client {
	c.client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	return c
}

// Positions returns all current positions held by the given address.
// sizeThreshold=0 so small balances are not silently dropped.
func (c *Client) Positions(ctx context.Context, user string) ([]RawPosition, error) {
	if strings.TrimSpace(user) == "" {
		return nil, errors.New("dataapi: user address is empty")
	}

	if err := c.rateLimiter.Wait(ctx, "data:positions:get"); err != nil {
		return nil, errors.Wrap(err, "dataapi: rate limit wait")
	}

	var positions []RawPosition
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user":          user,
			"sizeThreshold": "0",
			"limit":         "500",
		}).
		SetResult(&positions).
		Get("/positions")
	if err != nil {
		return nil, errors.Wrap(err, "dataapi: fetch positions")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("dataapi: positions status=%d body=%s", resp.StatusCode(), resp.String())
	}

	return positions, nil
}

// Trades returns recent fills matching the query.
func (c *Client) Trades(ctx context.Context, q TradeQuery) ([]Trade, error) {
	if err := c.rateLimiter.Wait(ctx, "data:positions:get"); err != nil {
		return nil, errors.Wrap(err, "dataapi: rate limit wait")
	}

	params := make(map[string]string)
	if q.User != "" {
		params["user"] = q.User
	}
	if q.Market != "" {
		params["market"] = q.Market
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	params["limit"] = strconv.Itoa(limit)

	var trades []Trade
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&trades).
		Get("/trades")
	if err != nil {
		return nil, errors.Wrap(err, "dataapi: fetch trades")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("dataapi: trades status=%d body=%s", resp.StatusCode(), resp.String())
	}

	return trades, nil
}

// ResolveProxyWallet maps a signing wallet to the exchange-side proxy
// wallet that actually holds the collateral. Addresses the exchange has
// never provisioned a proxy for resolve to the signing wallet itself.
func (c *Client) ResolveProxyWallet(ctx context.Context, wallet string) (string, error) {
	if strings.TrimSpace(wallet) == "" {
		return "", errors.New("dataapi: wallet address is empty")
	}

	if err := c.rateLimiter.Wait(ctx, "data:positions:get"); err != nil {
		return "", errors.Wrap(err, "dataapi: rate limit wait")
	}

	var result struct {
		ProxyWallet string `json:"proxyWallet"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("address", wallet).
		SetResult(&result).
		Get("/proxy-wallet")
	if err != nil {
		return "", errors.Wrap(err, "dataapi: resolve proxy wallet")
	}
	if resp.StatusCode() == 404 {
		return wallet, nil
	}
	if !resp.IsSuccess() {
		return "", errors.Errorf("dataapi: proxy-wallet status=%d body=%s", resp.StatusCode(), resp.String())
	}

	if result.ProxyWallet == "" {
		return wallet, nil
	}
	return result.ProxyWallet, nil
}

// MarketID returns the market identifier of a raw position, checking the
// field spellings the exchange has used over time, in priority order.
func (p *RawPosition) MarketID() string {
	if p.Market != "" {
		return p.Market
	}
	if p.ConditionIDA != "" {
		return p.ConditionIDA
	}
	return p.ConditionIDB
}

// SizeFloat parses the position size, tolerating both string and numeric
// JSON encodings.
func (p *RawPosition) SizeFloat() (float64, error) {
	if p.Size == "" {
		return 0, nil
	}
	v, err := p.Size.Float64()
	if err != nil {
		return 0, fmt.Errorf("dataapi: bad size %q: %w", p.Size, err)
	}
	return v, nil
}

// AvgPriceFloat parses the average entry price.
func (p *RawPosition) AvgPriceFloat() (float64, error) {
	if p.AvgPrice == "" {
		return 0, nil
	}
	v, err := p.AvgPrice.Float64()
	if err != nil {
		return 0, fmt.Errorf("dataapi: bad avgPrice %q: %w", p.AvgPrice, err)
	}
	return v, nil
}
