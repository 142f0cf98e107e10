package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter 速率限制器接口
type RateLimiter interface {
	Wait(ctx context.Context) error
	Allow() bool
}

// TokenBucket 令牌桶速率限制器
type TokenBucket struct {
	capacity   int       // 桶容量
	tokens     int       // 当前令牌数
	refillRate int       // 每秒补充的令牌数
	lastRefill time.Time // 上次补充时间
	mu         sync.Mutex
}

// NewTokenBucket 创建新的令牌桶
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// refill 补充令牌
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds()) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait 等待直到允许请求
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// RateLimitManager 速率限制管理器（按端点分桶）
type RateLimitManager struct {
	limiters map[string]RateLimiter
	mu       sync.RWMutex
}

// NewRateLimitManager 创建新的速率限制管理器
func NewRateLimitManager() *RateLimitManager {
	manager := &RateLimitManager{
		limiters: make(map[string]RateLimiter),
	}
	manager.initDefaultLimiters()
	return manager
}

// initDefaultLimiters 初始化默认限制器
// 参考 CLOB API 公布的限额，留有余量
func (rlm *RateLimitManager) initDefaultLimiters() {
	rlm.limiters["clob:order:post"] = NewTokenBucket(20, 10)
	rlm.limiters["clob:book:get"] = NewTokenBucket(50, 25)
	rlm.limiters["clob:auth"] = NewTokenBucket(10, 2)
	rlm.limiters["data:positions:get"] = NewTokenBucket(30, 10)
	rlm.limiters["gamma:markets:get"] = NewTokenBucket(30, 10)
}

// GetLimiter 获取指定端点的限制器（不存在时返回默认桶）
func (rlm *RateLimitManager) GetLimiter(endpoint string) RateLimiter {
	rlm.mu.RLock()
	limiter, ok := rlm.limiters[endpoint]
	rlm.mu.RUnlock()
	if ok {
		return limiter
	}

	rlm.mu.Lock()
	defer rlm.mu.Unlock()
	if limiter, ok = rlm.limiters[endpoint]; ok {
		return limiter
	}
	limiter = NewTokenBucket(20, 10)
	rlm.limiters[endpoint] = limiter
	return limiter
}

// Wait 等待直到指定端点允许请求
func (rlm *RateLimitManager) Wait(ctx context.Context, endpoint string) error {
	return rlm.GetLimiter(endpoint).Wait(ctx)
}

// Allow 检查指定端点是否允许请求
func (rlm *RateLimitManager) Allow(endpoint string) bool {
	return rlm.GetLimiter(endpoint).Allow()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
