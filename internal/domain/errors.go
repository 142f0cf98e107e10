package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across package boundaries.
var (
	ErrValidation = errors.New("validation failed")
	ErrCredential = errors.New("credential failure")
	ErrLiquidity  = errors.New("no liquidity")
	ErrUpstream   = errors.New("upstream failure")
	ErrNotFound   = errors.New("not found")
)

// ValidationError 用户输入错误（缺少 wallet / marketId / size），不重试
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError 构造输入校验错误
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// CredentialError 凭证推导或签名失败
// 对当前请求是致命错误，调用方必须用新的 timestamp/nonce 重新开始
type CredentialError struct {
	Op  string
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential failure during %s: %v", e.Op, e.Err)
}

func (e *CredentialError) Unwrap() error { return ErrCredential }

// LiquidityError 订单簿无对手盘
// 原样上抛，不重试，调用方可稍后轮询
type LiquidityError struct {
	TokenID string
}

func (e *LiquidityError) Error() string {
	return fmt.Sprintf("no liquidity for token %s", e.TokenID)
}

func (e *LiquidityError) Unwrap() error { return ErrLiquidity }

// UpstreamError 交易所 HTTP 调用失败
// 同步路径上出现时台账保持不变
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream failure during %s (status=%d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream failure during %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NotFoundError 缓存中不存在目标仓位
// 与流动性错误不同：这是缓存需要强制刷新的信号
type NotFoundError struct {
	Wallet   string
	MarketID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("position not found: wallet=%s market=%s", e.Wallet, e.MarketID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
