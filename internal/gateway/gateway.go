package gateway

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/betbot/tradegate/internal/domain"
	"github.com/betbot/tradegate/pkg/cache"
	"github.com/betbot/tradegate/pkg/logger"
)

// Gateway 交易网关核心服务
// 串联凭证推导、持仓同步、平仓定价与订单提交，
// 同一钱包的写操作通过钱包级互斥锁串行化。
type Gateway struct {
	clob    ClobService
	data    DataService
	ledger  Store
	markets MarketService

	// 市场元数据短期缓存（市场结构在生命周期内基本不变）
	marketCache *cache.InMemoryCache[string, *MarketInfo]

	slippageBps int
	orderTTLSec int64

	// 订单 nonce 单调递增
	nonce atomic.Int64

	credMu sync.Mutex

	// 钱包级互斥锁：两个并发平仓请求不允许同时读到同一份 size
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Config 网关配置
type Config struct {
	SlippageBps int   // 默认滑点（基点）
	OrderTTLSec int64 // GTD 订单有效期（秒），0 表示不使用
}

// Option 网关选项
type Option func(*Gateway)

// WithMarketService 启用市场元数据查询
func WithMarketService(markets MarketService) Option {
	return func(g *Gateway) {
		g.markets = markets
	}
}

// New 创建网关服务
func New(clob ClobService, data DataService, ledger Store, cfg Config, opts ...Option) *Gateway {
	if cfg.SlippageBps <= 0 {
		cfg.SlippageBps = 100
	}
	g := &Gateway{
		clob:        clob,
		data:        data,
		ledger:      ledger,
		slippageBps: cfg.SlippageBps,
		orderTTLSec: cfg.OrderTTLSec,
		locks:       make(map[string]*sync.Mutex),
		marketCache: cache.NewInMemoryCache[string, *MarketInfo](time.Minute),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// walletLock 获取钱包对应的互斥锁（按需创建）
func (g *Gateway) walletLock(wallet string) *sync.Mutex {
	key := strings.ToLower(strings.TrimSpace(wallet))

	g.locksMu.Lock()
	defer g.locksMu.Unlock()

	if mu, ok := g.locks[key]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	g.locks[key] = mu
	return mu
}

// ensureCreds 确保 L2 凭证可用，首次调用时向交易所推导或创建
// 凭证推导失败对当前请求是致命的，必须整体重试
func (g *Gateway) ensureCreds(ctx context.Context) error {
	g.credMu.Lock()
	defer g.credMu.Unlock()

	if g.clob.Creds() != nil {
		return nil
	}

	creds, source, err := g.clob.CreateOrDeriveAPIKey(ctx, 0)
	if err != nil {
		return &domain.CredentialError{Op: "derive-api-key", Err: err}
	}
	g.clob.SetCreds(creds)
	logger.Infof("[gateway] API credentials ready (source=%s)", source)
	return nil
}

// nextNonce 返回下一个订单 nonce
func (g *Gateway) nextNonce() int64 {
	return g.nonce.Add(1)
}
