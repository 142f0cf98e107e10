package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/betbot/tradegate/internal/domain"
	"github.com/betbot/tradegate/pkg/logger"
)

// Ledger 持仓台账（badger 持久化）
// 每个钱包一个 key（orders:<wallet>），value 为 JSON 序列化的持仓记录数组，
// 每次全量同步整体替换。
type Ledger struct {
	db *badger.DB
}

// Options 台账存储配置
type Options struct {
	Dir      string
	InMemory bool // 仅测试用
}

// Open 打开台账存储
func Open(opts Options) (*Ledger, error) {
	if !opts.InMemory && strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("ledger: dir is required")
	}

	bopts := badger.DefaultOptions(opts.Dir).
		WithLogger(nil).
		WithInMemory(opts.InMemory)
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("ledger: open badger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close 关闭存储
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// walletKey 生成钱包的存储 key（地址统一小写，避免大小写混用产生重复条目）
func walletKey(wallet string) []byte {
	return []byte("orders:" + strings.ToLower(strings.TrimSpace(wallet)))
}

// Load 读取钱包的全部持仓记录，没有记录时返回空切片
func (l *Ledger) Load(wallet string) ([]domain.PositionRecord, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, errors.New("ledger: wallet is empty")
	}

	var records []domain.PositionRecord
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(walletKey(wallet))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &records)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: load %s: %w", wallet, err)
	}

	if records == nil {
		records = []domain.PositionRecord{}
	}
	return records, nil
}

// ReplaceAll 全量替换钱包的持仓记录
// 实现为删除后整体写入（非增量 diff），同步后的状态必须与交易所
// 最后一次返回的真实持仓完全一致。单个事务内完成，不存在半替换状态。
func (l *Ledger) ReplaceAll(wallet string, records []domain.PositionRecord) error {
	if strings.TrimSpace(wallet) == "" {
		return errors.New("ledger: wallet is empty")
	}

	key := walletKey(wallet)
	err := l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		data, err := json.Marshal(records)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("ledger: replace %s: %w", wallet, err)
	}

	logger.Debugf("[ledger] ReplaceAll: wallet=%s records=%d", wallet, len(records))
	return nil
}

// UpsertAfterFill 成交后更新持仓
// 按 tokenID 定位记录并重写 size 与时间戳；剩余数量 ≤ 0 时整条移除。
// 台账中永远不会出现非正数量的记录。
func (l *Ledger) UpsertAfterFill(wallet, tokenID string, remaining float64) error {
	if strings.TrimSpace(wallet) == "" {
		return errors.New("ledger: wallet is empty")
	}
	if strings.TrimSpace(tokenID) == "" {
		return errors.New("ledger: tokenID is empty")
	}

	records, err := l.Load(wallet)
	if err != nil {
		return err
	}

	updated := make([]domain.PositionRecord, 0, len(records))
	for _, rec := range records {
		if rec.TokenID != tokenID {
			updated = append(updated, rec)
			continue
		}
		if remaining <= 0 {
			continue
		}
		rec.Size = remaining
		rec.Touch()
		updated = append(updated, rec)
	}

	return l.ReplaceAll(wallet, updated)
}
