package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 网关配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Listen      string `yaml:"listen"`       // 监听地址，默认 :8080
	SessionTTL  int    `yaml:"session_ttl"`  // 会话有效期（秒），默认 300
	RedirectURL string `yaml:"redirect_url"` // 会话跳转页面基地址
}

// ExchangeConfig 交易所接入配置
type ExchangeConfig struct {
	ClobHost    string `yaml:"clob_host"`     // CLOB API 地址
	DataHost    string `yaml:"data_host"`     // Data API 地址
	GammaHost   string `yaml:"gamma_host"`    // Gamma API 地址
	ChainID     int    `yaml:"chain_id"`      // 链 ID（Polygon = 137）
	SlippageBps int    `yaml:"slippage_bps"`  // 默认滑点（基点），默认 100 = 1%
	OrderTTLSec int    `yaml:"order_ttl_sec"` // 订单有效期（秒），默认 300
}

// WalletConfig 托管钱包配置
type WalletConfig struct {
	PrivateKeyEnv  string `yaml:"private_key_env"` // 私钥环境变量名，默认 WALLET_PRIVATE_KEY
	DerivationPath string `yaml:"derivation_path"` // 助记词推导路径（wallet-init 用）
}

// StorageConfig 存储配置
type StorageConfig struct {
	LedgerDir     string `yaml:"ledger_dir"`     // Badger 仓位账本目录
	SessionDBPath string `yaml:"session_db"`     // SQLite 会话库路径
	SecretDir     string `yaml:"secret_dir"`     // Badger 密钥存储目录
	EncryptionKey string `yaml:"encryption_key"` // 可选：32 字节密钥（hex/base64），加密密钥存储
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level      string `yaml:"level"`
	OutputFile string `yaml:"output_file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:      ":8080",
			SessionTTL:  300,
			RedirectURL: "http://localhost:3000",
		},
		Exchange: ExchangeConfig{
			ClobHost:    "https://clob.polymarket.com",
			DataHost:    "https://data-api.polymarket.com",
			GammaHost:   "https://gamma-api.polymarket.com",
			ChainID:     137,
			SlippageBps: 100,
			OrderTTLSec: 300,
		},
		Wallet: WalletConfig{
			PrivateKeyEnv:  "WALLET_PRIVATE_KEY",
			DerivationPath: "m/44'/60'/0'/0/0",
		},
		Storage: StorageConfig{
			LedgerDir:     "data/ledger",
			SessionDBPath: "data/sessions.db",
			SecretDir:     "data/secrets",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
		},
	}
}

// Load 从 YAML 文件加载配置（文件不存在时返回默认值），并应用环境变量覆盖
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("解析配置文件失败: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 环境变量覆盖（TRADEGATE_ 前缀）
func (c *Config) applyEnv() {
	if v := os.Getenv("TRADEGATE_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("TRADEGATE_CLOB_HOST"); v != "" {
		c.Exchange.ClobHost = v
	}
	if v := os.Getenv("TRADEGATE_DATA_HOST"); v != "" {
		c.Exchange.DataHost = v
	}
	if v := os.Getenv("TRADEGATE_GAMMA_HOST"); v != "" {
		c.Exchange.GammaHost = v
	}
	if v := os.Getenv("TRADEGATE_CHAIN_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Exchange.ChainID = n
		}
	}
	if v := os.Getenv("TRADEGATE_LEDGER_DIR"); v != "" {
		c.Storage.LedgerDir = v
	}
	if v := os.Getenv("TRADEGATE_SESSION_DB"); v != "" {
		c.Storage.SessionDBPath = v
	}
	if v := os.Getenv("TRADEGATE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Exchange.ClobHost) == "" {
		return fmt.Errorf("exchange.clob_host 不能为空")
	}
	if c.Exchange.ChainID <= 0 {
		return fmt.Errorf("exchange.chain_id 必须为正数: %d", c.Exchange.ChainID)
	}
	if c.Exchange.SlippageBps < 0 || c.Exchange.SlippageBps >= 10000 {
		return fmt.Errorf("exchange.slippage_bps 超出范围 [0,10000): %d", c.Exchange.SlippageBps)
	}
	if c.Exchange.OrderTTLSec <= 0 {
		return fmt.Errorf("exchange.order_ttl_sec 必须为正数: %d", c.Exchange.OrderTTLSec)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl 必须为正数: %d", c.Server.SessionTTL)
	}
	return nil
}
