package main

import (
	"context"
	"crypto/ecdsa"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/tradegate/clob/client"
	"github.com/betbot/tradegate/clob/signing"
	"github.com/betbot/tradegate/clob/types"
	"github.com/betbot/tradegate/dataapi"
	"github.com/betbot/tradegate/internal/gateway"
	"github.com/betbot/tradegate/internal/ledger"
	"github.com/betbot/tradegate/internal/server"
	"github.com/betbot/tradegate/pkg/config"
	"github.com/betbot/tradegate/pkg/logger"
	"github.com/betbot/tradegate/pkg/secretstore"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	var (
		configPath = flag.String("config", getenv("TRADEGATE_CONFIG", "config.yaml"), "config file path")
		listenAddr = flag.String("listen", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		OutputFile: cfg.Logging.OutputFile,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}

	privateKey, err := loadWalletKey(cfg)
	if err != nil {
		log.Fatalf("load wallet key failed: %v", err)
	}

	clobClient := client.NewClient(cfg.Exchange.ClobHost, types.Chain(cfg.Exchange.ChainID), privateKey)
	dataClient := dataapi.NewClient(cfg.Exchange.DataHost)
	gammaClient := client.NewGammaClient(cfg.Exchange.GammaHost)

	positionLedger, err := ledger.Open(ledger.Options{Dir: cfg.Storage.LedgerDir})
	if err != nil {
		log.Fatalf("open ledger failed: %v", err)
	}
	defer positionLedger.Close()

	gw := gateway.New(clobClient, dataClient, positionLedger, gateway.Config{
		SlippageBps: cfg.Exchange.SlippageBps,
		OrderTTLSec: int64(cfg.Exchange.OrderTTLSec),
	}, gateway.WithMarketService(gammaClient))

	srv, err := server.New(server.Config{
		DBPath:      cfg.Storage.SessionDBPath,
		SessionTTL:  time.Duration(cfg.Server.SessionTTL) * time.Second,
		RedirectURL: cfg.Server.RedirectURL,
	}, gw)
	if err != nil {
		log.Fatalf("init server failed: %v", err)
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("gateway listening on %s", cfg.Server.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http server error: %v", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)

	fmt.Println("gateway stopped")
}

// loadWalletKey 加载托管钱包私钥
// 优先读私钥环境变量，其次从加密密钥库读取（wallet-init 写入）
func loadWalletKey(cfg *config.Config) (*ecdsa.PrivateKey, error) {
	if raw := strings.TrimSpace(os.Getenv(cfg.Wallet.PrivateKeyEnv)); raw != "" {
		return signing.PrivateKeyFromHex(raw)
	}

	encKey, err := secretstore.ParseKey(cfg.Storage.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("parse encryption key: %w", err)
	}

	store, err := secretstore.Open(secretstore.OpenOptions{
		Path:          cfg.Storage.SecretDir,
		EncryptionKey: encKey,
		ReadOnly:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("open secret store: %w", err)
	}
	defer store.Close()

	hexKey, found, err := store.WalletKey()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no wallet key: set %s or run wallet-init", cfg.Wallet.PrivateKeyEnv)
	}
	return signing.PrivateKeyFromHex(hexKey)
}
