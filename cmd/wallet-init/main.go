package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"

	"github.com/betbot/tradegate/pkg/config"
	"github.com/betbot/tradegate/pkg/secretstore"
)

// wallet-init 从助记词推导托管钱包私钥并写入加密密钥库
// 网关启动时若没有私钥环境变量，会从这里读取。
func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", getenv("TRADEGATE_CONFIG", "config.yaml"), "config file path")
		force      = flag.Bool("force", false, "overwrite existing wallet key")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(fmt.Errorf("load config: %w", err))
	}

	encKey, err := secretstore.ParseKey(cfg.Storage.EncryptionKey)
	if err != nil {
		fatal(fmt.Errorf("parse encryption key: %w", err))
	}
	if encKey == nil {
		fmt.Fprintln(os.Stderr, "警告: 未配置 storage.encryption_key，密钥库将不加密存储")
	}

	store, err := secretstore.Open(secretstore.OpenOptions{
		Path:          cfg.Storage.SecretDir,
		EncryptionKey: encKey,
	})
	if err != nil {
		fatal(fmt.Errorf("open secret store: %w", err))
	}
	defer store.Close()

	if _, found, err := store.WalletKey(); err != nil {
		fatal(err)
	} else if found && !*force {
		fatal(errors.New("wallet key already exists (use -force to overwrite)"))
	}

	fmt.Fprintln(os.Stderr, "请输入助记词（12/15/18/21/24 个单词），输入完成后回车：")
	mnemonic := strings.TrimSpace(readLine())
	if mnemonic == "" {
		fatal(errors.New("mnemonic is empty"))
	}

	hexKey, address, err := deriveKey(mnemonic, cfg.Wallet.DerivationPath)
	if err != nil {
		fatal(err)
	}

	if err := store.SetWalletKey(hexKey); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "托管钱包已初始化：%s\n", address)
}

func deriveKey(mnemonic, derivationPath string) (hexKey, address string, err error) {
	w, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return "", "", fmt.Errorf("invalid mnemonic: %w", err)
	}

	path, err := hdwallet.ParseDerivationPath(derivationPath)
	if err != nil {
		return "", "", fmt.Errorf("invalid derivation path: %w", err)
	}

	acct, err := w.Derive(path, false)
	if err != nil {
		return "", "", fmt.Errorf("derive failed: %w", err)
	}

	pk, err := w.PrivateKeyHex(acct)
	if err != nil {
		return "", "", fmt.Errorf("private key failed: %w", err)
	}

	return pk, strings.ToLower(acct.Address.Hex()), nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func readLine() string {
	br := bufio.NewReader(os.Stdin)
	s, _ := br.ReadString('\n')
	return strings.TrimSpace(s)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
