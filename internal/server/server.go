package server

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/betbot/tradegate/internal/gateway"
)

// Config 服务配置
type Config struct {
	DBPath      string        // 会话库路径
	SessionTTL  time.Duration // 会话有效期
	RedirectURL string        // 会话跳转地址前缀
}

// Server HTTP 网关服务
type Server struct {
	cfg Config
	db  *sql.DB
	gw  *gateway.Gateway
}

// New 创建服务并完成会话库迁移
func New(cfg Config, gw *gateway.Gateway) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	if gw == nil {
		return nil, errors.New("gateway is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 5 * time.Minute
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost:3000"
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite：单连接更稳定
	db.SetMaxIdleConns(1)

	s := &Server{cfg: cfg, db: db, gw: gw}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close 关闭服务
func (s *Server) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Router 构建路由
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api")
	api.POST("/session", s.handleSessionCreate)
	api.GET("/session/:token", s.handleSessionGet)
	api.GET("/positions", s.handlePositions)
	api.POST("/cashout", s.handleCashout)
	api.POST("/orders", s.handlePlaceOrder)
	api.GET("/trades", s.handleTrades)
	api.GET("/markets/:market", s.handleMarket)

	return r
}
