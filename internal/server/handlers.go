package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/betbot/tradegate/internal/domain"
	"github.com/betbot/tradegate/pkg/logger"
)

type sessionCreateRequest struct {
	UserID   string `json:"userId"`
	Wallet   string `json:"wallet"`
	Type     string `json:"type"`
	MarketID string `json:"marketId"`
}

func (s *Server) handleSessionCreate(c *gin.Context) {
	var req sessionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" || req.Wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId or wallet"})
		return
	}
	switch req.Type {
	case "placebet":
		if req.MarketID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "marketId is required for placebet"})
			return
		}
	case "cashout":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session type"})
		return
	}

	sess, err := s.createSession(c.Request.Context(), req.UserID, req.Wallet, req.Type, req.MarketID)
	if err != nil {
		logger.Errorf("[server] create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     sess.Token,
		"url":       s.sessionURL(sess),
		"expiresAt": sess.ExpiresAt,
	})
}

func (s *Server) handleSessionGet(c *gin.Context) {
	sess, err := s.getSession(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, errSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
			return
		}
		logger.Errorf("[server] get session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handlePositions(c *gin.Context) {
	wallet := c.Query("wallet")
	force := c.Query("refresh") == "true" || c.Query("refresh") == "1"

	res, err := s.gw.Sync(c.Request.Context(), wallet, force)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"wallet":     res.Wallet,
		"cached":     res.Cached,
		"positions":  res.Positions,
		"openOrders": res.OpenOrders,
	})
}

func (s *Server) handleCashout(c *gin.Context) {
	// size 省略时按全量平仓处理（sizing 引擎对非正数 size 取全部持仓）
	var req domain.CashoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := s.gw.Cashout(c.Request.Context(), &req)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Cashout order submitted",
		"wallet":          req.Wallet,
		"marketId":        req.MarketID,
		"submitted":       res.Quote,
		"orderID":         res.OrderID,
		"status":          res.Status,
		"remaining":       res.Remaining,
		"positionsBefore": res.PositionsBefore,
		"positionsAfter":  res.PositionsAfter,
	})
}

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var req domain.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := s.gw.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleTrades(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	trades, err := s.gw.Trades(c.Request.Context(), c.Query("user"), c.Query("marketId"), limit)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

func (s *Server) handleMarket(c *gin.Context) {
	info, err := s.gw.Market(c.Request.Context(), c.Param("market"))
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// writeDomainError 错误类型到 HTTP 状态码的映射
// 校验错误 400，缓存未命中 404，无流动性 409，凭证/上游失败 502
func (s *Server) writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLiquidity):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCredential), errors.Is(err, domain.ErrUpstream):
		logger.Errorf("[server] upstream/credential failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Errorf("[server] unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
