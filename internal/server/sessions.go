package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session 短期交易会话
// 机器人侧创建，携带 token 的跳转链接在有效期内代表指定用户与钱包。
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Wallet    string    `json:"wallet"`
	Type      string    `json:"type"`
	MarketID  string    `json:"marketId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var errSessionNotFound = errors.New("session not found or expired")

// createSession 写入新会话
func (s *Server) createSession(ctx context.Context, userID, wallet, sessionType, marketID string) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Wallet:    wallet,
		Type:      sessionType,
		MarketID:  marketID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions (token, user_id, wallet, session_type, market_id, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.Token, sess.UserID, sess.Wallet, sess.Type, sess.MarketID,
		sess.CreatedAt.Format(time.RFC3339Nano), sess.ExpiresAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// getSession 按 token 读取未过期会话
func (s *Server) getSession(ctx context.Context, token string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT token, user_id, wallet, session_type, COALESCE(market_id, ''), created_at, expires_at
FROM sessions WHERE token = ?`, token)

	var sess Session
	var createdAt, expiresAt string
	if err := row.Scan(&sess.Token, &sess.UserID, &sess.Wallet, &sess.Type, &sess.MarketID, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	var err error
	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if sess.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		// 过期会话顺手清掉
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
		return nil, errSessionNotFound
	}
	return &sess, nil
}

// sessionURL 生成会话跳转链接
func (s *Server) sessionURL(sess *Session) string {
	if sess.Type == "placebet" {
		return fmt.Sprintf("%s/market/%s?token=%s", s.cfg.RedirectURL, sess.MarketID, sess.Token)
	}
	return fmt.Sprintf("%s/cashout?token=%s", s.cfg.RedirectURL, sess.Token)
}
