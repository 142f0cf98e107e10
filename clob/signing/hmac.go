package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// BuildHmacSignature 构建 L2 请求 HMAC 签名
// 消息为 timestamp + 大写 method + path（POST 时追加 body），输出 hex 摘要。
// path 必须与传输层实际请求路径完全一致（含前导斜杠，不含查询串），否则交易所拒绝请求。
func BuildHmacSignature(
	secret string,
	timestamp int64,
	method string,
	requestPath string,
	body *string,
) (string, error) {
	message := strconv.FormatInt(timestamp, 10) + strings.ToUpper(method) + requestPath
	if body != nil {
		message += *body
	}

	mac := hmac.New(sha256.New, secretKeyBytes(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// secretKeyBytes 解码凭证 secret 作为 HMAC key
// 交易所下发的 secret 为 base64url 格式；无法解码时按原始字节使用
func secretKeyBytes(secret string) []byte {
	// 处理 base64url 格式（将 - 替换为 +，_ 替换为 /）
	sanitized := strings.ReplaceAll(secret, "-", "+")
	sanitized = strings.ReplaceAll(sanitized, "_", "/")

	// 移除非 base64 字符
	sanitized = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') || r == '+' || r == '/' || r == '=' {
			return r
		}
		return -1
	}, sanitized)

	if keyData, err := base64.StdEncoding.DecodeString(sanitized); err == nil {
		return keyData
	}
	return []byte(secret)
}
