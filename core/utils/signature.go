package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

const signaturePrefix = "sha256="

var (
	// ErrMissingSignature 缺少签名或时间戳
	ErrMissingSignature = errors.New("webhook: missing signature")
	// ErrInvalidSignature 签名不匹配
	ErrInvalidSignature = errors.New("webhook: invalid signature")
	// ErrSignatureExpired 时间戳超出容忍范围
	ErrSignatureExpired = errors.New("webhook: signature timestamp outside tolerance")
)

// HMACSHA256 使用 HMAC-SHA256 计算签名
func HMACSHA256(data, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// SignPayload 计算 webhook 签名头，签名内容为 "<timestamp>.<body>"
func SignPayload(secret string, timestamp int64, body []byte) string {
	return signaturePrefix + HMACSHA256(signedContent(timestamp, body), secret)
}

// VerifyPayload 验证 webhook 签名
// signature: 签名头，形如 sha256=<hex>
// timestamp: 时间戳头（Unix 秒）
// tolerance: 允许的时钟偏差，<= 0 时不校验时间
func VerifyPayload(secret, signature, timestamp string, body []byte, now time.Time, tolerance time.Duration) error {
	if signature == "" || timestamp == "" {
		return ErrMissingSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrMissingSignature
	}
	if tolerance > 0 {
		skew := now.Sub(time.Unix(ts, 0))
		if skew > tolerance || skew < -tolerance {
			return ErrSignatureExpired
		}
	}

	got, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedContent(ts, body)))
	if !hmac.Equal(mac.Sum(nil), got) {
		return ErrInvalidSignature
	}
	return nil
}

func signedContent(timestamp int64, body []byte) string {
	return strconv.FormatInt(timestamp, 10) + "." + string(body)
}
