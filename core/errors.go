package core

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError 仪表盘 API 错误
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: [%d] %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: [%d %s] %s", e.StatusCode, e.Code, e.Message)
}

// NewAPIError 创建 API 错误
func NewAPIError(status int, code, msg string) *APIError {
	return &APIError{
		StatusCode: status,
		Code:       code,
		Message:    msg,
	}
}

// 常见错误码
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeValidation   = "validation_failed"
)

// IsNotFound 判断是否为资源不存在
func IsNotFound(err error) bool {
	if ae, ok := errors.AsType[*APIError](err); ok {
		return ae.StatusCode == http.StatusNotFound || ae.Code == ErrCodeNotFound
	}
	return false
}

// IsUnauthorized 判断是否为认证失败（需要重新获取 token）
func IsUnauthorized(err error) bool {
	if ae, ok := errors.AsType[*APIError](err); ok {
		return ae.StatusCode == http.StatusUnauthorized || ae.Code == ErrCodeUnauthorized
	}
	return false
}

// IsRetryable 判断是否值得重试（5xx 与限流）
func IsRetryable(err error) bool {
	if ae, ok := errors.AsType[*APIError](err); ok {
		return ae.StatusCode >= http.StatusInternalServerError ||
			ae.StatusCode == http.StatusTooManyRequests ||
			ae.Code == ErrCodeRateLimited
	}
	return false
}

// ResponseParseError 响应解析错误
// 当响应体不是有效的 JSON 时返回此错误
type ResponseParseError struct {
	Body []byte // 原始响应体
	Err  error  // 底层解析错误
}

// Error 实现 error 接口
func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

// Unwrap 支持 errors.Is/As
func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// NewResponseParseError 创建响应解析错误
func NewResponseParseError(body []byte, err error) *ResponseParseError {
	return &ResponseParseError{
		Body: body,
		Err:  err,
	}
}
