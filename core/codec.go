package core

import (
	"bytes"
	"encoding/json"
)

type apiErrorEnvelope struct {
	Error *APIError `json:"error"`
}

// Decode 解析仪表盘 API 响应。
// 2xx 空响应返回零值；错误信封或非 2xx 状态返回 *APIError；非法 JSON 返回 *ResponseParseError。
func Decode[T any](statusCode int, body []byte) (T, error) {
	var zero T

	if len(bytes.TrimSpace(body)) == 0 {
		if isSuccess(statusCode) {
			return zero, nil
		}
		return zero, NewAPIError(statusCode, "", "empty response body")
	}

	if apiErr := parseAPIError(statusCode, body); apiErr != nil {
		return zero, apiErr
	}

	if !isSuccess(statusCode) {
		return zero, NewAPIError(statusCode, "", truncateBody(body, 256))
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, NewResponseParseError(body, err)
	}
	return out, nil
}

func parseAPIError(statusCode int, body []byte) *APIError {
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil
	}
	if envelope.Error.Code == "" && envelope.Error.Message == "" {
		return nil
	}
	envelope.Error.StatusCode = statusCode
	return envelope.Error
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

func truncateBody(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
