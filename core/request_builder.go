package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RequestBuilder 请求构建器
type RequestBuilder struct {
	client *Client
	path   string
	query  map[string]string
	body   any
	method string
}

// newRequestBuilder 创建请求构建器（包内使用）
func newRequestBuilder(client *Client) *RequestBuilder {
	return &RequestBuilder{
		client: client,
		query:  make(map[string]string),
	}
}

// Path 设置请求路径
func (b *RequestBuilder) Path(path string) *RequestBuilder {
	b.path = path
	return b
}

// Query 添加单个查询参数
func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	if b.query == nil {
		b.query = make(map[string]string)
	}
	b.query[key] = value
	return b
}

// QueryMap 批量设置查询参数
func (b *RequestBuilder) QueryMap(query map[string]string) *RequestBuilder {
	if b.query == nil {
		b.query = make(map[string]string)
	}
	for k, v := range query {
		b.query[k] = v
	}
	return b
}

// Body 设置 JSON 请求体
func (b *RequestBuilder) Body(body any) *RequestBuilder {
	b.body = body
	return b
}

// Get 执行 GET 请求
func (b *RequestBuilder) Get(ctx context.Context) (*Response, error) {
	b.method = http.MethodGet
	return b.do(ctx)
}

// Post 执行 POST 请求
func (b *RequestBuilder) Post(ctx context.Context) (*Response, error) {
	b.method = http.MethodPost
	return b.do(ctx)
}

// Patch 执行 PATCH 请求
func (b *RequestBuilder) Patch(ctx context.Context) (*Response, error) {
	b.method = http.MethodPatch
	return b.do(ctx)
}

func (b *RequestBuilder) do(ctx context.Context) (*Response, error) {
	reqURL, err := b.client.buildURL(b.path, b.query)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	var payload []byte
	var reader io.Reader
	if b.body != nil {
		payload, err = json.Marshal(b.body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, b.method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	b.client.logRequest(ctx, b.method, b.path, b.query, payload)

	start := time.Now()
	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		if urlErr, ok := errors.AsType[*url.Error](err); ok {
			urlErr.URL = RedactURLQuery(urlErr.URL)
		}
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	b.client.logResponse(ctx, resp.StatusCode, time.Since(start), respBody)

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
