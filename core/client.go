package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultTimeout = 30 * time.Second
)

type ClientConfig struct {
	BaseURL     string
	HTTPClient  *http.Client
	TokenSource oauth2.TokenSource
	Logger      *slog.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     *slog.Logger
}

// Response 原始 HTTP 响应
type Response struct {
	StatusCode int
	Body       []byte
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	parsedBaseURL, err := url.Parse(baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsedBaseURL.Scheme == "" || parsedBaseURL.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.TokenSource != nil {
		httpClient = authorizedClient(httpClient, cfg.TokenSource)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    parsedBaseURL,
		logger:     logger,
	}, nil
}

// authorizedClient 在原客户端的 Transport 之上附加 Bearer token
func authorizedClient(base *http.Client, ts oauth2.TokenSource) *http.Client {
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   transport,
		},
		Timeout:       base.Timeout,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
	}
}

func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func (c *Client) Request() *RequestBuilder {
	return newRequestBuilder(c)
}

func (c *Client) buildURL(path string, query map[string]string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}

	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		values := u.Query()
		for key, value := range query {
			values.Set(key, value)
		}
		u.RawQuery = values.Encode()
	}

	return u.String(), nil
}

func (c *Client) logRequest(ctx context.Context, method, path string, query map[string]string, body []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
	}
	if len(query) > 0 {
		attrs = append(attrs, slog.Any("query", RedactQueryMap(query)))
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("body", string(body)))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http request", attrs...)
}

func (c *Client) logResponse(ctx context.Context, statusCode int, elapsed time.Duration, body []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.Int("status", statusCode),
		slog.Duration("elapsed", elapsed),
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("body", truncateBody(body, 512)))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http response", attrs...)
}
