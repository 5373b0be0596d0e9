package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/ShinyNito/jobdash/core"
)

// TTLs 各类资源的缓存新鲜期
type TTLs struct {
	Jobs          time.Duration
	Summary       time.Duration
	Contacts      time.Duration
	Notifications time.Duration
}

// DefaultTTLs 默认新鲜期
var DefaultTTLs = TTLs{
	Jobs:          60 * time.Second,
	Summary:       30 * time.Second,
	Contacts:      60 * time.Second,
	Notifications: 15 * time.Second,
}

// Config 仪表盘客户端配置
type Config struct {
	// BaseURL API 地址（必填），如 https://api.example.com/v1
	BaseURL string
	// TokenSource Bearer token 来源（可选）
	TokenSource oauth2.TokenSource
	// HTTPClient 自定义 HTTP 客户端（可选）
	HTTPClient *http.Client
	// Logger 日志记录器（可选，默认使用 slog.Default()）
	Logger *slog.Logger
	// Cache 响应缓存（可选，默认创建私有缓存）
	Cache *core.Cache[[]byte]
	// TTLs 缓存新鲜期（可选，零值字段使用 DefaultTTLs）
	TTLs TTLs
}

// Client 带响应缓存的仪表盘 API 客户端
type Client struct {
	cfg    Config
	api    *core.Client
	cache  *core.Cache[[]byte]
	logger *slog.Logger
}

// New 创建仪表盘客户端
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dashboard config: %w", err)
	}
	cfg = normalizeConfig(cfg)

	api, err := core.NewClient(core.ClientConfig{
		BaseURL:     cfg.BaseURL,
		HTTPClient:  cfg.HTTPClient,
		TokenSource: cfg.TokenSource,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:    cfg,
		api:    api,
		cache:  cfg.Cache,
		logger: cfg.Logger,
	}, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = core.NewCache[[]byte](core.CacheConfig{Logger: cfg.Logger})
	}
	if cfg.TTLs.Jobs <= 0 {
		cfg.TTLs.Jobs = DefaultTTLs.Jobs
	}
	if cfg.TTLs.Summary <= 0 {
		cfg.TTLs.Summary = DefaultTTLs.Summary
	}
	if cfg.TTLs.Contacts <= 0 {
		cfg.TTLs.Contacts = DefaultTTLs.Contacts
	}
	if cfg.TTLs.Notifications <= 0 {
		cfg.TTLs.Notifications = DefaultTTLs.Notifications
	}
	return cfg
}

func (c *Client) Config() Config {
	return c.cfg
}

// Cache 返回底层响应缓存
func (c *Client) Cache() *core.Cache[[]byte] {
	return c.cache
}

// cachedGet 经缓存执行 GET 请求。缓存中只保存成功响应的原始 JSON，读取时再解码为 T。
func cachedGet[T any](ctx context.Context, c *Client, key string, ttl time.Duration, path string, query map[string]string) (T, error) {
	body, err := c.cache.GetWithTTL(ctx, key, func(ctx context.Context) ([]byte, error) {
		resp, err := c.api.Request().Path(path).QueryMap(query).Get(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := core.Decode[json.RawMessage](resp.StatusCode, resp.Body); err != nil {
			return nil, err
		}
		return resp.Body, nil
	}, ttl)
	if err != nil {
		var zero T
		return zero, err
	}
	return core.Decode[T](http.StatusOK, body)
}

func (c *Client) preloadJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	body, err := json.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "preload cache entry failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	c.cache.PreloadWithTTL(key, body, ttl)
}

func pageParams(q PageQuery) map[string]string {
	params := map[string]string{
		"page":      fmt.Sprint(q.Page),
		"page_size": fmt.Sprint(q.PageSize),
	}
	if q.Location != "" {
		params["location"] = q.Location
	}
	return params
}
