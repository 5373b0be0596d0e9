package core

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL 默认新鲜期
const DefaultCacheTTL = 30 * time.Second

var (
	// ErrEmptyKey 缓存键为空
	ErrEmptyKey = errors.New("cache: empty key")
	// ErrNilFetcher 未提供 fetcher
	ErrNilFetcher = errors.New("cache: nil fetcher")
)

// Fetcher 在缓存未命中或过期时获取权威数据。
// 超时与取消由 fetcher 自己通过 ctx 处理，缓存不会中断已发起的请求。
type Fetcher[T any] func(ctx context.Context) (T, error)

// CacheConfig 缓存配置
type CacheConfig struct {
	// DefaultTTL 默认新鲜期（可选，<= 0 时使用 DefaultCacheTTL）
	DefaultTTL time.Duration
	// Logger 日志记录器（可选，默认使用 slog.Default()）
	Logger *slog.Logger
	// Now 时钟（可选，默认 time.Now）
	Now func() time.Time
	// Metrics 指标（可选）
	Metrics CacheMetrics
	// SingleFlight 合并同一个 key 的并发 fetch（可选，默认关闭）
	SingleFlight bool
}

// CacheStats 缓存统计，在调用时按当前时间计算
type CacheStats struct {
	Total int `json:"total"`
	Valid int `json:"valid"`
	Stale int `json:"stale"`
	Size  int `json:"size"`
}

// EntryInfo 缓存项快照
type EntryInfo struct {
	Key       string        `json:"key"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
	Fresh     bool          `json:"fresh"`
}

type cacheEntry[T any] struct {
	payload   T
	fetchedAt time.Time
	ttl       time.Duration
}

// isFresh 判断缓存项在 now 时刻是否新鲜
func (e *cacheEntry[T]) isFresh(now time.Time) bool {
	return now.Sub(e.fetchedAt) < e.ttl
}

// Cache 带 TTL 的响应缓存。
// 过期项不会被主动清理：fetch 失败时返回旧值（stale-on-error），
// 没有旧值时原样返回 fetcher 的错误。
type Cache[T any] struct {
	defaultTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
	metrics    CacheMetrics

	mu      sync.RWMutex
	entries map[string]*cacheEntry[T]

	group *singleflight.Group
}

// NewCache 创建缓存实例
func NewCache[T any](cfg CacheConfig) *Cache[T] {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopCacheMetrics{}
	}

	c := &Cache[T]{
		defaultTTL: ttl,
		logger:     logger,
		now:        now,
		metrics:    metrics,
		entries:    make(map[string]*cacheEntry[T]),
	}
	if cfg.SingleFlight {
		c.group = &singleflight.Group{}
	}
	return c
}

// DefaultTTL 返回默认新鲜期
func (c *Cache[T]) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Get 使用默认 TTL 读取缓存，见 GetWithTTL
func (c *Cache[T]) Get(ctx context.Context, key string, fetch Fetcher[T]) (T, error) {
	return c.GetWithTTL(ctx, key, fetch, c.defaultTTL)
}

// GetWithTTL 读取缓存
// 命中新鲜项时直接返回，不调用 fetch；否则调用 fetch 并写入 {payload, now, ttl}。
//
// 错误:
//   - ErrEmptyKey / ErrNilFetcher: 参数错误
//   - fetch 返回的原始错误: 仅当 fetch 失败且没有任何旧值时
func (c *Cache[T]) GetWithTTL(ctx context.Context, key string, fetch Fetcher[T], ttl time.Duration) (T, error) {
	var zero T
	if key == "" {
		return zero, ErrEmptyKey
	}
	if fetch == nil {
		return zero, ErrNilFetcher
	}
	ttl = max(ttl, 0)

	if payload, ok := c.lookupFresh(key); ok {
		c.metrics.Hit()
		return payload, nil
	}
	c.metrics.Miss()

	payload, err := c.fetch(ctx, key, fetch, ttl)
	if err != nil {
		return c.fallback(ctx, key, err)
	}
	return payload, nil
}

func (c *Cache[T]) lookupFresh(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !entry.isFresh(c.now()) {
		var zero T
		return zero, false
	}
	return entry.payload, true
}

// fetch 调用 fetcher，成功后写入缓存。
// 开启 single-flight 时共享的 fetch 不随任何调用方的 ctx 取消，
// 每个调用方只等待到自己的 ctx 结束为止；已发起的 fetch 完成后照常写入。
func (c *Cache[T]) fetch(ctx context.Context, key string, fetch Fetcher[T], ttl time.Duration) (T, error) {
	var zero T
	if c.group == nil {
		payload, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		c.store(key, payload, ttl)
		return payload, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		payload, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		c.store(key, payload, ttl)
		return payload, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		payload, _ := res.Val.(T)
		return payload, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache[T]) fallback(ctx context.Context, key string, fetchErr error) (T, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.metrics.FetchError()
		var zero T
		return zero, fetchErr
	}

	c.metrics.StaleServed()
	c.logger.WarnContext(ctx, "fetch failed, serving cached entry",
		slog.String("key", key),
		slog.Duration("age", c.now().Sub(entry.fetchedAt)),
		slog.Any("error", fetchErr),
	)
	return entry.payload, nil
}

func (c *Cache[T]) store(key string, payload T, ttl time.Duration) {
	entry := &cacheEntry[T]{
		payload:   payload,
		fetchedAt: c.now(),
		ttl:       ttl,
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Invalidate 删除指定 key，不存在时静默返回
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// InvalidatePattern 删除所有包含 substr 的 key，返回删除数量
func (c *Cache[T]) InvalidatePattern(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, substr) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear 清空缓存，返回删除数量
func (c *Cache[T]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	clear(c.entries)
	return removed
}

// Preload 使用默认 TTL 预热缓存
func (c *Cache[T]) Preload(key string, payload T) {
	c.PreloadWithTTL(key, payload, c.defaultTTL)
}

// PreloadWithTTL 无条件写入缓存项，fetchedAt 为当前时间。空 key 会被忽略。
func (c *Cache[T]) PreloadWithTTL(key string, payload T, ttl time.Duration) {
	if key == "" {
		return
	}
	c.store(key, payload, max(ttl, 0))
}

// Stats 返回缓存统计
func (c *Cache[T]) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	valid := 0
	for _, entry := range c.entries {
		if entry.isFresh(now) {
			valid++
		}
	}

	total := len(c.entries)
	return CacheStats{
		Total: total,
		Valid: valid,
		Stale: total - valid,
		Size:  total,
	}
}

// Len 返回缓存项数量
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Entries 返回按 key 排序的缓存项快照
func (c *Cache[T]) Entries() []EntryInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	out := make([]EntryInfo, 0, len(c.entries))
	for key, entry := range c.entries {
		out = append(out, EntryInfo{
			Key:       key,
			FetchedAt: entry.fetchedAt,
			TTL:       entry.ttl,
			Fresh:     entry.isFresh(now),
		})
	}

	slices.SortFunc(out, func(a, b EntryInfo) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}
