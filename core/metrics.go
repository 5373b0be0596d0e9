package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics 缓存事件回调
type CacheMetrics interface {
	// Hit 命中新鲜缓存项
	Hit()
	// Miss 未命中或已过期，需要调用 fetcher
	Miss()
	// StaleServed fetch 失败，返回了旧值
	StaleServed()
	// FetchError fetch 失败且没有旧值
	FetchError()
}

type noopCacheMetrics struct{}

func (noopCacheMetrics) Hit()         {}
func (noopCacheMetrics) Miss()        {}
func (noopCacheMetrics) StaleServed() {}
func (noopCacheMetrics) FetchError()  {}

// PrometheusCacheMetrics 基于 Prometheus 计数器的 CacheMetrics 实现
type PrometheusCacheMetrics struct {
	Hits        prometheus.Counter
	Misses      prometheus.Counter
	StaleServes prometheus.Counter
	FetchErrors prometheus.Counter
}

// NewPrometheusCacheMetrics 在 reg 上注册缓存计数器
func NewPrometheusCacheMetrics(reg prometheus.Registerer, namespace string) *PrometheusCacheMetrics {
	factory := promauto.With(reg)
	return &PrometheusCacheMetrics{
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Number of reads answered by a fresh cache entry",
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Number of reads that invoked the fetcher",
		}),
		StaleServes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "stale_served_total",
			Help:      "Number of failed fetches answered by a previously cached entry",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "fetch_errors_total",
			Help:      "Number of failed fetches with no cached entry to fall back on",
		}),
	}
}

func (m *PrometheusCacheMetrics) Hit()         { m.Hits.Inc() }
func (m *PrometheusCacheMetrics) Miss()        { m.Misses.Inc() }
func (m *PrometheusCacheMetrics) StaleServed() { m.StaleServes.Inc() }
func (m *PrometheusCacheMetrics) FetchError()  { m.FetchErrors.Inc() }

// StatsSource 提供缓存统计
type StatsSource interface {
	Stats() CacheStats
}

// CacheCollector 在采集时按 Stats() 导出新鲜/过期缓存项数量
type CacheCollector struct {
	source  StatsSource
	entries *prometheus.Desc
}

// NewCacheCollector 创建 collector，需由调用方注册
func NewCacheCollector(source StatsSource, namespace string) *CacheCollector {
	return &CacheCollector{
		source: source,
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "entries"),
			"Number of cache entries by freshness",
			[]string{"state"}, nil,
		),
	}
}

// Describe 实现 prometheus.Collector
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
}

// Collect 实现 prometheus.Collector
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(stats.Valid), "fresh")
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(stats.Stale), "stale")
}

var (
	_ CacheMetrics         = (*PrometheusCacheMetrics)(nil)
	_ prometheus.Collector = (*CacheCollector)(nil)
)
