package cacheadmin

import "github.com/ShinyNito/jobdash/core"

const ServiceName = "jobdash.cacheadmin.v1.CacheAdminService"

const (
	StatsProcedure             = "/" + ServiceName + "/Stats"
	ListEntriesProcedure       = "/" + ServiceName + "/ListEntries"
	InvalidateProcedure        = "/" + ServiceName + "/Invalidate"
	InvalidatePatternProcedure = "/" + ServiceName + "/InvalidatePattern"
	ClearProcedure             = "/" + ServiceName + "/Clear"
)

// Store 管理接口所需的缓存能力，*core.Cache[T] 满足该接口
type Store interface {
	Stats() core.CacheStats
	Entries() []core.EntryInfo
	Invalidate(key string)
	InvalidatePattern(substr string) int
	Clear() int
}

type StatsRequest struct{}

type StatsResponse struct {
	Stats core.CacheStats `json:"stats"`
}

type ListEntriesRequest struct{}

type ListEntriesResponse struct {
	Entries []core.EntryInfo `json:"entries"`
}

type InvalidateRequest struct {
	Key string `json:"key"`
}

type InvalidateResponse struct{}

type InvalidatePatternRequest struct {
	Pattern string `json:"pattern"`
}

type InvalidatePatternResponse struct {
	Removed int `json:"removed"`
}

type ClearRequest struct{}

type ClearResponse struct {
	Removed int `json:"removed"`
}

var _ Store = (*core.Cache[[]byte])(nil)
