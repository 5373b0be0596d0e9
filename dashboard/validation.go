package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

const maxPageSize = 100

// ErrInvalidArgument 查询参数不合法，请求不会发出也不会触碰缓存
var ErrInvalidArgument = errors.New("invalid argument")

// Validate 校验仪表盘配置。
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("base url is required")
	}
	return nil
}

func validatePageQuery(q PageQuery) error {
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidArgument, q.Page)
	}
	if q.PageSize < 1 || q.PageSize > maxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d, got %d", ErrInvalidArgument, maxPageSize, q.PageSize)
	}
	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidArgument, id)
	}
	return nil
}

// normalizeLocation 去掉首尾空白，并拒绝会与缓存键分隔符或通配段冲突的值。
// 调用方用返回值同时构造缓存键和上游查询。
func normalizeLocation(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == allLocations || strings.Contains(location, ":") {
		return "", fmt.Errorf("%w: location %q", ErrInvalidArgument, location)
	}
	return location, nil
}

func normalizePageQuery(q PageQuery) (PageQuery, error) {
	if err := validatePageQuery(q); err != nil {
		return PageQuery{}, err
	}
	location, err := normalizeLocation(q.Location)
	if err != nil {
		return PageQuery{}, err
	}
	q.Location = location
	return q, nil
}
