package dashboard

import "fmt"

// Resource 可被失效的资源类型
type Resource string

const (
	ResourceJobs          Resource = "jobs"
	ResourceSummary       Resource = "summary"
	ResourceContacts      Resource = "contacts"
	ResourceNotifications Resource = "notifications"
)

var resourcePatterns = map[Resource][]string{
	ResourceJobs:          {kindJobs + ":", kindJob + ":", kindSummary},
	ResourceSummary:       {kindSummary},
	ResourceContacts:      {kindContacts + ":"},
	ResourceNotifications: {kindNotifications + ":"},
}

// InvalidateResource 失效某类资源的全部缓存，返回删除数量
// jobs 会连带失效汇总指标。
func (c *Client) InvalidateResource(resource Resource) (int, error) {
	patterns, ok := resourcePatterns[resource]
	if !ok {
		return 0, fmt.Errorf("%w: unknown resource %q", ErrInvalidArgument, resource)
	}

	removed := 0
	for _, p := range patterns {
		removed += c.cache.InvalidatePattern(p)
	}
	return removed, nil
}
