package dashboard

import (
	"context"
	"fmt"
)

// Summary 获取仪表盘汇总指标
// 缓存键: dashboard:summary:<period>:<location>
func (c *Client) Summary(ctx context.Context, period Period, location string) (Summary, error) {
	if !period.Valid() {
		return Summary{}, fmt.Errorf("%w: summary period %q", ErrInvalidArgument, period)
	}
	location, err := normalizeLocation(location)
	if err != nil {
		return Summary{}, fmt.Errorf("invalid summary query: %w", err)
	}

	query := map[string]string{"period": string(period)}
	if location != "" {
		query["location"] = location
	}
	return cachedGet[Summary](ctx, c, SummaryKey(period, location), c.cfg.TTLs.Summary, "/dashboard/summary", query)
}
