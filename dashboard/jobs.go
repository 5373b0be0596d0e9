package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ShinyNito/jobdash/core"
)

// ListJobs 分页获取工单列表
// 缓存键: jobs:<page>:<pageSize>:<location>
func (c *Client) ListJobs(ctx context.Context, q PageQuery) (Page[Job], error) {
	q, err := normalizePageQuery(q)
	if err != nil {
		return Page[Job]{}, fmt.Errorf("invalid jobs query: %w", err)
	}
	return cachedGet[Page[Job]](ctx, c, JobsKey(q), c.cfg.TTLs.Jobs, "/jobs", pageParams(q))
}

// GetJob 获取单个工单
func (c *Client) GetJob(ctx context.Context, id int64) (Job, error) {
	if err := validateID(id); err != nil {
		return Job{}, fmt.Errorf("invalid job id: %w", err)
	}
	return cachedGet[Job](ctx, c, JobKey(id), c.cfg.TTLs.Jobs, fmt.Sprintf("/jobs/%d", id), nil)
}

// UpdateJobStatus 更新工单状态
// 成功后失效所有工单列表与汇总缓存，并用返回的工单预热 job:<id>。
func (c *Client) UpdateJobStatus(ctx context.Context, id int64, status JobStatus) (Job, error) {
	if err := validateID(id); err != nil {
		return Job{}, fmt.Errorf("invalid job id: %w", err)
	}
	if !status.Valid() {
		return Job{}, fmt.Errorf("%w: job status %q", ErrInvalidArgument, status)
	}

	job, err := core.NewTypedRequest[Job](c.api).
		Path(fmt.Sprintf("/jobs/%d", id)).
		Body(map[string]JobStatus{"status": status}).
		Patch(ctx)
	if err != nil {
		return Job{}, fmt.Errorf("update job status: %w", err)
	}

	removed := c.cache.InvalidatePattern(kindJobs+":") + c.cache.InvalidatePattern(kindSummary)
	c.logger.DebugContext(ctx, "job updated, cache invalidated",
		slog.Int64("job_id", id),
		slog.String("status", string(status)),
		slog.Int("removed", removed),
	)
	c.preloadJSON(ctx, JobKey(id), job, c.cfg.TTLs.Jobs)

	return job, nil
}
