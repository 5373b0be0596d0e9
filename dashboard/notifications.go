package dashboard

import (
	"context"
	"fmt"

	"github.com/ShinyNito/jobdash/core"
)

// Notifications 获取通知菜单内容
func (c *Client) Notifications(ctx context.Context, location string) ([]Notification, error) {
	location, err := normalizeLocation(location)
	if err != nil {
		return nil, fmt.Errorf("invalid notifications query: %w", err)
	}
	var query map[string]string
	if location != "" {
		query = map[string]string{"location": location}
	}
	return cachedGet[[]Notification](ctx, c, NotificationsKey(location), c.cfg.TTLs.Notifications, "/notifications", query)
}

// MarkNotificationRead 标记通知已读，并失效通知缓存
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}

	resp, err := c.api.Request().Path(fmt.Sprintf("/notifications/%d/read", id)).Post(ctx)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if _, err := core.Decode[struct{}](resp.StatusCode, resp.Body); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	c.cache.InvalidatePattern(kindNotifications + ":")
	return nil
}
