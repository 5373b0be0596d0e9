package dashboard

import (
	"context"
	"fmt"
)

// ListContacts 分页获取联系人
func (c *Client) ListContacts(ctx context.Context, q PageQuery) (Page[Contact], error) {
	q, err := normalizePageQuery(q)
	if err != nil {
		return Page[Contact]{}, fmt.Errorf("invalid contacts query: %w", err)
	}
	return cachedGet[Page[Contact]](ctx, c, ContactsKey(q), c.cfg.TTLs.Contacts, "/contacts", pageParams(q))
}
