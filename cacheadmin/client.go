package cacheadmin

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/ShinyNito/jobdash/core"
)

// Client 缓存管理 RPC 客户端
type Client struct {
	stats             *connect.Client[StatsRequest, StatsResponse]
	listEntries       *connect.Client[ListEntriesRequest, ListEntriesResponse]
	invalidate        *connect.Client[InvalidateRequest, InvalidateResponse]
	invalidatePattern *connect.Client[InvalidatePatternRequest, InvalidatePatternResponse]
	clear             *connect.Client[ClearRequest, ClearResponse]
}

// NewClient 创建客户端，baseURL 如 http://localhost:8080
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &Client{
		stats:             connect.NewClient[StatsRequest, StatsResponse](httpClient, baseURL+StatsProcedure, opts...),
		listEntries:       connect.NewClient[ListEntriesRequest, ListEntriesResponse](httpClient, baseURL+ListEntriesProcedure, opts...),
		invalidate:        connect.NewClient[InvalidateRequest, InvalidateResponse](httpClient, baseURL+InvalidateProcedure, opts...),
		invalidatePattern: connect.NewClient[InvalidatePatternRequest, InvalidatePatternResponse](httpClient, baseURL+InvalidatePatternProcedure, opts...),
		clear:             connect.NewClient[ClearRequest, ClearResponse](httpClient, baseURL+ClearProcedure, opts...),
	}
}

func (c *Client) Stats(ctx context.Context) (core.CacheStats, error) {
	res, err := c.stats.CallUnary(ctx, connect.NewRequest(&StatsRequest{}))
	if err != nil {
		return core.CacheStats{}, err
	}
	return res.Msg.Stats, nil
}

func (c *Client) ListEntries(ctx context.Context) ([]core.EntryInfo, error) {
	res, err := c.listEntries.CallUnary(ctx, connect.NewRequest(&ListEntriesRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg.Entries, nil
}

func (c *Client) Invalidate(ctx context.Context, key string) error {
	_, err := c.invalidate.CallUnary(ctx, connect.NewRequest(&InvalidateRequest{Key: key}))
	return err
}

func (c *Client) InvalidatePattern(ctx context.Context, pattern string) (int, error) {
	res, err := c.invalidatePattern.CallUnary(ctx, connect.NewRequest(&InvalidatePatternRequest{Pattern: pattern}))
	if err != nil {
		return 0, err
	}
	return res.Msg.Removed, nil
}

func (c *Client) Clear(ctx context.Context) (int, error) {
	res, err := c.clear.CallUnary(ctx, connect.NewRequest(&ClearRequest{}))
	if err != nil {
		return 0, err
	}
	return res.Msg.Removed, nil
}
