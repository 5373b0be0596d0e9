package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ShinyNito/jobdash/core"
)

type adminClient interface {
	Stats(ctx context.Context) (core.CacheStats, error)
	ListEntries(ctx context.Context) ([]core.EntryInfo, error)
	Invalidate(ctx context.Context, key string) error
	InvalidatePattern(ctx context.Context, pattern string) (int, error)
	Clear(ctx context.Context) (int, error)
}

type Handler struct {
	client adminClient
	out    io.Writer
	err    io.Writer
}

func (h *Handler) Stats() error {
	stats, err := h.client.Stats(context.Background())
	if err != nil {
		fmt.Fprintln(h.err, "Stats error:", err)
		return err
	}

	fmt.Fprintf(h.out, "total=%d valid=%d stale=%d size=%d\n", stats.Total, stats.Valid, stats.Stale, stats.Size)
	return nil
}

func (h *Handler) List() error {
	ents, err := h.client.ListEntries(context.Background())
	if err != nil {
		fmt.Fprintln(h.err, "List error:", err)
		return err
	}

	tw := tabwriter.NewWriter(h.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tFETCHED\tTTL\tSTATE")

	for _, e := range ents {
		state := "stale"
		if e.Fresh {
			state = "fresh"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.FetchedAt.Format(time.RFC3339), e.TTL, state)
	}

	return tw.Flush()
}

func (h *Handler) Invalidate(key string) error {
	if err := h.client.Invalidate(context.Background(), key); err != nil {
		fmt.Fprintln(h.err, "Invalidate error:", err)
		return err
	}

	fmt.Fprintf(h.out, "OK invalidated key=%q\n", key)
	return nil
}

func (h *Handler) InvalidatePattern(pattern string) error {
	removed, err := h.client.InvalidatePattern(context.Background(), pattern)
	if err != nil {
		fmt.Fprintln(h.err, "Invalidate error:", err)
		return err
	}

	fmt.Fprintf(h.out, "OK removed %d entries matching %q\n", removed, pattern)
	return nil
}

func (h *Handler) Clear() error {
	removed, err := h.client.Clear(context.Background())
	if err != nil {
		fmt.Fprintln(h.err, "Clear error:", err)
		return err
	}

	fmt.Fprintf(h.out, "OK cleared %d entries\n", removed)
	return nil
}
