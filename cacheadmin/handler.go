package cacheadmin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
)

type server struct {
	store  Store
	logger *slog.Logger
}

// NewHandler 返回挂载路径与处理器，用法: mux.Handle(cacheadmin.NewHandler(cache, logger))
func NewHandler(store Store, logger *slog.Logger, opts ...connect.HandlerOption) (string, http.Handler) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{store: store, logger: logger}

	opts = append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(unaryLogging(logger)),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(StatsProcedure, connect.NewUnaryHandler(StatsProcedure, s.Stats, opts...))
	mux.Handle(ListEntriesProcedure, connect.NewUnaryHandler(ListEntriesProcedure, s.ListEntries, opts...))
	mux.Handle(InvalidateProcedure, connect.NewUnaryHandler(InvalidateProcedure, s.Invalidate, opts...))
	mux.Handle(InvalidatePatternProcedure, connect.NewUnaryHandler(InvalidatePatternProcedure, s.InvalidatePattern, opts...))
	mux.Handle(ClearProcedure, connect.NewUnaryHandler(ClearProcedure, s.Clear, opts...))

	return "/" + ServiceName + "/", mux
}

func (s *server) Stats(
	ctx context.Context,
	_ *connect.Request[StatsRequest],
) (*connect.Response[StatsResponse], error) {
	return connect.NewResponse(&StatsResponse{Stats: s.store.Stats()}), nil
}

func (s *server) ListEntries(
	ctx context.Context,
	_ *connect.Request[ListEntriesRequest],
) (*connect.Response[ListEntriesResponse], error) {
	return connect.NewResponse(&ListEntriesResponse{Entries: s.store.Entries()}), nil
}

func (s *server) Invalidate(
	ctx context.Context,
	req *connect.Request[InvalidateRequest],
) (*connect.Response[InvalidateResponse], error) {
	key := req.Msg.Key
	if key == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("key required"))
	}

	s.store.Invalidate(key)
	s.logger.InfoContext(ctx, "cache key invalidated", slog.String("key", key))
	return connect.NewResponse(&InvalidateResponse{}), nil
}

func (s *server) InvalidatePattern(
	ctx context.Context,
	req *connect.Request[InvalidatePatternRequest],
) (*connect.Response[InvalidatePatternResponse], error) {
	pattern := req.Msg.Pattern
	if pattern == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("pattern required"))
	}

	removed := s.store.InvalidatePattern(pattern)
	s.logger.InfoContext(ctx, "cache pattern invalidated", slog.String("pattern", pattern), slog.Int("removed", removed))
	return connect.NewResponse(&InvalidatePatternResponse{Removed: removed}), nil
}

func (s *server) Clear(
	ctx context.Context,
	_ *connect.Request[ClearRequest],
) (*connect.Response[ClearResponse], error) {
	removed := s.store.Clear()
	s.logger.InfoContext(ctx, "cache cleared", slog.Int("removed", removed))
	return connect.NewResponse(&ClearResponse{Removed: removed}), nil
}
