package cacheadmin

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

func unaryLogging(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(
			ctx context.Context,
			req connect.AnyRequest,
		) (connect.AnyResponse, error) {
			start := time.Now()

			res, err := next(ctx, req)
			level := slog.LevelInfo
			attrs := []any{
				"procedure", req.Spec().Procedure,
				"lat_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				level = slog.LevelError
				attrs = append(attrs, "code", connect.CodeOf(err).String())
			}

			logger.Log(ctx, level, "rpc", attrs...)
			return res, err
		}
	}
}
