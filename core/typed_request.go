package core

import (
	"context"
)

type TypedRequest[T any] struct {
	builder *RequestBuilder
}

func NewTypedRequest[T any](client *Client) *TypedRequest[T] {
	return &TypedRequest[T]{builder: newRequestBuilder(client)}
}

func (r *TypedRequest[T]) Path(path string) *TypedRequest[T] {
	r.builder.Path(path)
	return r
}

func (r *TypedRequest[T]) Query(key, value string) *TypedRequest[T] {
	r.builder.Query(key, value)
	return r
}

func (r *TypedRequest[T]) QueryMap(query map[string]string) *TypedRequest[T] {
	r.builder.QueryMap(query)
	return r
}

func (r *TypedRequest[T]) Body(body any) *TypedRequest[T] {
	r.builder.Body(body)
	return r
}

func (r *TypedRequest[T]) Get(ctx context.Context) (T, error) {
	return decodeResponse[T](r.builder.Get(ctx))
}

func (r *TypedRequest[T]) Post(ctx context.Context) (T, error) {
	return decodeResponse[T](r.builder.Post(ctx))
}

func (r *TypedRequest[T]) Patch(ctx context.Context) (T, error) {
	return decodeResponse[T](r.builder.Patch(ctx))
}

func decodeResponse[T any](resp *Response, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp.StatusCode, resp.Body)
}
