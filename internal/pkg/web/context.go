package web

import (
	"context"
	"errors"
	"fmt"
)

type paramsKey struct{}

// ErrNoParams is returned when the request context holds no decoded payload of the wanted type.
var ErrNoParams = errors.New("request params not in context")

// NewContextWithParams stores the decoded request payload for the handler.
func NewContextWithParams(ctx context.Context, params any) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// ParamsFromContext returns the payload stored by the DecodePayload middleware.
//
//nolint:ireturn //T is the concrete payload type of the route.
func ParamsFromContext[T any](ctx context.Context) (T, error) {
	params, ok := ctx.Value(paramsKey{}).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %T", ErrNoParams, zero)
	}
	return params, nil
}
