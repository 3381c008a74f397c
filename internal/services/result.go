package services

import (
	"context"

	"go.uber.org/zap"

	"handyhub/pkg/logger"
)

// Result carries a listing together with the error that produced it. Read
// paths that must never fail the caller resolve it with OrEmpty.
type Result[T any] struct {
	Items []T
	Err   error
}

func Ok[T any](items []T) Result[T] {
	return Result[T]{Items: items}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// OrEmpty returns the items, or an empty slice once the failure is logged.
func (r Result[T]) OrEmpty(ctx context.Context, log *logger.Logger, op string) []T {
	if r.Err != nil {
		log.Ctx(ctx).Error(op+" failed, answering with an empty list", zap.Error(r.Err))
		return []T{}
	}
	if r.Items == nil {
		return []T{}
	}
	return r.Items
}
