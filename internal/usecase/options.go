package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// Options carries the optional collaborators of the write and read use cases.
// Nil fields fall back to running inline without the concern.
type Options struct {
	Retrier Retrier
	Locker  Locker
	Cache   BalanceCache
	Metrics *metrics.Metrics
	Logger  *zerolog.Logger
}

func (o Options) retrier() Retrier {
	if o.Retrier == nil {
		return onceRetrier{}
	}
	return o.Retrier
}

func (o Options) locker() Locker {
	if o.Locker == nil {
		return inlineLocker{}
	}
	return o.Locker
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type inlineLocker struct{}

func (inlineLocker) WithLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}
