package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/monitoring"
)

// timeoutRetries is how many extra attempts a timed-out call gets.
const timeoutRetries = 1

var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}

// withRetry runs fn and repeats it after a short backoff when it fails with
// a Timeout. Any other error ends the call immediately. Only reads and
// writes that are safe to repeat may go through here.
func withRetry[T any](ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		if attempt > 0 {
			monitoring.StoreRetries.WithLabelValues(op).Inc()
		}
		attempt++
		v, err := fn(ctx)
		if err != nil && !errors.Is(err, apperr.ErrTimeout) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(newBackOff()), backoff.WithMaxTries(1+timeoutRetries))
}
