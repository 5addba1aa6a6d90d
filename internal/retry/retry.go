// Package retry applies the tracker retry policy: transient failures
// (rate-limited, network) retry with exponential backoff, honoring a
// server-supplied retry-after hint; every other failure class returns
// immediately.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

const (
	maxRetries      = 4
	initialInterval = time.Second
	maxInterval     = 30 * time.Second
)

// Do runs op, retrying retryable tracker errors up to four times with
// delays doubling from one second, capped at thirty seconds. A
// rate-limit response carrying a retry-after hint overrides the
// computed delay for that attempt.
func Do(ctx context.Context, op func() error) error {
	var last *model.TrackerError

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		var te *model.TrackerError
		if errors.As(err, &te) && te.Retryable() {
			last = te
			return err
		}
		return backoff.Permanent(err)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialInterval
	exp.MaxInterval = maxInterval
	exp.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	bo := backoff.WithContext(
		backoff.WithMaxRetries(&hintedBackOff{base: exp, last: &last}, maxRetries),
		ctx,
	)
	return backoff.Retry(wrapped, bo)
}

// hintedBackOff defers to the exponential schedule unless the last
// failure carried a retry-after hint.
type hintedBackOff struct {
	base backoff.BackOff
	last **model.TrackerError
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	next := b.base.NextBackOff()
	if te := *b.last; te != nil && te.RetryAfter > 0 {
		return te.RetryAfter
	}
	return next
}

func (b *hintedBackOff) Reset() { b.base.Reset() }
