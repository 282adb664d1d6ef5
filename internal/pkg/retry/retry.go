// Package retry runs idempotent or conditional operations with bounded
// exponential backoff. Only errors accepted by the retryable predicate are
// retried; everything else is returned on the first attempt.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy retries three times starting at 50ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// NoWait retries immediately; meant for tests.
func NoWait(maxRetries uint64) Policy {
	return Policy{MaxRetries: maxRetries}
}

// Do calls op until it succeeds, returns a non-retryable error, the retry
// budget is spent or ctx is done.
func Do(ctx context.Context, p Policy, retryable func(error) bool, op func() error) error {
	var b backoff.BackOff
	if p.InitialInterval <= 0 {
		b = &backoff.ZeroBackOff{}
	} else {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = p.InitialInterval
		exp.MaxInterval = p.MaxInterval
		exp.MaxElapsedTime = 0
		b = exp
	}
	b = backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if retryable == nil || !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}
