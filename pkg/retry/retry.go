// Package retry bounds transient-failure handling around store merges.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy retries an operation with a fixed delay and a bounded attempt
// count. The zero value is not usable; start from Default.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration

	// Notify, when set, observes each failed attempt and the pause before
	// the next one.
	Notify backoff.Notify

	// Timer substitutes the wait mechanism. Tests inject one to avoid
	// real sleeps; nil means wall-clock waiting.
	Timer backoff.Timer
}

// Default matches the merge contract: a handful of attempts with a fixed
// short pause, surfacing failure only after exhaustion.
var Default = Policy{Attempts: 5, Delay: 2 * time.Second}

// Permanent marks err as non-retryable; Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, the attempts are exhausted, or ctx is done.
// The returned error is the last one op produced.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(attempts-1)),
		ctx,
	)

	return backoff.RetryNotifyWithTimer(op, b, p.Notify, p.Timer)
}
