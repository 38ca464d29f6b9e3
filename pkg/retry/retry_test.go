package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimer fires immediately and records the requested delays, so retry
// behavior is testable without real sleeps.
type fakeTimer struct {
	ch     chan time.Time
	delays []time.Duration
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{ch: make(chan time.Time, 1)}
}

func (f *fakeTimer) Start(d time.Duration) {
	f.delays = append(f.delays, d)
	f.ch <- time.Now()
}

func (f *fakeTimer) Stop() {}

func (f *fakeTimer) C() <-chan time.Time { return f.ch }

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	timer := newFakeTimer()
	p := Policy{Attempts: 5, Delay: 250 * time.Millisecond, Timer: timer}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	// Fixed backoff: every pause is the configured delay.
	require.Len(t, timer.delays, 2)
	for _, d := range timer.delays {
		assert.Equal(t, 250*time.Millisecond, d)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	timer := newFakeTimer()
	p := Policy{Attempts: 3, Delay: time.Millisecond, Timer: timer}

	wantErr := errors.New("still down")
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestDoPermanentStopsEarly(t *testing.T) {
	timer := newFakeTimer()
	p := Policy{Attempts: 5, Delay: time.Millisecond, Timer: timer}

	wantErr := errors.New("bad input")
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return Permanent(wantErr)
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{Attempts: 5, Delay: time.Hour, Timer: newFakeTimer()}

	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		return errors.New("down")
	})

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestDoNotify(t *testing.T) {
	timer := newFakeTimer()

	var notified int
	p := Policy{
		Attempts: 2,
		Delay:    time.Millisecond,
		Timer:    timer,
		Notify:   func(err error, next time.Duration) { notified++ },
	}

	calls := 0
	_ = p.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})

	assert.Equal(t, 1, notified)
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	p := Policy{Timer: newFakeTimer()}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
