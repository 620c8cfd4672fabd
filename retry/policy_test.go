// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	t.Run("exhausted", testWithRetryExhausted)
	t.Run("success after retries", testWithRetrySuccessAfterRetries)
	t.Run("non-triggering error", testWithRetryNonTriggering)
	t.Run("rejected result", testWithRetryRejectedResult)
	t.Run("attempt context", testWithRetryAttemptContext)
	t.Run("delay by attempt", testWithRetryDelayByAttempt)
	t.Run("cancel during wait", testWithRetryCancelDuringWait)
	t.Run("zero attempts", testWithRetryZeroAttempts)
	t.Run("bad args", testWithRetryBadArgs)
}

func testWithRetryExhausted(t *testing.T) {
	throttled := errors.New("throttled")
	calls := 0
	var last error
	inv := WithRetry(func(_ context.Context) (interface{}, error) {
		calls++
		last = &wrapped{n: calls, err: throttled}
		return nil, last
	}, 3, NewFixedWaiter(0), OnError(throttled))

	v, err := inv(context.Background())

	assert.Nil(t, v)
	assert.Equal(t, 4, calls)
	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Same(t, last, exhausted.Cause)
	assert.True(t, errors.Is(err, throttled))
	assert.Equal(t, "actionx/retry: gave up after 4 attempts: attempt 4: throttled", err.Error())
}

func testWithRetrySuccessAfterRetries(t *testing.T) {
	calls := 0
	inv := WithRetry(func(_ context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, syscall.ECONNRESET
		}
		return "ok", nil
	}, 5, NewFixedWaiter(time.Millisecond), nil)

	v, err := inv(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func testWithRetryNonTriggering(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	inv := WithRetry(func(_ context.Context) (interface{}, error) {
		calls++
		return nil, permanent
	}, 5, NewFixedWaiter(0), nil)

	_, err := inv(context.Background())

	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func testWithRetryRejectedResult(t *testing.T) {
	calls := 0
	inv := WithRetry(func(_ context.Context) (interface{}, error) {
		calls++
		return "pending", nil
	}, 2, NewFixedWaiter(0), OnResult(func(v interface{}) bool { return v == "pending" }))

	v, err := inv(context.Background())

	assert.Nil(t, v)
	assert.Equal(t, 3, calls)
	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Same(t, ErrResultRejected, exhausted.Cause)
	assert.Equal(t, "pending", exhausted.Value)
}

func testWithRetryAttemptContext(t *testing.T) {
	var seen []Attempt
	inv := WithRetry(func(ctx context.Context) (interface{}, error) {
		seen = append(seen, AttemptFrom(ctx))
		if len(seen) == 1 {
			return nil, context.DeadlineExceeded
		}
		if len(seen) == 2 {
			return nil, syscall.ECONNRESET
		}
		return 1, nil
	}, 5, NewFixedWaiter(0), nil)

	_, err := inv(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Attempt{{0, 0, false}, {1, 1, true}, {2, 1, false}}, seen)
	assert.Equal(t, Attempt{}, AttemptFrom(context.Background()))
}

func testWithRetryDelayByAttempt(t *testing.T) {
	var attempts []int
	var waits []time.Duration
	w := WaiterFunc(func(attempt int) time.Duration {
		attempts = append(attempts, attempt)
		return time.Duration(attempt) * time.Millisecond
	})
	c := &Config{
		MaxAttempts: 3,
		Policy:      NewPolicy(TransientErr, w),
		OnRetry: func(o *Outcome, wait time.Duration) {
			waits = append(waits, wait)
		},
	}
	inv := c.Wrap(func(_ context.Context) (interface{}, error) {
		return nil, syscall.ECONNREFUSED
	})

	_, err := inv(context.Background())

	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, []int{0, 1, 2}, attempts)
	assert.Equal(t, []time.Duration{0, time.Millisecond, 2 * time.Millisecond}, waits)
}

func testWithRetryCancelDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	inv := WithRetry(func(_ context.Context) (interface{}, error) {
		calls++
		cancel()
		return nil, syscall.ECONNRESET
	}, 3, NewFixedWaiter(time.Hour), nil)

	start := time.Now()
	_, err := inv(ctx)

	assert.Less(t, time.Since(start), time.Minute)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, syscall.ECONNRESET), "last cause is kept")
}

func testWithRetryZeroAttempts(t *testing.T) {
	calls := 0
	inv := WithRetry(func(_ context.Context) (interface{}, error) {
		calls++
		return nil, syscall.ECONNRESET
	}, 0, nil, nil)

	_, err := inv(context.Background())

	assert.Equal(t, 1, calls)
	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 1, exhausted.Attempts)
}

func testWithRetryBadArgs(t *testing.T) {
	assert.PanicsWithValue(t, "actionx/retry: nil invocation", func() { WithRetry(nil, 1, nil, nil) })
	assert.PanicsWithValue(t, "actionx/retry: maxAttempts may not be negative", func() {
		WithRetry(func(_ context.Context) (interface{}, error) { return nil, nil }, -1, nil, nil)
	})
}

func TestNewPolicy(t *testing.T) {
	p := &testPolicy{}
	t.Run("Bad Args", func(t *testing.T) {
		assert.PanicsWithValue(t, "actionx/retry: nil decider", func() { NewPolicy(nil, p) })
		assert.PanicsWithValue(t, "actionx/retry: nil waiter", func() { NewPolicy(p, nil) })
	})
	t.Run("Normal", func(t *testing.T) {
		P := NewPolicy(p, p)
		assert.True(t, P.Decide(&Outcome{}))
		assert.Equal(t, 1, p.d)
		assert.Equal(t, time.Second, P.Wait(0))
		assert.Equal(t, 1, p.w)
	})
}

func TestNever(t *testing.T) {
	assert.False(t, Never.Decide(&Outcome{Err: syscall.ECONNRESET}))
}

type testPolicy struct {
	d int
	w int
}

func (p *testPolicy) Decide(_ *Outcome) bool {
	p.d++
	return true
}

func (p *testPolicy) Wait(_ int) time.Duration {
	p.w++
	return time.Second
}

type wrapped struct {
	n   int
	err error
}

func (w *wrapped) Error() string {
	return "attempt " + string(rune('0'+w.n)) + ": " + w.err.Error()
}

func (w *wrapped) Unwrap() error {
	return w.err
}
