// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogama/actionx/transient"
)

// An Invocation is one complete invocation of an operation. Each call
// must start from scratch; WithRetry never resumes a partially
// completed invocation.
type Invocation func(ctx context.Context) (interface{}, error)

// An Outcome describes how one attempt ended. Exactly one of Value and
// Err is meaningful: if Err is nil the attempt produced Value.
type Outcome struct {
	// Attempt is the zero-based number of the attempt.
	Attempt int
	// Value is the result of a successful attempt.
	Value interface{}
	// Err is the error of a failed attempt.
	Err error
	// Elapsed is the time since the first attempt started.
	Elapsed time.Duration
}

// ErrResultRejected is the cause of an ExhaustedError when the last
// attempt succeeded but its result was itself retry-triggering.
var ErrResultRejected = errors.New("actionx/retry: result rejected by retry condition")

// An ExhaustedError is returned by a decorated invocation when every
// permitted attempt ended in a retry-triggering outcome.
type ExhaustedError struct {
	// Attempts is the total number of attempts made.
	Attempts int
	// Cause is the error of the last attempt, or ErrResultRejected if
	// the last attempt produced a rejected result.
	Cause error
	// Value is the rejected result of the last attempt, if any.
	Value interface{}
}

func (err *ExhaustedError) Error() string {
	return fmt.Sprintf("actionx/retry: gave up after %d attempts: %v", err.Attempts, err.Cause)
}

// Unwrap returns the cause.
func (err *ExhaustedError) Unwrap() error {
	return err.Cause
}

// A Policy composes a Decider and a Waiter.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// use cases. It is a composition of DefaultDecider for retry decisions
// and DefaultWaiter for wait time calculations.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

// Never is a policy whose decider never triggers a retry.
var Never Policy = policy{DeciderFunc(func(_ *Outcome) bool { return false }), DefaultWaiter}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("actionx/retry: nil decider")
	}
	if w == nil {
		panic("actionx/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(o *Outcome) bool {
	return p.decider.Decide(o)
}

func (p policy) Wait(attempt int) time.Duration {
	return p.waiter.Wait(attempt)
}

// Config is a declared retry behavior of an operation.
type Config struct {
	// MaxAttempts is the maximum number of retries after the initial
	// attempt.
	MaxAttempts int
	// Policy decides which outcomes trigger a retry and how long to
	// wait before it. If nil, DefaultPolicy is used.
	Policy Policy
	// OnRetry, if not nil, is called after every retry-triggering
	// outcome, just before the wait preceding the retry.
	OnRetry func(o *Outcome, wait time.Duration)
}

// Wrap decorates inv according to the configuration.
func (c *Config) Wrap(inv Invocation) Invocation {
	p := c.Policy
	if p == nil {
		p = DefaultPolicy
	}
	return withRetry(inv, c.MaxAttempts, p, p, c.OnRetry)
}

// WithRetry decorates inv with retries. The decorated invocation calls
// inv once, and again after each outcome for which d returns true, up
// to maxAttempts more times. Before each retry it waits for the
// duration returned by w for the attempt just made, or until ctx is
// done.
//
// If w is nil, DefaultWaiter is used. If d is nil, DefaultDecider is
// used.
func WithRetry(inv Invocation, maxAttempts int, w Waiter, d Decider) Invocation {
	if w == nil {
		w = DefaultWaiter
	}
	if d == nil {
		d = DefaultDecider
	}
	return withRetry(inv, maxAttempts, w, d, nil)
}

func withRetry(inv Invocation, maxAttempts int, w Waiter, d Decider, onRetry func(*Outcome, time.Duration)) Invocation {
	if inv == nil {
		panic("actionx/retry: nil invocation")
	}
	if maxAttempts < 0 {
		panic("actionx/retry: maxAttempts may not be negative")
	}
	return func(ctx context.Context) (interface{}, error) {
		start := time.Now()
		a := Attempt{}
		for attempt := 0; ; attempt++ {
			a.Index = attempt
			v, err := inv(WithAttempt(ctx, a))
			o := &Outcome{Attempt: attempt, Value: v, Err: err, Elapsed: time.Since(start)}
			if !d.Decide(o) {
				return v, err
			}
			if attempt >= maxAttempts {
				if err == nil {
					return nil, &ExhaustedError{Attempts: attempt + 1, Cause: ErrResultRejected, Value: v}
				}
				return nil, &ExhaustedError{Attempts: attempt + 1, Cause: err}
			}
			a.LastTimedOut = transient.Categorize(err) == transient.Timeout
			if a.LastTimedOut {
				a.Timeouts++
			}
			wait := w.Wait(attempt)
			if onRetry != nil {
				onRetry(o, wait)
			}
			if werr := sleep(ctx, wait); werr != nil {
				if err == nil {
					err = ErrResultRejected
				}
				return nil, fmt.Errorf("actionx/retry: %w while waiting to retry after: %w", werr, err)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// An Attempt identifies the attempt an invocation is running as.
type Attempt struct {
	// Index is the zero-based attempt number.
	Index int
	// Timeouts is the number of earlier attempts which timed out.
	Timeouts int
	// LastTimedOut is true if the immediately preceding attempt timed
	// out.
	LastTimedOut bool
}

type attemptKey struct{}

// WithAttempt returns a copy of ctx carrying a.
func WithAttempt(ctx context.Context, a Attempt) context.Context {
	return context.WithValue(ctx, attemptKey{}, a)
}

// AttemptFrom returns the attempt carried by ctx. Outside a retry
// decorator it returns the zero Attempt, the initial attempt.
func AttemptFrom(ctx context.Context) Attempt {
	a, _ := ctx.Value(attemptKey{}).(Attempt)
	return a
}
