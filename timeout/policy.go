// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"fmt"
	"time"

	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
)

// A Policy decides the timeout of the next attempt of an operation
// invocation.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the attempt represented by
	// execution e. A non-positive return value, or Infinite's value,
	// means no timeout.
	Timeout(e *request.Execution) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 5 seconds on each attempt.
var DefaultPolicy Policy = Fixed(5 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(infinite)

const infinite = time.Duration(1<<63 - 1)

// Fixed constructs a timeout policy that uses the same value to set
// every attempt timeout.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the previous attempt timed out.
//
// Use Adaptive if the remote service often exhibits one-off slow
// response times that can be cured by quickly timing out and retrying,
// but a burst of slowness should not turn into a retry storm.
//
// Parameter usual is the timeout for the initial attempt and for any
// retry where the immediately preceding attempt did not time out.
// Parameter after holds the timeouts used when the previous attempt
// timed out: after[0] on the first timeout of the invocation, after[1]
// on the second, and so on, repeating the last element once after is
// exhausted.
//
// For example, with
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// attempts normally get 200 milliseconds, an attempt following the
// first timeout gets 1 second, and an attempt following any later
// timeout gets 10 seconds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(e *request.Execution) time.Duration {
	if !e.PreviousTimedOut {
		return p[0]
	}
	i := e.AttemptTimeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}
	return p[i]
}

// For returns a behavior declaring policy p on an operation. On every
// execution it derives a deadline from p and adds it as a cancellation
// signal. The behavior claims the exclusive slot "timeout", so an
// operation may declare at most one timeout.
func For(p Policy) pipeline.Behavior {
	if p == nil {
		panic("actionx/timeout: nil policy")
	}
	return behavior{p}
}

type behavior struct {
	policy Policy
}

func (b behavior) Order() int {
	return pipeline.OrderTimeout
}

func (b behavior) Enabled(_ *request.Execution) bool {
	return true
}

func (b behavior) Slot() string {
	return "timeout"
}

func (b behavior) Name() string {
	return "timeout"
}

func (b behavior) Handle(e *request.Execution, next pipeline.Handler) error {
	Apply(e, b.policy)
	return next(e)
}

type appliedKey struct{}

// Apply adds a cancellation signal to e which fires once the timeout
// chosen by p elapses. The signal's timer is stopped when e is
// released. An infinite timeout adds no signal.
func Apply(e *request.Execution, p Policy) {
	e.SetValue(appliedKey{}, true)
	d := p.Timeout(e)
	if d > 0 && d < infinite {
		ctx, cancel := context.WithTimeoutCause(context.Background(), d, &Error{After: d})
		e.AddSignal(ctx)
		e.AddCleanup(cancel)
	}
}

// Applied reports whether a timeout policy, even an infinite one, has
// been applied to e.
func Applied(e *request.Execution) bool {
	v, _ := e.Value(appliedKey{}).(bool)
	return v
}

// An Error is the cancellation cause of a signal added by a declared
// timeout behavior.
type Error struct {
	// After is the timeout which elapsed.
	After time.Duration
}

func (err *Error) Error() string {
	return fmt.Sprintf("actionx/timeout: attempt timed out after %v", err.After)
}

// Timeout reports true, so a *url.Error wrapping the error reports a
// timeout.
func (err *Error) Timeout() bool {
	return true
}

// Unwrap returns context.DeadlineExceeded, so the error is categorised
// as a timeout.
func (err *Error) Unwrap() error {
	return context.DeadlineExceeded
}
