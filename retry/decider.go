// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"time"

	"github.com/gogama/actionx/transient"
)

// A Decider decides if an attempt's outcome triggers a retry.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors OnError, OnErrorType, OnResult,
// StatusCode and Before, and the built-in decider TransientErr; or
// implement your Decider. Use DeciderFunc to convert an ordinary
// function into a Decider, and to compose deciders logically using
// DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(o *Outcome) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
type DeciderFunc func(o *Outcome) bool

// DefaultDecider is a general-purpose retry decider suitable for
// common use cases. It triggers a retry in the case of a transient
// error (TransientErr) or if the attempt failed with an HTTP status
// code of 429 (Too Many Requests), 502 (Bad Gateway), 503 (Service
// Unavailable) or 504 (Gateway Timeout).
var DefaultDecider = StatusCode(429, 502, 503, 504).Or(TransientErr)

// TransientErr is a decider that triggers a retry if the attempt's
// error is transient according to transient.Categorize.
var TransientErr DeciderFunc = transientErr

// Decide returns true if the outcome triggers a retry.
func (f DeciderFunc) Decide(o *Outcome) bool {
	return f(o)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(o *Outcome) bool {
		return f(o) && g(o)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true, but false if
// they both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(o *Outcome) bool {
		return f(o) || g(o)
	}
}

// OnError constructs a decider which triggers a retry when the
// attempt's error matches target according to errors.Is.
func OnError(target error) DeciderFunc {
	return func(o *Outcome) bool {
		return o.Err != nil && errors.Is(o.Err, target)
	}
}

// OnErrorType constructs a decider which triggers a retry when the
// attempt's error, or an error it wraps, has type T and, if pred is
// not nil, satisfies pred.
func OnErrorType[T error](pred func(T) bool) DeciderFunc {
	return func(o *Outcome) bool {
		var target T
		if o.Err == nil || !errors.As(o.Err, &target) {
			return false
		}
		return pred == nil || pred(target)
	}
}

// OnResult constructs a decider which triggers a retry when the attempt
// succeeded with a value satisfying pred.
func OnResult(pred func(v interface{}) bool) DeciderFunc {
	return func(o *Outcome) bool {
		return o.Err == nil && pred(o.Value)
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the start of the first attempt.
// Compose it with And to bound another decider.
func Before(d time.Duration) DeciderFunc {
	return func(o *Outcome) bool {
		return o.Elapsed < d
	}
}

// StatusCode constructs a retry decider allowing retries based on the
// HTTP response status code carried by the attempt's error. Errors
// report a status code by implementing
//
//	StatusCode() int
//
// as the response status errors produced by package behavior do.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(o *Outcome) bool {
		var sc statusCoder
		if o.Err == nil || !errors.As(o.Err, &sc) {
			return false
		}
		code := sc.StatusCode()
		for _, s := range ss2 {
			if code == s {
				return true
			}
		}
		return false
	}
}

type statusCoder interface {
	StatusCode() int
}

func transientErr(o *Outcome) bool {
	return transient.Is(o.Err)
}
