// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decorates an operation invocation with retries.
//
// WithRetry wraps an Invocation so that, whenever an attempt ends in a
// retry-triggering outcome, the whole invocation is started again from
// scratch after a delay. Which outcomes trigger a retry is decided by a
// Decider; how long to wait is decided by a Waiter. Both have
// constructors for common use cases, so that a useful decorator can be
// quickly assembled:
//
//	decider := retry.StatusCode(503).
//	               Or(retry.TransientErr).
//	               Or(retry.OnError(ErrThrottled))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())
//	inv = retry.WithRetry(inv, 3, waiter, decider)
//
// The attempt count passed to WithRetry counts retries, so the
// decorated invocation above makes at most four attempts. When the
// attempts are exhausted the decorated invocation returns an
// *ExhaustedError wrapping the last cause.
package retry
