// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package throttle limits how often operations may be attempted.

A Limiter admits attempts as long as none of its limits is exceeded.
For example, the following limiter refuses an attempt if 10 attempts
were admitted in the last half second, or 15 in the last second:

	l := throttle.NewLimiter(
		throttle.Limit{MaxAttempts: 10, Period: 500*time.Millisecond},
		throttle.Limit{MaxAttempts: 15, Period: time.Second},
	)

Declare the limiter on one or more operations with For. A refused
attempt ends with ErrLimited before anything is sent, so it can be
retried with retry.OnError(throttle.ErrLimited).
*/
package throttle
