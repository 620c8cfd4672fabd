// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package throttle

import (
	"errors"
	"sync"
	"time"

	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
)

// ErrLimited is the outcome of an attempt refused by a Limiter.
var ErrLimited = errors.New("actionx/throttle: attempt rate limit exceeded")

// A Limit specifies the maximum number of attempts allowed per unit
// time.
type Limit struct {
	MaxAttempts int
	Period      time.Duration
}

// A Limiter admits attempts within one or more limits. It is safe for
// concurrent use by multiple goroutines, so one Limiter may be shared
// by several operations to give them a common budget.
type Limiter struct {
	lock    sync.Mutex
	windows []window
	now     func() time.Time
}

// NewLimiter returns a limiter enforcing all of limits. A limiter
// without limits admits every attempt.
func NewLimiter(limits ...Limit) *Limiter {
	l := &Limiter{
		windows: make([]window, len(limits)),
		now:     time.Now,
	}
	for i, lim := range limits {
		if lim.MaxAttempts < 0 {
			panic("actionx/throttle: MaxAttempts may not be negative")
		}
		l.windows[i] = window{period: lim.Period, ring: make([]time.Time, lim.MaxAttempts)}
	}
	return l
}

// Allow reports whether an attempt may start now, and if so counts it
// against every limit.
func (l *Limiter) Allow() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	now := l.now()
	for i := range l.windows {
		if !l.windows[i].room(now) {
			return false
		}
	}
	for i := range l.windows {
		l.windows[i].record(now)
	}
	return true
}

// window is a ring of the admission times within one limit's period.
type window struct {
	period  time.Duration
	ring    []time.Time
	head, n int
}

func (w *window) room(now time.Time) bool {
	cutoff := now.Add(-w.period)
	for w.n > 0 && !w.ring[w.head].After(cutoff) {
		w.head = (w.head + 1) % len(w.ring)
		w.n--
	}
	return w.n < len(w.ring)
}

func (w *window) record(now time.Time) {
	w.ring[(w.head+w.n)%len(w.ring)] = now
	w.n++
}

// For returns a request behavior which ends the attempt with
// ErrLimited if l refuses it. The behavior claims the exclusive slot
// "throttle".
func For(l *Limiter) pipeline.Behavior {
	if l == nil {
		panic("actionx/throttle: nil limiter")
	}
	return behavior{l}
}

type behavior struct {
	limiter *Limiter
}

func (b behavior) Order() int {
	return pipeline.OrderThrottle
}

func (b behavior) Enabled(_ *request.Execution) bool {
	return true
}

func (b behavior) Slot() string {
	return "throttle"
}

func (b behavior) Name() string {
	return "throttle"
}

func (b behavior) Handle(e *request.Execution, next pipeline.Handler) error {
	if !b.limiter.Allow() {
		return ErrLimited
	}
	return next(e)
}
