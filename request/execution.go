// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/actionx/transient"
)

// An Execution represents the state of a single invocation of an
// operation.
//
// When an operation is invoked, the dispatcher creates an Execution for
// it and hands it to the request pipeline, then to the response
// pipeline. If the invocation is retried, each retry gets a brand new
// Execution: nothing carries over except the attempt number.
//
// Behaviors may set values on an Execution using its SetValue method
// and read them back using the Value method. Request behaviors are
// expected to change the Plan. Response behaviors are expected to
// record the outcome in Result. Other exported fields are maintained
// by the dispatcher and should be treated as read-only.
type Execution struct {
	// ID uniquely identifies the invocation. It is shared by every
	// execution belonging to the same invocation, including the
	// executions of retries and re-authorization cycles.
	ID string

	// Operation is the identity of the operation being invoked.
	Operation string

	// Args holds the argument values of the invocation, indexed by
	// parameter index.
	Args []interface{}

	// Plan is the outgoing request being shaped. It is never nil.
	Plan *Plan

	// Start is the start time of the execution. It is assigned a
	// non-zero value when the execution starts, and this value remains
	// constant thereafter.
	Start time.Time

	// End is the end time of the execution. It contains the zero value
	// until the execution ends.
	End time.Time

	// Attempt is the zero-based number of the current attempt of the
	// invocation. It is zero on the initial attempt, one on the first
	// retry, and so on.
	Attempt int

	// AttemptTimeouts is the number of earlier attempts of the same
	// invocation which ended in a timeout.
	AttemptTimeouts int

	// PreviousTimedOut is true if the immediately preceding attempt of
	// the same invocation ended in a timeout.
	PreviousTimedOut bool

	// Request is the HTTP request that was sent. It is nil until the
	// send, and stays nil if the response was adopted from a cache.
	Request *http.Request

	// Response is the HTTP response received, or reconstructed from a
	// cached snapshot. It is nil during the request phase and if the
	// send ended in an error. Its body has already been read into Body
	// and closed.
	Response *http.Response

	// Body is the complete response body.
	Body []byte

	// FromCache is true if Response was reconstructed from a cached
	// snapshot instead of being received from the transport.
	FromCache bool

	// Result holds the terminal outcome of the execution.
	Result Result

	ctx         context.Context
	signals     []context.Context
	reauthorize bool
	cleanups    []func()
	data        context.Context
}

// NewExecution returns a new execution for an invocation of operation
// id using the given plan. The context is the caller's context, which
// is always one of the execution's cancellation signals.
func NewExecution(ctx context.Context, id, operation string, args []interface{}, p *Plan) *Execution {
	if ctx == nil {
		panic("actionx/request: nil context")
	}
	return &Execution{
		ID:        id,
		Operation: operation,
		Args:      args,
		Plan:      p,
		ctx:       ctx,
	}
}

// Context returns the caller's context for the invocation. Behaviors
// that block (for example fetching a credential) should honour it.
//
// The returned context is always non-nil; it defaults to the
// background context.
func (e *Execution) Context() context.Context {
	if e.ctx != nil {
		return e.ctx
	}
	return context.Background()
}

// AddSignal adds a cancellation signal to the execution. When the
// request is sent, the caller's context and all added signals are
// combined, and whichever is done first aborts the send.
//
// A typical signal is a context with a deadline derived from a
// declared timeout behavior.
func (e *Execution) AddSignal(ctx context.Context) {
	if ctx == nil {
		panic("actionx/request: nil signal")
	}
	e.signals = append(e.signals, ctx)
}

// Signals returns the cancellation signals collected so far, starting
// with the caller's context.
func (e *Execution) Signals() []context.Context {
	s := make([]context.Context, 0, 1+len(e.signals))
	s = append(s, e.Context())
	return append(s, e.signals...)
}

// AddCleanup registers f to run when the execution is released, for
// example to cancel the context of a signal added with AddSignal.
func (e *Execution) AddCleanup(f func()) {
	e.cleanups = append(e.cleanups, f)
}

// Release runs the registered cleanup functions in reverse order of
// registration. The dispatcher releases every execution once it ends.
// Calling Release more than once is harmless.
func (e *Execution) Release() {
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		e.cleanups[i]()
	}
	e.cleanups = nil
}

// RequestReauthorization is called by a response behavior that
// discarded a rejected credential. The dispatcher repeats the
// invocation once with a freshly obtained credential.
func (e *Execution) RequestReauthorization() {
	e.reauthorize = true
}

// ReauthorizationRequested returns true if a response behavior called
// RequestReauthorization.
func (e *Execution) ReauthorizationRequested() bool {
	return e.reauthorize
}

// StatusCode returns the status code of the HTTP response. If there is
// no HTTP response, 0 is returned.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the HTTP response headers. If there is no HTTP
// response, the nil header is returned.
//
// Note that a nil return value is always safe for read-only operations,
// since http.Header is a map type.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Response.Header
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether the recorded error indicates a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Result.Err()) == transient.Timeout
}

// SetValue allows behaviors to store arbitrary data in the execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different behaviors putting data into the same
// execution.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
