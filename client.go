// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package actionx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/actionx/action"
	"github.com/gogama/actionx/cache"
	"github.com/gogama/actionx/request"
	"github.com/gogama/actionx/retry"
	"github.com/gogama/actionx/timeout"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// A Client dispatches invocations of declared operations. Its zero
// value is a valid configuration.
//
// The zero value client uses http.DefaultClient (from net/http) as the
// HTTPDoer, resolves no base URL, applies no default timeout or retry,
// has no cache store, and logs nothing.
//
// Client's HTTPDoer typically has an internal state (cached TCP
// connections) so Client instances should be reused instead of created
// as needed. Client is safe for concurrent use by multiple goroutines
// as long as its fields are not modified once in use.
//
// For each invocation, Client validates the arguments and then runs one
// or more attempts. Each attempt:
//
// • creates a fresh request.Execution from the operation's method and
// path, resolved against BaseURL;
//
// • runs the operation's request pipeline, which may settle the
// outcome without sending anything;
//
// • answers from the cache store if a cache behavior declared a key and
// a live snapshot exists, or otherwise sends the request through the
// HTTPDoer, aborting it when the first of the collected cancellation
// signals fires;
//
// • stores a snapshot of a 2XX response when a cache key was declared;
// and
//
// • runs the operation's response pipeline, which must settle the
// outcome.
//
// If a response behavior requests re-authorization, the attempt is
// repeated once more. If the operation declares a retry configuration,
// or Client has a default one, failed attempts are retried according
// to it.
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard net/http
	// package is used.
	HTTPDoer HTTPDoer
	// BaseURL, if not nil, is the URL against which relative operation
	// paths are resolved.
	BaseURL *url.URL
	// Registry supplies compiled operations to the Operation method.
	//
	// If Registry is nil, only Invoke, which takes a compiled
	// descriptor, may be used.
	Registry *action.Registry
	// Cache stores response snapshots for operations which declare a
	// cache behavior.
	//
	// If Cache is nil, cache declarations are ignored.
	Cache cache.Store
	// Timeout is applied to attempts of operations which do not declare
	// their own timeout behavior.
	//
	// If Timeout is nil, such attempts are bounded only by the caller's
	// context.
	Timeout timeout.Policy
	// Retry is used for operations which do not declare their own retry
	// configuration.
	//
	// If Retry is nil, such operations are attempted once.
	Retry *retry.Config
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during an invocation.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Logger receives per-attempt log entries.
	//
	// If Logger is nil, nothing is logged.
	Logger logrus.FieldLogger

	stop func()
}

// Invoke dispatches one invocation of the operation described by d
// with the given arguments, and returns its outcome.
//
// Arguments are validated at the start of every attempt. If they fail
// validation, nothing is sent and the attempt ends with an
// *action.ValidationError, which is retried only if the retry policy's
// decider asks for it. Transport failures are returned as
// *url.Error values whose Timeout method reports true if a timeout
// signal fired. If the response pipeline leaves the outcome unsettled,
// an *UnsupportedResponseError is returned. If retries are exhausted,
// a *retry.ExhaustedError wrapping the last cause is returned.
func (c *Client) Invoke(ctx context.Context, d *action.Descriptor, args ...interface{}) (interface{}, error) {
	if ctx == nil {
		panic("actionx: nil context")
	}
	if d == nil {
		panic("actionx: nil descriptor")
	}

	id := uuid.NewString()
	log := c.logger().WithFields(logrus.Fields{
		"operation":     d.ID,
		"invocation_id": id,
	})
	inv := func(ctx context.Context) (interface{}, error) {
		if err := d.Validate(args); err != nil {
			return nil, err
		}
		return c.attempt(ctx, d, args, id, log)
	}

	cfg := d.Retry
	if cfg == nil {
		cfg = c.Retry
	}
	if cfg != nil {
		inv = cfg.Wrap(inv)
	}

	return inv(ctx)
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

// Close stops the background work NewClient started for the client,
// such as evicting expired snapshots from a memory cache. Close does
// nothing for a client not created by NewClient, and calling it more
// than once is harmless.
func (c *Client) Close() {
	if c.stop != nil {
		c.stop()
	}
}

func (c *Client) attempt(ctx context.Context, d *action.Descriptor, args []interface{}, id string, log logrus.FieldLogger) (interface{}, error) {
	a := retry.AttemptFrom(ctx)
	log = log.WithField("attempt", a.Index)
	handlers := c.Handlers

	var e *request.Execution
	for cycle := 0; ; cycle++ {
		p, err := request.NewPlan(d.Method, d.Path, nil)
		if err != nil {
			return nil, &action.ConfigError{Operation: d.ID, Err: err}
		}
		p.ResolveReference(c.BaseURL)

		e = request.NewExecution(ctx, id, d.ID, args, p)
		e.Attempt = a.Index
		e.AttemptTimeouts = a.Timeouts
		e.PreviousTimedOut = a.LastTimedOut
		e.Start = time.Now()
		if cycle == 0 {
			handlers.run(BeforeAttempt, e)
		}

		c.run(d, e, handlers, log)

		if cycle > 0 || !e.ReauthorizationRequested() {
			break
		}
		log.Debug("Re-authorizing after response")
		handlers.run(AfterReauthorize, e)
	}

	e.End = time.Now()
	handlers.run(AfterAttempt, e)
	v, err := e.Result.Outcome()
	entry := log.WithFields(logrus.Fields{
		"status":     e.StatusCode(),
		"from_cache": e.FromCache,
		"duration":   e.Duration(),
	})
	if err != nil {
		entry.WithError(err).Debug("Attempt failed")
	} else {
		entry.Debug("Attempt succeeded")
	}
	return v, err
}

func (c *Client) run(d *action.Descriptor, e *request.Execution, handlers *HandlerGroup, log logrus.FieldLogger) {
	defer e.Release()

	_ = d.RequestPipeline()(e)
	if !e.Result.Pending() {
		return
	}

	c.exchange(e, handlers, log)
	if !e.Result.Pending() {
		return
	}

	_ = d.ResponsePipeline()(e)
	if e.Result.Pending() {
		e.Result.SetError(&UnsupportedResponseError{
			Operation:   d.ID,
			StatusCode:  e.StatusCode(),
			ContentType: e.Header().Get("Content-Type"),
		})
	}
}

func (c *Client) exchange(e *request.Execution, handlers *HandlerGroup, log logrus.FieldLogger) {
	decl, declared := cache.Declared(e)
	declared = declared && c.Cache != nil
	if declared {
		s, ok, err := c.Cache.TryGet(e.Context(), decl.Key)
		if err != nil {
			log.WithError(err).Warn("Cache lookup failed")
		} else if ok {
			e.Request = e.Plan.ToRequest(e.Context())
			e.Response = s.Response(e.Request)
			e.Body = bytes.Clone(s.Body)
			e.FromCache = true
			handlers.run(AfterCacheHit, e)
			return
		}
	}

	if c.Timeout != nil && !timeout.Applied(e) {
		timeout.Apply(e, c.Timeout)
	}
	ctx, cancel := merge(e.Signals())
	defer cancel()

	e.Request = e.Plan.ToRequest(ctx)
	handlers.run(BeforeSend, e)
	resp, err := c.doer().Do(e.Request)
	if err != nil {
		e.Result.SetError(urlErrorWrap(ctx, e.Plan, err))
		handlers.run(AfterSend, e)
		return
	}
	e.Response = resp
	e.Body, err = readBody(resp)
	if err != nil {
		e.Result.SetError(urlErrorWrap(ctx, e.Plan, err))
		handlers.run(AfterSend, e)
		return
	}

	if declared && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		expires := time.Now().Add(decl.TTL)
		s := cache.Capture(resp, e.Body, expires)
		if err = c.Cache.Set(e.Context(), decl.Key, s, decl.TTL); err != nil {
			log.WithError(err).Warn("Cache store failed")
		}
	}
	handlers.run(AfterSend, e)
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return http.DefaultClient
	}

	return c.HTTPDoer
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return discard
	}

	return c.Logger
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}()

func readBody(resp *http.Response) ([]byte, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}

// merge returns a context which is done as soon as the first of the
// signals is done, with that signal's cancellation cause. The first
// signal is the parent, so its values and deadline are inherited.
func merge(signals []context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(signals[0])
	stops := make([]func() bool, 0, len(signals)-1)
	for _, s := range signals[1:] {
		s := s
		stops = append(stops, context.AfterFunc(s, func() {
			cancel(context.Cause(s))
		}))
	}
	return ctx, func() {
		for _, stop := range stops {
			stop()
		}
		cancel(context.Canceled)
	}
}

// urlErrorWrap wraps err in a *url.Error. If ctx is done, the inner
// error is replaced by the cancellation cause so the caller can see
// which signal fired.
func urlErrorWrap(ctx context.Context, p *request.Plan, err error) error {
	op, u := urlErrorOp(p.Method), p.URL.String()
	var ue *url.Error
	if errors.As(err, &ue) {
		op, u, err = ue.Op, ue.URL, ue.Err
	}

	if ctx.Err() != nil {
		if cause := context.Cause(ctx); cause != nil {
			err = cause
		}
	}

	return &url.Error{
		Op:  op,
		URL: u,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
