// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package token

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// An Endpoint obtains token records from an authorization server.
//
// Fetch obtains a new record using the client's own credentials.
// Refresh obtains a new record using a refresh token.
type Endpoint interface {
	Fetch(ctx context.Context) (*Record, error)
	Refresh(ctx context.Context, refreshToken string) (*Record, error)
}

// An EndpointError is returned by Provider.GetToken when the endpoint
// failed. The provider's last good record is kept.
type EndpointError struct {
	// Grant is "fetch" or "refresh".
	Grant string
	// Err is the endpoint's error.
	Err error
}

func (err *EndpointError) Error() string {
	return fmt.Sprintf("actionx/token: %s failed: %v", err.Grant, err.Err)
}

// Unwrap returns the endpoint's error.
func (err *EndpointError) Unwrap() error {
	return err.Err
}

// A Provider caches the token record of one identity.
//
// A Provider is safe for concurrent use by multiple goroutines.
type Provider struct {
	endpoint Endpoint
	skew     time.Duration
	logger   logrus.FieldLogger
	now      func() time.Time

	lock    *semaphore.Weighted
	record  atomic.Pointer[Record]
	cleared atomic.Bool
}

// A ProviderOption configures a Provider.
type ProviderOption func(p *Provider)

// WithSkew sets the safety margin: a token is replaced once it is
// within skew of its expiry.
func WithSkew(skew time.Duration) ProviderOption {
	return func(p *Provider) {
		p.skew = skew
	}
}

// WithLogger sets the logger used to report endpoint calls at debug
// level.
func WithLogger(logger logrus.FieldLogger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider returns a provider obtaining records from endpoint.
func NewProvider(endpoint Endpoint, opts ...ProviderOption) *Provider {
	if endpoint == nil {
		panic("actionx/token: nil endpoint")
	}
	p := &Provider{
		endpoint: endpoint,
		now:      time.Now,
		lock:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = discard()
	}
	return p
}

// GetToken returns a valid token record.
//
// Callers are served one at a time. Each one, holding the lock,
// fetches a new record if there is none or Clear was called, refreshes
// the record if it is about to expire (fetching instead if it has no
// refresh token), and otherwise returns the cached record. A caller
// arriving while another refreshes waits and then sees the new record.
//
// Waiting for the lock is abandoned when ctx is done. If the endpoint
// fails, the error is returned as an *EndpointError and the last good
// record is kept, so the next caller makes the same decision again.
func (p *Provider) GetToken(ctx context.Context) (*Record, error) {
	if err := p.lock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.lock.Release(1)

	r := p.record.Load()
	cleared := p.cleared.Swap(false)
	now := p.now()
	var next *Record
	var err error
	grant := "fetch"
	switch {
	case r == nil || cleared:
		p.logger.WithField("cleared", cleared).Debug("actionx/token: fetching token")
		next, err = p.endpoint.Fetch(ctx)
	case !r.Expired(now, p.skew):
		return r, nil
	case r.RefreshToken != "":
		grant = "refresh"
		p.logger.WithField("expires", r.Expires).Debug("actionx/token: refreshing token")
		next, err = p.endpoint.Refresh(ctx, r.RefreshToken)
	default:
		p.logger.WithField("expires", r.Expires).Debug("actionx/token: token expired, fetching")
		next, err = p.endpoint.Fetch(ctx)
	}
	if err == nil && next == nil {
		err = errors.New("endpoint returned no record")
	}
	if err != nil {
		err = &EndpointError{Grant: grant, Err: err}
		if cleared {
			p.cleared.Store(true)
		}
		p.logger.WithError(err).Debug("actionx/token: endpoint failed")
		return nil, err
	}
	if grant == "refresh" && next.RefreshToken == "" {
		carried := *next
		carried.RefreshToken = r.RefreshToken
		next = &carried
	}
	p.record.Store(next)
	return next, nil
}

// Clear discards the cached record, so the next GetToken fetches a new
// one whatever the expiry. Clear never waits for the lock.
func (p *Provider) Clear() {
	p.cleared.Store(true)
}

// Record returns the last good record, or nil. Unlike GetToken it does
// not check expiry.
func (p *Provider) Record() *Record {
	return p.record.Load()
}

// A Registry holds one provider per identity.
//
// A Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	opts      []ProviderOption
	providers sync.Map
}

// NewRegistry returns an empty registry whose providers are created
// with opts.
func NewRegistry(opts ...ProviderOption) *Registry {
	return &Registry{opts: opts}
}

// Provider returns the provider of identity, creating it with endpoint
// if it does not exist yet. Once created, the provider keeps its
// endpoint: later calls ignore the endpoint argument.
func (r *Registry) Provider(identity string, endpoint Endpoint) *Provider {
	if p, ok := r.providers.Load(identity); ok {
		return p.(*Provider)
	}
	p, _ := r.providers.LoadOrStore(identity, NewProvider(endpoint, r.opts...))
	return p.(*Provider)
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
