// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package actionx

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/gogama/actionx/action"
	"github.com/gogama/actionx/cache"
	"github.com/gogama/actionx/config"
	"github.com/gogama/actionx/timeout"
	"github.com/gogama/actionx/token"
	"github.com/sirupsen/logrus"
)

// An Option customizes a Client created by NewClient.
type Option func(c *Client)

// WithHTTPDoer sets the HTTPDoer used for operations and, if one is
// configured, for the token endpoint.
func WithHTTPDoer(d HTTPDoer) Option {
	return func(c *Client) {
		c.HTTPDoer = d
	}
}

// WithSource sets the source of operation definitions. Definitions are
// compiled on first use and cached.
func WithSource(s action.Source) Option {
	return func(c *Client) {
		c.Registry = action.NewRegistry(s)
	}
}

// WithHandlers sets the client's event handlers.
func WithHandlers(h *HandlerGroup) Option {
	return func(c *Client) {
		c.Handlers = h
	}
}

// WithLogger replaces the logger built from the configured log level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		c.Logger = l
	}
}

// NewClient returns a Client configured from cfg, and the token
// provider for the configured token endpoint, which is nil if cfg
// names none. Operations requiring authorization declare it with
// token.Authorize(provider).
//
// If cfg selects the memory cache backend, NewClient starts evicting
// expired snapshots in the background. Call Close on the returned
// Client to stop it.
func NewClient(cfg *config.Config, opts ...Option) (*Client, *token.Provider, error) {
	if cfg == nil {
		panic("actionx: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	c := &Client{
		Cache:  cfg.Store(),
		Retry:  cfg.RetryPolicy(),
		Logger: cfg.Logger(),
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("actionx: base url: %w", err)
		}
		c.BaseURL = u
	}
	if cfg.Timeout > 0 {
		c.Timeout = timeout.Fixed(cfg.Timeout)
	}
	for _, opt := range opts {
		opt(c)
	}
	if m, ok := c.Cache.(*cache.Memory); ok {
		go m.Start()
		c.stop = sync.OnceFunc(m.Stop)
	}

	return c, cfg.TokenProvider(c.doer(), c.logger()), nil
}
