// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
)

// A KeyFunc derives the cache key of an execution whose request has
// been fully shaped.
type KeyFunc func(e *request.Execution) (string, error)

// A Declaration is what a caching behavior declares on an execution:
// the key to consult and how long a stored snapshot stays valid.
type Declaration struct {
	Key string
	TTL time.Duration
}

type declarationKey struct{}

// Declare declares d on execution e.
func Declare(e *request.Execution, d Declaration) {
	e.SetValue(declarationKey{}, d)
}

// Declared returns the declaration made on e, if any.
func Declared(e *request.Execution) (Declaration, bool) {
	d, ok := e.Value(declarationKey{}).(Declaration)
	return d, ok
}

// An Option configures the behavior returned by For.
type Option func(b *behavior)

// WithKeyFunc replaces the default key derivation.
func WithKeyFunc(f KeyFunc) Option {
	return func(b *behavior) {
		b.key = f
	}
}

// VaryHeaders adds request headers to the default key derivation, so
// that requests differing only in those headers are cached apart.
func VaryHeaders(names ...string) Option {
	return func(b *behavior) {
		for _, name := range names {
			b.vary = append(b.vary, http.CanonicalHeaderKey(name))
		}
		slices.Sort(b.vary)
		b.vary = slices.Compact(b.vary)
	}
}

// For returns a request behavior which declares that successful
// responses of the operation are cached for ttl. It runs before every
// other built-in request behavior, and declares the key once the rest
// of the pipeline has finished shaping the request. Nothing is declared
// if the rest of the pipeline recorded an outcome.
//
// For claims the exclusive slot "cache". It panics if ttl is not
// positive.
func For(ttl time.Duration, opts ...Option) pipeline.Behavior {
	if ttl <= 0 {
		panic("actionx/cache: ttl must be positive")
	}
	b := &behavior{ttl: ttl}
	for _, opt := range opts {
		opt(b)
	}
	if b.key == nil {
		b.key = b.defaultKey
	}
	return b
}

type behavior struct {
	ttl  time.Duration
	key  KeyFunc
	vary []string
}

func (b *behavior) Order() int {
	return pipeline.OrderCache
}

func (b *behavior) Enabled(_ *request.Execution) bool {
	return true
}

func (b *behavior) Slot() string {
	return "cache"
}

func (b *behavior) Name() string {
	return "cache"
}

func (b *behavior) Handle(e *request.Execution, next pipeline.Handler) error {
	if err := next(e); err != nil {
		return err
	}
	if !e.Result.Pending() {
		return nil
	}
	key, err := b.key(e)
	if err != nil {
		return fmt.Errorf("actionx/cache: deriving key: %w", err)
	}
	Declare(e, Declaration{Key: key, TTL: b.ttl})
	return nil
}

// defaultKey hashes the operation identity, method, URL, varying
// headers and body with SHA-256.
func (b *behavior) defaultKey(e *request.Execution) (string, error) {
	h := sha256.New()
	field := func(s string) {
		fmt.Fprintf(h, "%d:%s;", len(s), s)
	}
	field(e.Operation)
	field(e.Plan.Method)
	field(e.Plan.URL.String())
	for _, name := range b.vary {
		values := e.Plan.Header.Values(name)
		field(fmt.Sprintf("%s*%d", name, len(values)))
		for _, v := range values {
			field(v)
		}
	}
	field(string(e.Plan.Body))
	return hex.EncodeToString(h.Sum(nil)), nil
}
