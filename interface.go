// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package actionx

import (
	"context"
	"net/http"

	"github.com/gogama/actionx/action"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package. In
	// particular it must abandon the request when the request context
	// is done.
	Do(r *http.Request) (*http.Response, error)
}

// Invoker is the interface that wraps the basic Invoke method.
//
// Invoke dispatches one invocation of a compiled operation and returns
// its outcome. Client implements the Invoker interface, and any other
// Invoker implementation must behave substantially the same as
// Client.Invoke.
type Invoker interface {
	Invoke(ctx context.Context, d *action.Descriptor, args ...interface{}) (interface{}, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any idle which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
type IdleCloser interface {
	CloseIdleConnections()
}
