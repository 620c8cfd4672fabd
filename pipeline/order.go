// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

// Order indices of the built-in behaviors. User behaviors may use any
// index; picking one between two built-ins places it between them.
const (
	// OrderCache is the index of the caching behavior. It runs first
	// in the request phase so that it sees the finished request when
	// the rest of the chain returns.
	OrderCache = 0
	// OrderThrottle is the index of the attempt rate limiting
	// behavior.
	OrderThrottle = 50
	// OrderTimeout is the index of the declared timeout behavior.
	OrderTimeout = 100
	// OrderParam is the index of parameter behaviors (path, query,
	// header and body).
	OrderParam = 200
	// OrderAccept is the index of content negotiation.
	OrderAccept = 300
	// OrderAuthorize is the index of the authorization filter in
	// both phases.
	OrderAuthorize = 400

	// OrderStatus is the index of the status check result behavior.
	OrderStatus = 100
	// OrderDecode is the index of decoding result behaviors.
	OrderDecode = 500
	// OrderRaw is the index of the raw passthrough result behavior,
	// the last resort.
	OrderRaw = 1000
)

// A Filter is a declared behavior that takes part in both phases of
// an invocation. Either side may be nil.
type Filter interface {
	RequestBehavior() Behavior
	ResponseBehavior() Behavior
}

// Pair is the simplest Filter: a request behavior and a response
// behavior declared together.
type Pair struct {
	Request  Behavior
	Response Behavior
}

// RequestBehavior returns p.Request.
func (p Pair) RequestBehavior() Behavior {
	return p.Request
}

// ResponseBehavior returns p.Response.
func (p Pair) ResponseBehavior() Behavior {
	return p.Response
}
