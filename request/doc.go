// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Plan (the outgoing HTTP request
being shaped for one invocation), Execution (the state of one
invocation) and Result (the terminal outcome slot of an Execution).

A Plan looks like a stripped-down http.Request with all server-side
fields removed and the body replaced with a pre-buffered []byte. Plan
fields are named and typed consistently with http.Request wherever
possible. Behaviors in the request pipeline mutate the plan: they fill
in path parameters, append query values, set headers and serialize the
body.

	p, err := request.NewPlan("GET", "https://example.com/users/{id}", nil)
	...
	err = p.SetPathParam("id", "42")

An Execution is created by the dispatcher for every invocation of an
operation, and for every retry of it. It plays two roles. Before the
HTTP request is sent it is the request context: it carries the
invocation's argument values, the plan, the cancellation signals
collected so far and a property bag for behaviors to share data. After
the request is sent (or its response is adopted from a cache) it is the
response context: Response and Body are populated, and response
behaviors record the terminal outcome into Result.

A Result is always in exactly one of three states: pending, holding a
value, or holding an error. Setting a value clears any error and setting
an error clears any value.

You will typically not allocate Execution instances yourself, but will
instead work with the ones handed out by the dispatcher to behaviors and
event handlers.
*/
package request
