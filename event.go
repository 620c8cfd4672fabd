// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package actionx

// An Event identifies the event type when installing or running a
// Handler. Each event type represents a plug-in point within one
// attempt of an operation invocation.
type Event int

const (
	// BeforeAttempt identifies the event that occurs before each
	// attempt of an operation invocation, including the first one.
	//
	// When Client fires BeforeAttempt, the execution's plan has been
	// created from the operation's method and path but the request
	// pipeline has not yet run. The execution's attempt counters are
	// set.
	BeforeAttempt Event = iota
	// BeforeSend identifies the event that occurs after the request
	// pipeline has shaped the request and immediately before it is
	// given to the HTTPDoer.
	//
	// When Client fires BeforeSend, the execution's request field is
	// set to the HTTP request that WILL BE sent. Its context carries
	// the merged cancellation signals.
	BeforeSend
	// AfterCacheHit identifies the event that occurs when a declared
	// cache policy found a live snapshot, so no request is sent.
	//
	// When Client fires AfterCacheHit, the execution's response and
	// body fields hold the rebuilt cached response and its FromCache
	// field is true.
	AfterCacheHit
	// AfterSend identifies the event that occurs after the HTTPDoer
	// returned, regardless of whether it returned a response or an
	// error.
	//
	// When Client fires AfterSend, either the execution's response
	// field is set and its body fully read, or its result holds the
	// transport error.
	AfterSend
	// AfterReauthorize identifies the event that occurs when a response
	// behavior requested re-authorization and the Client is about to
	// repeat the attempt once more with fresh credentials.
	//
	// When Client fires AfterReauthorize, the execution is the one
	// whose response triggered the request. The repeated cycle runs on
	// a new execution.
	AfterReauthorize
	// AfterAttempt identifies the event that occurs after an attempt is
	// concluded, before the retry policy (if any) is consulted.
	//
	// When Client fires AfterAttempt, the execution's result is
	// terminal and its end time is set.
	AfterAttempt
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeAttempt",
	"BeforeSend",
	"AfterCacheHit",
	"AfterSend",
	"AfterReauthorize",
	"AfterAttempt",
}

// Events returns a slice containing all events which can occur during
// an operation invocation, in the order they would first occur.
func Events() []Event {
	return []Event{
		BeforeAttempt,
		BeforeSend,
		AfterCacheHit,
		AfterSend,
		AfterReauthorize,
		AfterAttempt,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
