// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// A State is the state of a Result slot.
type State int

const (
	// Pending means no behavior has produced a terminal outcome yet.
	Pending State = iota
	// HasValue means the result holds a value.
	HasValue
	// HasError means the result holds an error.
	HasError
)

var stateNames = []string{"Pending", "HasValue", "HasError"}

// String returns the name of the state.
func (s State) String() string {
	return stateNames[int(s)]
}

// A Result is the terminal outcome slot of an Execution. It holds
// either nothing (Pending), a value, or an error, never both a value
// and an error at once.
//
// The zero value is a pending result.
type Result struct {
	state State
	value interface{}
	err   error
}

// SetValue records v as the outcome, clearing any recorded error.
//
// A nil value is a legitimate outcome, for example for an operation
// whose response body is discarded.
func (r *Result) SetValue(v interface{}) {
	r.state = HasValue
	r.value = v
	r.err = nil
}

// SetError records err as the outcome, clearing any recorded value.
//
// Passing a nil error resets the result to pending.
func (r *Result) SetError(err error) {
	if err == nil {
		r.Reset()
		return
	}
	r.state = HasError
	r.value = nil
	r.err = err
}

// Reset returns the result to the pending state.
func (r *Result) Reset() {
	*r = Result{}
}

// State returns the current state of the result.
func (r *Result) State() State {
	return r.state
}

// Pending returns true if no terminal outcome has been recorded.
func (r *Result) Pending() bool {
	return r.state == Pending
}

// Value returns the recorded value, or nil if the result does not hold
// a value.
func (r *Result) Value() interface{} {
	return r.value
}

// Err returns the recorded error, or nil if the result does not hold
// an error.
func (r *Result) Err() error {
	return r.err
}

// Outcome returns the recorded value and error. At most one of them is
// non-nil.
func (r *Result) Outcome() (interface{}, error) {
	return r.value, r.err
}
