// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"github.com/gogama/actionx/request"
)

// A Handler handles one execution. Handlers are the links of a
// composed pipeline: each behavior receives the remainder of the
// pipeline as a Handler.
type Handler func(e *request.Execution) error

// Terminal is the no-op handler that ends a pipeline.
var Terminal Handler = func(_ *request.Execution) error { return nil }

// A Behavior is a named unit of request or response logic.
//
// Implementations of Behavior must be safe for concurrent use by
// multiple goroutines, since one behavior instance serves every
// invocation of the operations it is declared on. Per-invocation state
// belongs in the execution, for example via SetValue.
type Behavior interface {
	// Order returns the order index of the behavior. Lower indices run
	// earlier.
	Order() int
	// Enabled returns true if the behavior applies to the execution.
	// A disabled behavior is skipped, as if it had called next
	// immediately.
	Enabled(e *request.Execution) bool
	// Handle runs the behavior. Call next to run the rest of the
	// pipeline; do not call it to short-circuit.
	Handle(e *request.Execution, next Handler) error
}

// An Exclusive behavior claims a named slot. Declaring two behaviors
// which claim the same slot on one operation is a configuration error.
type Exclusive interface {
	Slot() string
}

// A Named behavior reports a human readable name, used in logs and
// configuration errors.
type Named interface {
	Name() string
}

// NameOf returns the name of b if it implements Named, or its Go type
// otherwise.
func NameOf(b Behavior) string {
	if n, ok := b.(Named); ok {
		return n.Name()
	}
	return typeName(b)
}

// Func is an adapter to allow the use of ordinary functions as
// behaviors.
type Func struct {
	// Label names the behavior.
	Label string
	// Index is the order index of the behavior.
	Index int
	// When optionally restricts the behavior to some executions. If
	// nil, the behavior is always enabled.
	When func(e *request.Execution) bool
	// Fn is the behavior body.
	Fn func(e *request.Execution, next Handler) error
}

// Order returns f.Index.
func (f *Func) Order() int {
	return f.Index
}

// Enabled calls f.When, if set.
func (f *Func) Enabled(e *request.Execution) bool {
	return f.When == nil || f.When(e)
}

// Handle calls f.Fn(e, next).
func (f *Func) Handle(e *request.Execution, next Handler) error {
	return f.Fn(e, next)
}

// Name returns f.Label.
func (f *Func) Name() string {
	return f.Label
}

// Before constructs a behavior which runs fn and then, unless fn
// returned an error, the rest of the pipeline.
func Before(name string, order int, fn func(e *request.Execution) error) Behavior {
	return &Func{
		Label: name,
		Index: order,
		Fn: func(e *request.Execution, next Handler) error {
			if err := fn(e); err != nil {
				return err
			}
			return next(e)
		},
	}
}

// After constructs a behavior which runs the rest of the pipeline and
// then fn. The error returned by the rest of the pipeline, if any,
// takes precedence.
func After(name string, order int, fn func(e *request.Execution) error) Behavior {
	return &Func{
		Label: name,
		Index: order,
		Fn: func(e *request.Execution, next Handler) error {
			if err := next(e); err != nil {
				return err
			}
			return fn(e)
		},
	}
}
