// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/gogama/actionx/request"
)

// A Mode selects how a composed pipeline treats behavior errors.
type Mode int

const (
	// Request mode: a behavior error is recorded and the behavior's
	// own decision whether to call next stands.
	Request Mode = iota
	// Response mode: the first terminal outcome stands. A behavior
	// error is recorded only while the result is still pending, and if
	// the failing behavior did not call next, the rest of the chain runs
	// anyway.
	Response
)

// Build compiles behaviors into one handler ending in terminal.
//
// Behaviors are sorted by ascending order index; behaviors with equal
// indices keep their relative positions in the slice. The slice itself
// is not modified. If terminal is nil, Terminal is used.
//
// The composed handler always returns nil: errors from behaviors and
// from terminal are recorded on the execution's Result, where the
// dispatcher picks them up. In Response mode an error does not replace
// an outcome an earlier behavior already settled.
func Build(mode Mode, behaviors []Behavior, terminal Handler) Handler {
	if terminal == nil {
		terminal = Terminal
	}
	sorted := Sort(behaviors)
	h := record(mode, terminal)
	for i := len(sorted) - 1; i >= 0; i-- {
		h = link(mode, sorted[i], h)
	}
	return h
}

// Sort returns a copy of behaviors in execution order: ascending
// order index, ties broken by position in the input.
func Sort(behaviors []Behavior) []Behavior {
	sorted := slices.Clone(behaviors)
	slices.SortStableFunc(sorted, func(a, b Behavior) int {
		return cmp.Compare(a.Order(), b.Order())
	})
	return sorted
}

func link(mode Mode, b Behavior, next Handler) Handler {
	return func(e *request.Execution) error {
		if !b.Enabled(e) {
			return next(e)
		}
		called := false
		err := b.Handle(e, func(e *request.Execution) error {
			called = true
			return next(e)
		})
		if err == nil {
			return nil
		}
		settle(mode, e, err)
		if mode == Response && !called {
			return next(e)
		}
		return nil
	}
}

func record(mode Mode, h Handler) Handler {
	return func(e *request.Execution) error {
		if err := h(e); err != nil {
			settle(mode, e, err)
		}
		return nil
	}
}

func settle(mode Mode, e *request.Execution, err error) {
	if mode == Response && !e.Result.Pending() {
		return
	}
	e.Result.SetError(err)
}

func typeName(b Behavior) string {
	t := reflect.TypeOf(b)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return fmt.Sprintf("%s.%s", t.PkgPath(), t.Name())
}
