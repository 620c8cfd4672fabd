// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package actionx

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/gogama/actionx/action"
)

// An Operation is a handle for invoking one compiled operation through
// an Invoker.
type Operation struct {
	invoker Invoker
	desc    *action.Descriptor
}

// NewOperation returns a handle which invokes d through inv.
func NewOperation(inv Invoker, d *action.Descriptor) *Operation {
	if inv == nil {
		panic("actionx: nil invoker")
	}
	if d == nil {
		panic("actionx: nil descriptor")
	}
	return &Operation{invoker: inv, desc: d}
}

// Operation looks up the operation identified by id in the client's
// registry, compiling it on first use, and returns a handle for
// invoking it.
func (c *Client) Operation(id string) (*Operation, error) {
	if c.Registry == nil {
		return nil, errors.New("actionx: client has no operation registry")
	}
	d, err := c.Registry.GetDescriptor(id)
	if err != nil {
		return nil, err
	}
	return NewOperation(c, d), nil
}

// Descriptor returns the compiled operation.
func (op *Operation) Descriptor() *action.Descriptor {
	return op.desc
}

// Invoke invokes the operation with the given arguments.
func (op *Operation) Invoke(ctx context.Context, args ...interface{}) (interface{}, error) {
	return op.invoker.Invoke(ctx, op.desc, args...)
}

// Call invokes op and converts its result to T. A nil result yields
// the zero value of T.
func Call[T any](ctx context.Context, op *Operation, args ...interface{}) (T, error) {
	var zero T
	v, err := op.Invoke(ctx, args...)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("actionx: operation %q produced %T, not %v", op.desc.ID, v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return t, nil
}
