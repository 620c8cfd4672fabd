// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"errors"
	"fmt"
)

// ErrUnknownOperation is returned, wrapped, by a Source which has no
// definition for the requested operation.
var ErrUnknownOperation = errors.New("actionx/action: unknown operation")

// A ConfigError reports malformed or conflicting operation metadata.
// It is detected when the operation's descriptor is first compiled and
// is never worth retrying.
type ConfigError struct {
	// Operation is the identity of the malformed operation.
	Operation string
	// Err describes every problem found. It may be the result of
	// errors.Join.
	Err error
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("actionx/action: invalid operation %q: %v", err.Operation, err.Err)
}

// Unwrap returns the underlying problem.
func (err *ConfigError) Unwrap() error {
	return err.Err
}

// A ValidationError reports an invocation argument which violates its
// parameter's rules, or a wrong number of arguments.
type ValidationError struct {
	// Operation is the identity of the invoked operation.
	Operation string
	// Param is the name of the offending parameter. It is empty if the
	// number of arguments is wrong.
	Param string
	// Index is the parameter index, or -1 if the number of arguments
	// is wrong.
	Index int
	// Value is the offending argument value.
	Value interface{}
	// Err is the rule violation.
	Err error
}

func (err *ValidationError) Error() string {
	if err.Index < 0 {
		return fmt.Sprintf("actionx/action: invalid arguments for %q: %v", err.Operation, err.Err)
	}
	return fmt.Sprintf("actionx/action: invalid argument %q for %q: %v", err.Param, err.Operation, err.Err)
}

// Unwrap returns the rule violation.
func (err *ValidationError) Unwrap() error {
	return err.Err
}
