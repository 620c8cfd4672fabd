// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"io"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize().
//
// The categories Not and Canceled mean a retry is very unlikely to
// help. All other categories indicate that a retry has some prospect
// of success.
type Category int

const (
	// Not indicates any non-transient error, and the nil error.
	Not Category = iota
	// Canceled indicates the invocation was cancelled by its caller.
	// It is not transient: the caller no longer wants the outcome.
	//
	// Categorize returns Canceled if the error is not a Timeout and
	// the error or any of its wrapped causes is context.Canceled.
	Canceled
	// Timeout indicates a client-side timeout, either from a declared
	// timeout behavior or a caller deadline.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() function that reports true, or is
	// context.DeadlineExceeded.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (ECONNREFUSED). The remote service may be restarting.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// TCP connection (ECONNRESET).
	ConnReset
	// Truncated indicates the connection was closed before a complete
	// response was read (io.ErrUnexpectedEOF).
	Truncated
)

var categoryNames = []string{"Not", "Canceled", "Timeout", "ConnRefused", "ConnReset", "Truncated"}

// String returns the name of the category.
func (c Category) String() string {
	return categoryNames[int(c)]
}

// Transient returns true if the category indicates a transient error.
func (c Category) Transient() bool {
	return c != Not && c != Canceled
}

// Categorize returns the transience category of the given error.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. Categorize never checks
// if an error has a Temporary() function, as the semantics of
// Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &hasTimeout) && hasTimeout.Timeout()) {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return Truncated
	}

	return Not
}

// Is returns true if err is transient according to Categorize.
func Is(err error) bool {
	return Categorize(err).Transient()
}

type hasTimeout interface {
	Timeout() bool
}
